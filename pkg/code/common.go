package code

import "net/http"

var (
	Success = NewSuss(1, http.StatusOK, lang{en: "Success", zh_cn: "成功"})
	Created = NewSuss(2, http.StatusCreated, lang{en: "Created", zh_cn: "创建成功"})

	Failed               = NewError(400, http.StatusInternalServerError, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal  = NewError(500, http.StatusInternalServerError, lang{en: "Internal Server Error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI     = NewError(404, http.StatusNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorInvalidParams   = NewError(405, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})

	ErrorNotUserAuthToken     = NewError(501, http.StatusUnauthorized, lang{en: "Authorization token required", zh_cn: "缺少授权令牌"})
	ErrorInvalidUserAuthToken = NewError(502, http.StatusUnauthorized, lang{en: "Invalid authorization token", zh_cn: "授权令牌无效"})

	ErrorDBQuery             = NewError(503, http.StatusInternalServerError, lang{en: "Storage unavailable", zh_cn: "存储不可用"})
	ErrorNoteNotFound        = NewError(504, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteSlugConflict    = NewError(505, http.StatusConflict, lang{en: "A note with this slug already exists", zh_cn: "该链接标识已被使用"})
	ErrorSharePasswordNeeded = NewError(506, http.StatusUnauthorized, lang{en: "Password required", zh_cn: "需要密码"})
	ErrorSharePasswordWrong  = NewError(507, http.StatusUnauthorized, lang{en: "Invalid password", zh_cn: "密码错误"})
)
