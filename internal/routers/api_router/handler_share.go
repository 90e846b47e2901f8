package api_router

import (
	"strings"

	"github.com/haierkeys/ecrit-note-service/internal/app"
	"github.com/haierkeys/ecrit-note-service/internal/dto"
	pkgapp "github.com/haierkeys/ecrit-note-service/pkg/app"
	"github.com/haierkeys/ecrit-note-service/pkg/code"
	apperrors "github.com/haierkeys/ecrit-note-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SharePasswordHeader 匿名预览时携带密码的请求头
const SharePasswordHeader = "X-Share-Password"

// ShareHandler 分享 API 路由处理器
type ShareHandler struct {
	*Handler
}

// NewShareHandler 创建 ShareHandler 实例
func NewShareHandler(a *app.App) *ShareHandler {
	return &ShareHandler{Handler: NewHandler(a)}
}

// absoluteURL 未配置 public-url 时使用请求的访问地址补全
func absoluteURL(c *gin.Context, u *string) {
	if u != nil && strings.HasPrefix(*u, "/") {
		*u = pkgapp.GetAccessHost(c) + *u
	}
}

// SetSharing 设置笔记分享状态
// @Summary 设置分享
// @Description public=false 时清除密码；public=true 且 password 非空时加密分享
// @Tags 分享
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.NoteShareRequest true "分享参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id}/share [patch]
func (h *ShareHandler) SetSharing(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	uri := &dto.NoteIDRequest{}
	params := &dto.NoteShareRequest{}

	valid, errs := pkgapp.BindUriAndValid(c, uri)
	if valid {
		valid, errs = pkgapp.BindAndValid(c, params)
	}
	if !valid {
		h.App.Logger().Warn("ShareHandler.SetSharing.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.ShareService.SetSharing(ctx, pkgapp.GetUID(c), uri.ID, params)
	if err != nil {
		h.logError(ctx, "ShareHandler.SetSharing", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	absoluteURL(c, note.ShareURL)
	response.ToResponse(code.Success.WithData(note))
}

// Link 获取分享链接
// @Summary 获取分享链接
// @Tags 分享
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.ShareLink} "成功"
// @Router /api/notes/{id}/share [get]
func (h *ShareHandler) Link(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	uri := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindUriAndValid(c, uri)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	link, err := h.App.ShareService.Link(ctx, pkgapp.GetUID(c), uri.ID)
	if err != nil {
		h.logError(ctx, "ShareHandler.Link", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	absoluteURL(c, link.URL)
	response.ToResponse(code.Success.WithData(link))
}

// Peek 匿名预览分享笔记
// @Summary 预览分享笔记
// @Description 公开笔记直接返回内容；加密笔记未携带正确密码时只返回标题与 requiresPassword
// @Tags 分享
// @Produce json
// @Param id path string true "笔记 ID"
// @Param X-Share-Password header string false "分享密码"
// @Success 200 {object} pkgapp.Res{data=dto.SharedNoteDTO} "成功"
// @Router /api/shared/{id} [get]
func (h *ShareHandler) Peek(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	uri := &dto.NoteIDRequest{}

	valid, errs := pkgapp.BindUriAndValid(c, uri)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	shared, err := h.App.ShareService.Peek(ctx, uri.ID, c.GetHeader(SharePasswordHeader))
	if err != nil {
		h.logError(ctx, "ShareHandler.Peek", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.ToResponse(code.Success.WithData(shared))
}

// Unlock 使用密码解锁分享笔记
// @Summary 解锁分享笔记
// @Tags 分享
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.SharedUnlockRequest true "密码"
// @Success 200 {object} pkgapp.Res{data=dto.SharedNoteDTO} "成功"
// @Failure 401 {object} apperrors.AppError "需要密码或密码错误"
// @Router /api/shared/{id} [post]
func (h *ShareHandler) Unlock(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	uri := &dto.NoteIDRequest{}
	params := &dto.SharedUnlockRequest{}

	valid, errs := pkgapp.BindUriAndValid(c, uri)
	// 空请求体按未提供密码处理
	if valid && c.Request.ContentLength != 0 {
		valid, errs = pkgapp.BindAndValid(c, params)
	}
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	shared, err := h.App.ShareService.Unlock(ctx, uri.ID, params.Password)
	if err != nil {
		h.logError(ctx, "ShareHandler.Unlock", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.ToResponse(code.Success.WithData(shared))
}
