package middleware

import (
	"strings"

	"github.com/haierkeys/ecrit-note-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// 优先级：?lang= -> Lang 请求头 -> Accept-Language 的第一项
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("Lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.SplitN(strings.SplitN(s, ",", 2)[0], ";", 2)[0]
		}

		lang = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))

		trans, found := uni.GetTranslator(lang)
		if !found && strings.HasPrefix(lang, "zh") {
			trans, found = uni.GetTranslator("zh")
		}
		if !found {
			trans, _ = uni.GetTranslator("en")
		}
		c.Set("trans", trans)

		_ = code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}
