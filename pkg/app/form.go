package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 所有校验错误信息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 字段 -> 错误信息
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid binds query/body params and runs validation, messages are translated with the request translator
// BindAndValid 绑定 query/body 参数并校验，错误信息使用请求上的翻译器
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return validResult(c, c.ShouldBind(v))
}

// BindUriAndValid 绑定路径参数并校验
func BindUriAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return validResult(c, c.ShouldBindUri(v))
}

func validResult(c *gin.Context, err error) (bool, ValidErrors) {
	if err == nil {
		return true, nil
	}

	var errs ValidErrors
	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
		return false, errs
	}

	trans, hasTrans := c.Value("trans").(ut.Translator)
	for _, fe := range verrs {
		msg := fe.Error()
		if hasTrans {
			msg = fe.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
	}
	return false, errs
}
