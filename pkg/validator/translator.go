package validator

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// NewTranslator registers en/zh messages on gin's validator and reports fields by their json name
// NewTranslator 在 gin 的校验器上注册中英文错误信息，字段名使用 json 标签
func NewTranslator() (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), zh.New())

	validate, ok := binding.Validator.Engine().(*val.Validate)
	if !ok {
		return uni, nil
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "uri", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	return uni, nil
}
