// Package validator gin 绑定使用的参数校验器
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/ecrit-note-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	val "github.com/go-playground/validator/v10"
)

// CustomValidator 实现 binding.StructValidator，延迟初始化 validator 实例
type CustomValidator struct {
	once     sync.Once
	validate *val.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

// NewCustomValidator 创建校验器
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct 校验结构体（指针、切片会被展开）
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Engine 返回底层 *validator.Validate
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = val.New()
		v.validate.SetTagName("binding")
	})
}

// RegisterCustom 注册自定义校验规则到 gin 当前的校验器
//
//	slug: 小写字母数字与单个连字符
func RegisterCustom() {
	validate, ok := binding.Validator.Engine().(*val.Validate)
	if !ok {
		return
	}
	_ = validate.RegisterValidation("slug", func(fl val.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return s == "" || util.IsValidSlug(s)
	})
}
