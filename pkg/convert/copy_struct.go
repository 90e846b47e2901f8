// Package convert 结构体之间的字段复制
package convert

import (
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/timex"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// copyOption 复制时 time.Time 与 timex.Time 互转，其余同名字段直接复制
var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				t, ok := src.(time.Time)
				if !ok {
					return nil, errors.New("convert: expected time.Time")
				}
				return timex.Time(t), nil
			},
		},
		{
			SrcType: timex.Time{},
			DstType: time.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				t, ok := src.(timex.Time)
				if !ok {
					return nil, errors.New("convert: expected timex.Time")
				}
				return t.Time(), nil
			},
		},
	},
}

// StructAssign
// dst 目标结构体，src 源结构体
// 它会把src与dst的相同字段名的值，复制到dst中
func StructAssign(src any, dst any) error {
	return errors.Wrap(copier.CopyWithOption(dst, src, copyOption), "convert: struct assign")
}
