// Package timex wraps time.Time with a fixed JSON layout and database scanning
// Package timex 封装 time.Time，提供固定的 JSON 格式与数据库读写
package timex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout JSON 输出格式，精确到毫秒
const Layout = "2006-01-02T15:04:05.000Z07:00"

var scanLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time 可直接用于 gorm 模型与 JSON 的时间类型
type Time time.Time

// Now returns the current time truncated to milliseconds, the precision kept by every backend
// Now 返回截断到毫秒的当前时间，与各存储后端保留的精度一致
func Now() Time {
	return Time(time.Now().Truncate(time.Millisecond))
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// MarshalJSON 输出固定格式；零值输出 null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).Format(Layout) + `"`), nil
}

// UnmarshalJSON 解析 MarshalJSON 的输出
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Time{}
		return nil
	}
	parsed, err := time.Parse(Layout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
	}
	*t = Time(parsed)
	return nil
}

// Value 实现 driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan 实现 sql.Scanner，兼容驱动返回 time.Time 或字符串
func (t *Time) Scan(v interface{}) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
		return nil
	case time.Time:
		*t = Time(val)
		return nil
	case []byte:
		return t.parse(string(val))
	case string:
		return t.parse(val)
	}
	return fmt.Errorf("timex: cannot scan %T", v)
}

func (t *Time) parse(s string) error {
	for _, layout := range scanLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}
