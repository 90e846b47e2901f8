package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses duration string, supports 'd' (day) suffix
// ParseDuration 解析时间字符串，支持 'd' (天) 后缀
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// If it is pure numbers, default to seconds
	// 如果是纯数字，默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}

// ParseDurationOr 解析失败或结果非正时返回 fallback
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
