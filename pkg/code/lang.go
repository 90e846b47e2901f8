package code

import (
	"errors"
	"sync/atomic"
)

// lang stores the English and Chinese text of a message
// lang 用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

var supportedLanguages = []string{"en", "zh_cn"}

var lng atomic.Value

func init() {
	lng.Store(FALLBACK_LNG)
}

// GetMessage returns the message in the global language, falling back to English
// GetMessage 根据全局语言返回消息，缺失时回退到英文
func (l lang) GetMessage() string {
	if cur, _ := lng.Load().(string); cur == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

// GetSupportedLanguages returns all supported languages
// GetSupportedLanguages 返回支持的所有语言
func GetSupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// SetGlobalDefaultLang sets the global language
// SetGlobalDefaultLang 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range supportedLanguages {
		if l == language {
			lng.Store(language)
			return nil
		}
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global language
// GetGlobalDefaultLang 获取全局默认语言
func GetGlobalDefaultLang() string {
	cur, _ := lng.Load().(string)
	return cur
}
