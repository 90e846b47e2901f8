package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength 最大 slug 长度
const MaxSlugLength = 255

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL-safe slug from a title: diacritics are folded, everything else collapses to single dashes
// Slugify 从标题生成 URL 安全的 slug：去掉变音符号，其余字符折叠为单个连字符
// 返回空字符串表示标题中没有可用字符
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	s := slugNonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// IsValidSlug 校验 slug 格式：小写字母、数字，以单个连字符分隔
func IsValidSlug(slug string) bool {
	return len(slug) > 0 && len(slug) <= MaxSlugLength && slugPattern.MatchString(slug)
}
