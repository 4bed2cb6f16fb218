package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"signage/backend/internal/model"
)

// Locale 请求语言中间件
// 按 Accept-Language 在支持的语言中协商，结果注入 locale；无法匹配时使用 defaultLocale
func Locale(defaultLocale string) gin.HandlerFunc {
	// 默认语言排在首位，作为 Matcher 的兜底
	supported := []string{defaultLocale}
	for _, l := range model.SupportedLocales {
		if l != defaultLocale {
			supported = append(supported, l)
		}
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, l := range supported {
		tags = append(tags, language.Make(l))
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		locale := defaultLocale
		if header := c.GetHeader("Accept-Language"); header != "" {
			if prefs, _, err := language.ParseAcceptLanguage(header); err == nil && len(prefs) > 0 {
				if _, idx, conf := matcher.Match(prefs...); conf != language.No {
					locale = supported[idx]
				}
			}
		}

		c.Set("locale", locale)
		c.Header("Content-Language", locale)

		c.Next()
	}
}
