package middleware

import (
	"strings"

	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件
// 语言优先从 query 的 lang 读取，其次是 lang 请求头，缺省为 en
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}
		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		if uni != nil {
			trans, found := uni.GetTranslator(lang)
			if !found {
				// zh_cn -> zh
				base, _, _ := strings.Cut(lang, "_")
				if trans, found = uni.GetTranslator(base); !found {
					trans, _ = uni.GetTranslator("en")
				}
			}
			c.Set(app.ContextTranslatorKey, trans)
		}

		if lang != "" {
			_ = code.SetGlobalDefaultLang(lang)
		}

		c.Next()
	}
}
