package app

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

var (
	validatorOnce sync.Once
	validatorUni  *ut.UniversalTranslator
	validatorErr  error
)

// InitValidator registers json field names and the en / zh translations on
// gin's validator engine, returning the shared UniversalTranslator.
// InitValidator 初始化验证器，返回 UniversalTranslator（多次调用返回同一实例）
func InitValidator() (*ut.UniversalTranslator, error) {
	validatorOnce.Do(func() {
		validatorUni = ut.New(en.New(), en.New(), zh.New())

		validate, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		zhTran, _ := validatorUni.GetTranslator("zh")
		enTran, _ := validatorUni.GetTranslator("en")

		if validatorErr = zh_translations.RegisterDefaultTranslations(validate, zhTran); validatorErr != nil {
			return
		}
		validatorErr = en_translations.RegisterDefaultTranslations(validate, enTran)
	})
	return validatorUni, validatorErr
}
