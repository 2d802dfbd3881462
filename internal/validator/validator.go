package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	tr_translations "github.com/go-playground/validator/v10/translations/tr"
)

// uni holds the English and Turkish translators for validation errors.
var uni *ut.UniversalTranslator

// ContextKeyLanguage is the Gin context key carrying the request language.
const ContextKeyLanguage = "lang"

// Setup registers the validator with English and Turkish translations on
// Gin's binding engine. Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni = ut.New(enLocale, enLocale, tr.New())

	enTrans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, enTrans)
	trTrans, _ := uni.GetTranslator("tr")
	_ = tr_translations.RegisterDefaultTranslations(v, trTrans)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message in lang. Nested fields are
// reported by their dotted JSON path without the root struct name.
// If the error is not a validation error, it returns a single-key map with "detail".
func TranslateErrors(err error, lang string) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		trans := translator(lang)
		for _, fe := range ve {
			fields[fieldPath(fe)] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err, c.GetString(ContextKeyLanguage))
	}
	return nil
}

func translator(lang string) ut.Translator {
	if uni == nil {
		Setup()
	}
	if lang != "" {
		if t, found := uni.GetTranslator(lang); found {
			return t
		}
	}
	t, _ := uni.GetTranslator("en")
	return t
}

func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
