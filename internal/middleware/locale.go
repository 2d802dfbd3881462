package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/validator"
)

// ContextKeyLocalizer is the Gin context key for the request localizer.
const ContextKeyLocalizer = "localizer"

// Locale resolves the request language from ?lang= and Accept-Language,
// in that order, and stores a localizer for handlers and error responses.
func Locale(bundle *i18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var prefs []string
		if q := c.Query("lang"); q != "" {
			prefs = append(prefs, q)
		}
		if h := c.GetHeader("Accept-Language"); h != "" {
			prefs = append(prefs, h)
		}

		loc := bundle.Localizer(prefs...)
		c.Set(ContextKeyLocalizer, loc)
		c.Set(response.ContextKeyTranslator, loc)
		c.Set(validator.ContextKeyLanguage, loc.Language())
		c.Header("Content-Language", loc.Language())
		c.Next()
	}
}

// GetLocalizer retrieves the request localizer. It returns nil when the
// Locale middleware was not applied; a nil Localizer returns message IDs.
func GetLocalizer(c *gin.Context) *i18n.Localizer {
	val, exists := c.Get(ContextKeyLocalizer)
	if !exists {
		return nil
	}
	loc, _ := val.(*i18n.Localizer)
	return loc
}
