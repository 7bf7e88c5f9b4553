// Package bind decodes request bodies and validates them with struct tags
package bind

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "lodgement/internal/platform/errors"
	"lodgement/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var checkerOnce = sync.OnceValue(func() checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = entrans.RegisterDefaultTranslations(v, trans)
	// the stock min and max texts spell out units the API never mentions
	for tag, text := range map[string]string{
		"min": "{0} must be at least {1}",
		"max": "{0} must be at most {1}",
	} {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(fe.Tag(), fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return checker{v: v, trans: trans}
})

// jsonName reports fields by their json name so errors match the wire
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate checks v's validate tags. The first violation comes back as a Validation
// error naming the json field, with an english message
func Validate(v any) error {
	c := checkerOnce()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validate called on a non struct")
		return perr.JSONErrf("validation error")
	}
	field, msg := firstViolation(c, err)
	return perr.WithField(perr.New(perr.CodeValidation, msg), field)
}

func firstViolation(c checker, err error) (field, msg string) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Field(), ve[0].Translate(c.trans)
	}
	return "", err.Error()
}
