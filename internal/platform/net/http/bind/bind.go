// Package bind validates decoded inputs and maps failures onto project errors
package bind

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "pulse/internal/platform/errors"
	"pulse/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type svc struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	once     sync.Once
	instance *svc
)

var handleRE = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

func get() *svc {
	once.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && handleRE.MatchString(s)
		})
		for tag, text := range map[string]string{
			"min":    "{0} must be at least {1}",
			"max":    "{0} must be at most {1}",
			"handle": "{0} must be an account handle of letters, digits and hyphens",
		} {
			translate(v, trans, tag, text)
		}

		instance = &svc{v: v, trans: trans}
	})
	return instance
}

func translate(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates v and maps the first failure to a validation error
// whose field is the dotted json path, e.g. "actor.login"
func Struct(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.New(perr.ErrorCodeUnknown, "validation error")
	}
	return perr.Validationf(FieldPath(err), "%s", message(err))
}

// Var validates a single value against tag, reporting failures under field
func Var(field string, value any, tag string) error {
	err := get().v.Var(value, tag)
	if err == nil {
		return nil
	}
	// no struct field, so the translation starts with an empty name
	return perr.Validationf(field, "%s%s", field, message(err))
}

// FieldPath returns the dotted json path of the first failure without the root type
func FieldPath(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	ns := verrs[0].Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Translate(get().trans)
	}
	return err.Error()
}
