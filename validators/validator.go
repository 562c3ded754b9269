// Package validators wires go-playground/validator into echo with the
// custom rules used by request bodies.
package validators

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"
)

// DefaultDescriptionMaxLength applies when no limit is configured
const DefaultDescriptionMaxLength = 1500

// Validator implements echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers "notblank" and "descmax". descMax bounds the
// rune length of descriptions; non-positive means DefaultDescriptionMaxLength.
func NewValidator(descMax int) *Validator {
	if descMax <= 0 {
		descMax = DefaultDescriptionMaxLength
	}
	v := validator.New()
	_ = v.RegisterValidation("notblank", nonstandard.NotBlank)
	_ = v.RegisterValidation("descmax", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= descMax
	})
	return &Validator{validate: v}
}

// Validate checks i against its validate tags
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Problems flattens a validation error into "field: rule" messages.
// Other errors come back as a single message.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := lowerFirst(fe.Field()) + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, msg)
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
