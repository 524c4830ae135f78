package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateRetry, RetryConfig{})
	return v
}

func validateRetry(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(RetryConfig)
	if !ok {
		return
	}
	if err := r.raw().Validate(); err != nil {
		sl.ReportError(r, "Retry", "Retry", "retry", err.Error())
	}
}

// Validate checks the struct tags of cfg and its retry policy.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return errors.WrapError(err, errors.CategoryInternal, "configuration validator failed").Build()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fmt.Sprintf("field '%s' failed '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += ": " + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return errors.ValidationError("configuration validation failed").
		WithCause(stderrors.New(strings.Join(msgs, "; "))).Build()
}
