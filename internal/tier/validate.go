package tier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateFallback, Config{})
	return v
}

// ValidationError lists every problem found in a tier configuration.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid tier config"
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return "invalid tier config: " + strings.Join(msgs, "; ")
}

// Validate checks cfg for structural problems before it is built into a Set.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Fields: []FieldError{{Field: "Config", Tag: "required", Message: "config is required"}}}
	}
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Message: formatFieldError(fe),
		}
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "unique":
		return field + " must not contain duplicates"
	case "fallback":
		return fmt.Sprintf("stat %q has no tiers and no %q default is configured", fe.Value(), DefaultKey)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// validateFallback requires every listed stat to either carry its own tiers or be
// covered by the DefaultKey entry.
func validateFallback(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if _, ok := cfg.Stats[DefaultKey]; ok {
		return
	}
	for i, stat := range cfg.StatNames {
		if _, ok := cfg.Stats[stat]; !ok {
			sl.ReportError(stat, fmt.Sprintf("StatNames[%d]", i), "StatNames", "fallback", "")
		}
	}
}
