// Package validation checks configuration and graph identifiers before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/owlgraph/pkg/reasoner"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	MaxLabelLength   = 64
	MaxPropertyKey   = 100
	MaxChannelIRILen = 2048

	labelPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	mustRegister("reasoner_kind", func(fl validator.FieldLevel) bool {
		_, err := reasoner.ParseKind(fl.Field().String())
		return err == nil
	})
	mustRegister("abs_iri", func(fl validator.FieldLevel) bool {
		return ValidateIRI(fl.Field().String()) == nil
	})
	mustRegister("graph_label", func(fl validator.FieldLevel) bool {
		return ValidateLabel(fl.Field().String()) == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("cannot validate nil")
	}
	return formatValidationError(validate.Struct(v))
}

// ValidateIRI checks that s is an absolute IRI with a scheme.
func ValidateIRI(s string) error {
	if s == "" {
		return errors.New("IRI cannot be empty")
	}
	if len(s) > MaxChannelIRILen {
		return fmt.Errorf("IRI exceeds maximum length of %d characters", MaxChannelIRILen)
	}
	if strings.ContainsAny(s, " \t\r\n<>\"") {
		return fmt.Errorf("IRI %q contains whitespace or delimiter characters", s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("IRI %q: %w", s, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("IRI %q is not absolute", s)
	}
	return nil
}

// ValidateLabel checks a node label or edge type.
func ValidateLabel(s string) error {
	if s == "" {
		return errors.New("label cannot be empty")
	}
	if len(s) > MaxLabelLength {
		return fmt.Errorf("label '%s' exceeds maximum length of %d characters", s, MaxLabelLength)
	}
	if !labelPattern.MatchString(s) {
		return fmt.Errorf("label '%s' contains invalid characters (letter first, then alphanumeric or underscore)", s)
	}
	return nil
}

// ValidatePropertyKey validates a property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s: field is required", field))
		case "min":
			msgs = append(msgs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max":
			msgs = append(msgs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("%s: %q must be one of [%s]", field, e.Value(), param))
		case "reasoner_kind":
			msgs = append(msgs, fmt.Errorf("%s: unknown reasoner %q (known: %v)", field, e.Value(), reasoner.Kinds()))
		case "abs_iri":
			msgs = append(msgs, fmt.Errorf("%s: %q is not an absolute IRI", field, e.Value()))
		case "graph_label":
			msgs = append(msgs, fmt.Errorf("%s: %q is not a valid label", field, e.Value()))
		default:
			msgs = append(msgs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(msgs...)
}
