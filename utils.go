package paykit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists every field that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid params: %s", strings.Join(e.Fields, ", "))
}

// validateParams runs struct validation and flattens the failures
func validateParams(params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate params: %w", err)
	}

	out := &ValidationError{Fields: make([]string, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return out
}
