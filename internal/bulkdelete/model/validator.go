package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// FormatValidationError flattens validator errors into one ErrConfiguration.
// names maps struct field names to the setting name a user would recognise.
func FormatValidationError(err error, names map[string]string) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		if n, ok := names[name]; ok {
			name = n
		}
		if e.Tag() == "required" {
			msgs = append(msgs, name+" is required")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", name, e.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
}
