package club

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound reports that no record with the requested id exists.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID reports an add whose id is already taken.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrInvalid reports a record that fails schema validation.
	ErrInvalid = errors.New("invalid record")
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsISODate(fl.Field().String())
	})
	return v
}

// IsISODate reports whether value is an ISO-8601 date or datetime.
func IsISODate(value string) bool {
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func validateRecord(resource Resource, rec any) error {
	if err := validate.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s.%s failed %q", ErrInvalid, resource, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalid, resource, err)
	}
	return nil
}
