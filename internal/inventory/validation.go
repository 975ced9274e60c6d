package inventory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/retail-inventory/internal/platform/httpx"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateProduct checks the product master invariants.
func ValidateProduct(p Product) error {
	if err := validate.Struct(p); err != nil {
		return invalid(ErrInvalidProduct, err)
	}
	return nil
}

// ValidateTransaction checks a ledger entry. Referential integrity against the
// catalog is intentionally not part of it.
func ValidateTransaction(t Transaction) error {
	if err := validate.Struct(t); err != nil {
		return invalid(ErrInvalidTransaction, err)
	}
	return nil
}

func invalid(kind, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w: %v", httpx.ErrValidation, kind, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %w: %s", httpx.ErrValidation, kind, strings.Join(msgs, "; "))
}
