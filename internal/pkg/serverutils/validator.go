package serverutils

import (
	"fmt"

	"clara-backend/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks the request DTO's validate tags and folds failures
// into the service error taxonomy.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrValidation, err)
	}
	return nil
}
