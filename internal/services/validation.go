package services

import (
	"tricy/internal/utils"
	"tricy/internal/validators"
)

// validateRequest runs the binding rules on req and converts failures into
// a validation AppError.
func validateRequest(req interface{}) error {
	if errs := validators.ValidateStruct(req); len(errs) > 0 {
		return utils.WrapError(utils.KindValidation, errs.Error(), errs)
	}
	return nil
}
