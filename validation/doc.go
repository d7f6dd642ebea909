// Package validation checks definitions and configuration before the
// container accepts them.
//
// Struct tags are evaluated with go-playground/validator; the programmatic
// Validator collects ad-hoc checks. Both report *errors.AppError values with
// code INVALID_DEFINITION and a "fields" detail.
//
//	type Definition struct {
//	    Name string `validate:"required,managedname"`
//	}
//	err := validation.Validate(def)
package validation
