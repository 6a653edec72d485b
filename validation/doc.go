// Package validation provides input validation returning *errors.AppError.
//
// Struct tag validation uses go-playground/validator; programmatic validation
// collects field errors for checks that depend on runtime data such as a
// provider's model catalog.
//
// # Struct Tag Validation
//
//	type Request struct {
//	    Payload string `json:"payload" validate:"notblank"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New().OneOf("voice", voice, voices)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
