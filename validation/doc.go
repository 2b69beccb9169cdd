// Package validation checks configuration and API requests, reporting every
// problem at once as an INVALID_INPUT AppError whose "fields" detail lists
// each offending field.
//
// # Struct Tag Validation
//
//	type RunRequest struct {
//	    Label string   `json:"label" validate:"required,max=128"`
//	    Argv  []string `json:"argv" validate:"required,min=1"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Command("argv", req.Argv).
//	    Dir("dir", req.Dir).
//	    Validate()
package validation
