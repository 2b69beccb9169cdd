// Package errors provides the structured error type shared by every edlflash
// package. Each AppError carries a machine-readable code, a human-readable
// message, an HTTP status for the API layer, and an optional cause.
//
// Process execution failures use the Message field for the diagnostic text
// produced by the tool itself, so callers can show it verbatim:
//
//	out, err := process.Execute(ctx, argv, "")
//	if appErr, ok := errors.AsAppError(err); ok {
//	    fmt.Println(appErr.Message)
//	}
package errors
