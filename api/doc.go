// Package api is the HTTP surface the flashing GUI talks to.
//
//	GET    /api/v1/port     rediscover the EDL device port
//	GET    /api/v1/status   device lock, toolchain and background runs
//	POST   /api/v1/run      start {label, argv, dir} in the background (202)
//	DELETE /api/v1/run/:id  cancel a background run
//	POST   /api/v1/exec     run {label, argv, dir} and return {output}
//	GET    /api/v1/events   Server-Sent Events: log_event, update_working_percentage
//
// Errors are AppError responses: {"error": {"code", "message", ...}}.
package api
