// Package component manages the lifecycle of the long-lived parts of
// edlflash: the event hub, the HTTP server and the telemetry exporters.
//
// Components start in registration order and stop in reverse order.
// Components that implement observability.HealthChecker contribute their own
// health report to HealthAll.
package component
