// Package events defines the outbound notifications a tool run produces and
// the sinks that deliver them.
//
// Two event names exist: NameLog carries operator-facing text such as
// "Send loader...OK", and NameProgress is emitted once per chunk of tool
// output with the constant payload ProgressPlaceholder.
package events
