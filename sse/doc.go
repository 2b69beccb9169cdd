// Package sse streams tool events to browser front ends over Server-Sent
// Events.
//
// A Hub fans queued frames out to registered clients; ServeSSE attaches one
// HTTP request to it; Emitter turns events.Event values into JSON frames:
//
//	comp := sse.NewComponent()
//	_ = comp.Start(ctx)
//	emitter := sse.NewEmitter(comp.Hub())
//	events.Log(emitter, "Send loader...OK")
//
// Each frame is a single data line holding {"event", "payload", "time"}.
package sse
