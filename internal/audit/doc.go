// Package audit provides the structured audit event model and an
// asynchronous dispatcher that forwards events to a pluggable sink.
//
// The dispatcher decouples authentication flows from sink latency: Emit
// enqueues onto a buffered channel serviced by a single goroutine, and
// Close drains the queue before returning. With DropIfFull set, a full
// buffer counts a drop instead of blocking the flow.
package audit
