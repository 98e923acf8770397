// Package dispatch implements the typed event multiplexer.
//
// Consumers register handlers for named event kinds and receive every
// matching envelope in registration order, synchronously from the
// dispatcher's execution context. A panicking handler is recovered and
// logged; it never prevents the remaining handlers in the same
// dispatch from running, nor affects future dispatches.
package dispatch
