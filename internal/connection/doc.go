// Package connection implements the push-channel Connection Manager.
//
// The Connection Manager:
//   - Owns the single WebSocket connection to the DriveSight backend
//   - Reconnects with a fixed delay and a bounded attempt budget
//   - Re-announces every registered subscription on each (re)connect
//   - Decodes inbound frames into EventEnvelopes and hands them to the
//     event multiplexer; malformed frames are logged and dropped
//
// No exported operation blocks the caller: Connect, Announce and Stop
// are fire-and-forget from the caller's perspective.
package connection
