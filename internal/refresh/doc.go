// Package refresh drives the pull side of synchronization.
//
// A scheduler re-pulls every domain snapshot on a fixed interval and on
// demand: after a reconnect, when the push channel signals that alert
// state changed, or when the operator moves the lookback window. Each
// domain refreshes independently, so one failing endpoint never blocks
// the others, and every pull is sequenced through its view before the
// request goes out so a slow response that has been superseded is
// discarded on arrival.
package refresh
