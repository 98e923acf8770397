// Package view implements the per-domain reconciliation layer.
//
// Each view merges two producers into one coherent, bounded, ordered
// in-memory state: full snapshots from the pull path (which replace)
// and incremental push deltas (which apply a domain-specific rule:
// prepend-and-trim for alerts and incidents, wholesale replacement for
// the heat map, whole-record overwrite for stats).
//
// Pull responses are admitted through a per-domain monotonic sequence:
// Begin issues a number before the request goes out, and a response is
// applied only if it is still the most recently issued request for the
// domain. Stale responses are discarded on arrival, so an older, slower
// pull can never overwrite a newer one.
//
// Views signal external renderers through the narrow interfaces in
// renderer.go. Renderers are invoked with the view lock held and must
// not call back into the view.
package view
