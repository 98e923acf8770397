// Package api provides the REST pull client for the DriveSight backend.
//
// The client fetches full snapshots for each dashboard domain (alerts,
// incidents, heat map, stats, cameras). Responses are authoritative:
// the reconciliation layer replaces view state with them rather than
// merging. Retries with jittered exponential backoff are applied to
// 5xx and 429 responses only.
package api
