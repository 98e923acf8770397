// Package journal persists pushed incidents to PostgreSQL.
//
// The journal is an optional audit trail: every incident that arrives
// over the push channel is batched and inserted append-only, with
// ON CONFLICT DO NOTHING so replays after a reconnect never duplicate
// rows. The console works fully without it.
package journal
