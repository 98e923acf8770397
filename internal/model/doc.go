// Package model defines shared data types used across the DriveSight console.
//
// Conventions:
//   - Timestamps: time.Time, RFC 3339 on the wire
//   - Coordinates: WGS84 decimal degrees
//   - Severity: one of critical, warning, moderate, low
package model
