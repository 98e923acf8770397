// Package database provides the PostgreSQL connection pool for the
// optional incident journal.
package database
