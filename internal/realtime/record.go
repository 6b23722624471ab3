// Package realtime implements the push-notification fan-out subsystem: a
// durable registry of open push channels and a broadcaster that delivers
// "queue changed" events to the registered connections.
//
// The ConnectionStore, not process memory, is the single source of truth for
// who is currently listening. Every broadcast re-reads the store, so the
// subsystem works unchanged whether handlers run in one long-lived process
// or across many short-lived ones.
package realtime

import (
	"context"
	"time"
)

// Scope is a routing attribute on a connection record. It is deliberately an
// open string rather than an enum so that narrower routing targets can be
// added without a schema change. The empty scope means the connection
// receives clinic-wide events only.
type Scope string

// ScopeClinic is the empty scope: clinic-wide events only.
const ScopeClinic Scope = ""

// ScopeDoctor returns the scope that routes a single doctor's queue events.
func ScopeDoctor(doctorID string) Scope {
	return Scope("doctor:" + doctorID)
}

// ConnectionRecord represents one live push channel.
//
// Exactly one record exists per open channel. Records are created at
// handshake, deleted on disconnect, pruned when a broadcast detects a dead
// channel, and expire via ExpiresAt as a backstop against missed disconnect
// notifications.
type ConnectionRecord struct {
	ConnectionID  string    `json:"connection_id" db:"connection_id"`
	Scope         Scope     `json:"scope,omitempty" db:"scope"`
	EstablishedAt time.Time `json:"established_at" db:"established_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the record's TTL watermark has passed.
func (r ConnectionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// ConnectionStore is the durable registry of open push channels.
//
// Put is an idempotent upsert keyed by ConnectionID; overwriting is not an
// error (the latest record wins). Delete is idempotent; deleting an unknown
// id is not an error. The list methods return a snapshot that reflects
// writes from prior invocations and excludes expired records.
type ConnectionStore interface {
	Put(ctx context.Context, rec ConnectionRecord) error
	Delete(ctx context.Context, connectionID string) error
	ListAll(ctx context.Context) ([]ConnectionRecord, error)
	ListByScope(ctx context.Context, scope Scope) ([]ConnectionRecord, error)
}
