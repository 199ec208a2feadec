// Package audit persists a durable, append-only trail of consent and
// reversal incidents outside the short-TTL session cache.
//
// The session cache is intentionally ephemeral, but a reverse_failed
// event is exactly the kind of incident an operator needs to be able
// to find after the session that produced it has already expired.
// Ledger rows therefore live in an embedded bbolt database,
// independent of session TTL.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// EventKind names the recorded incident classes.
type EventKind string

const (
	ConsentConfirmed EventKind = "consent_confirmed"
	ConsentRejected  EventKind = "consent_rejected"
	ReverseFailed    EventKind = "reverse_failed"
)

// Event is one ledger row.
type Event struct {
	SessionID string    `json:"sessionID"`
	Kind      EventKind `json:"kind"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

const bucketName = "incidents"

// Ledger is a bbolt-backed append-only incident log.
type Ledger struct {
	db *bolt.DB
}

// Open opens (or creates) the ledger database at path and ensures the
// bucket exists.
func Open(path string) (*Ledger, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open audit ledger %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("create audit bucket: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record appends one event, keyed by its timestamp so iteration order
// is chronological.
func (l *Ledger) Record(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := []byte(fmt.Sprintf("%020d:%s", ev.Timestamp.UnixNano(), ev.SessionID))
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put(key, data)
	})
}

// Recent returns up to limit most-recently-recorded events, newest first.
func (l *Ledger) Recent(limit int) ([]Event, error) {
	var events []Event
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(events) < limit; k, v = c.Prev() {
			var ev Event
			if err := json.Unmarshal(v, &ev); err != nil {
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}

// PruneOlderThan deletes every event recorded before cutoff. Used by
// the scheduled sweep to bound ledger growth.
func (l *Ledger) PruneOlderThan(cutoff time.Time) (int, error) {
	removed := 0
	prefix := fmt.Sprintf("%020d", cutoff.UnixNano())
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		c := b.Cursor()
		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if string(k) >= prefix {
				break
			}
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
