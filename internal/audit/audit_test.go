package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{SessionID: "s1", Kind: ConsentConfirmed, Timestamp: base},
		{SessionID: "s1", Kind: ReverseFailed, Detail: "TOKEN_DEADBEEF", Timestamp: base.Add(time.Minute)},
		{SessionID: "s2", Kind: ConsentRejected, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, ev := range events {
		if err := l.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 events, got %d", len(recent))
	}
	// Newest first.
	if recent[0].SessionID != "s2" || recent[0].Kind != ConsentRejected {
		t.Errorf("expected newest event first, got %+v", recent[0])
	}
	if recent[2].SessionID != "s1" || recent[2].Kind != ConsentConfirmed {
		t.Errorf("expected oldest event last, got %+v", recent[2])
	}
}

func TestRecentRespectsLimit(t *testing.T) {
	l := openTestLedger(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		l.Record(Event{SessionID: "s1", Kind: ConsentConfirmed, Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	recent, err := l.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
}

func TestPruneOlderThan(t *testing.T) {
	l := openTestLedger(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Record(Event{SessionID: "old", Kind: ConsentConfirmed, Timestamp: base})
	l.Record(Event{SessionID: "new", Kind: ConsentConfirmed, Timestamp: base.Add(48 * time.Hour)})

	removed, err := l.PruneOlderThan(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	recent, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].SessionID != "new" {
		t.Fatalf("expected only 'new' to remain, got %+v", recent)
	}
}
