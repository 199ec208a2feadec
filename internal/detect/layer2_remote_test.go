package detect

import "testing"

func TestRemoteLayer2_AlwaysUnavailable(t *testing.T) {
	l := NewRemoteLayer2("https://ner.example.internal")
	if l.Available() {
		t.Fatal("expected RemoteLayer2 to report unavailable")
	}
	if spans := l.Detect("anything"); spans != nil {
		t.Fatalf("expected no spans, got %v", spans)
	}
}

func TestLayer2_AlwaysAvailable(t *testing.T) {
	l := NewLayer2()
	if !l.Available() {
		t.Fatal("expected heuristic Layer2 to always be available")
	}
}
