package store

import (
	"context"
	"path/filepath"
	"testing"

	"scribewire/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s.(*SQLiteStore)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	session, err := s.CreateSession(ctx, "en")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID == 0 {
		t.Fatal("expected non-zero session id")
	}
	if session.Status != "open" {
		t.Fatalf("status = %q", session.Status)
	}

	if err := s.SetPatient(ctx, session.ID, "Jane Roe"); err != nil {
		t.Fatalf("set patient: %v", err)
	}
	if err := s.CompleteSession(ctx, session.ID); err != nil {
		t.Fatalf("complete session: %v", err)
	}
}

func TestSetPatientUnknownSession(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	if err := s.SetPatient(context.Background(), 9999, "nobody"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestSegmentsRoundTripInOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	session, err := s.CreateSession(ctx, "en")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	lines := []domain.Segment{
		{SessionID: session.ID, Speaker: "0", SpeakerRole: "clinician", Text: "Chief complaint is headache.", StartTime: 0.2, EndTime: 2.1},
		{SessionID: session.ID, Speaker: "1", SpeakerRole: "patient", Text: "Started two days ago.", StartTime: 2.5, EndTime: 4.0},
	}
	for _, seg := range lines {
		if _, err := s.InsertSegment(ctx, seg); err != nil {
			t.Fatalf("insert segment: %v", err)
		}
	}

	got, err := s.ListSegments(ctx, session.ID)
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].Text != lines[0].Text || got[1].Text != lines[1].Text {
		t.Fatalf("segments out of order: %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].SpeakerRole != "clinician" {
		t.Fatalf("speaker role = %q", got[0].SpeakerRole)
	}
	if got[1].StartTime != 2.5 {
		t.Fatalf("start time = %v", got[1].StartTime)
	}
}

func TestListSegmentsExcludesOtherSessions(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateSession(ctx, "en")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	second, err := s.CreateSession(ctx, "en")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := s.InsertSegment(ctx, domain.Segment{SessionID: first.ID, Text: "mine"}); err != nil {
		t.Fatalf("insert segment: %v", err)
	}
	if _, err := s.InsertSegment(ctx, domain.Segment{SessionID: second.ID, Text: "theirs"}); err != nil {
		t.Fatalf("insert segment: %v", err)
	}

	got, err := s.ListSegments(ctx, first.ID)
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(got) != 1 || got[0].Text != "mine" {
		t.Fatalf("unexpected segments: %+v", got)
	}
}

func TestArtifactUpsertReplacesBody(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	session, err := s.CreateSession(ctx, "en")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := s.UpsertArtifact(ctx, domain.Artifact{SessionID: session.ID, Kind: "soap_update", Body: []byte(`{"v":1}`)}); err != nil {
		t.Fatalf("upsert artifact: %v", err)
	}
	if err := s.UpsertArtifact(ctx, domain.Artifact{SessionID: session.ID, Kind: "soap_update", Body: []byte(`{"v":2}`)}); err != nil {
		t.Fatalf("upsert artifact: %v", err)
	}

	got, err := s.GetArtifact(ctx, session.ID, "soap_update")
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if got == nil {
		t.Fatal("expected artifact")
	}
	if string(got.Body) != `{"v":2}` {
		t.Fatalf("body = %s", got.Body)
	}
}

func TestGetArtifactMissingReturnsNil(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	got, err := s.GetArtifact(context.Background(), 42, "soap_update")
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil artifact, got %+v", got)
	}
}
