package store

import (
	"context"
	"strings"
	"testing"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/types"
)

func TestAppendEventDefaultsActorToHuman(t *testing.T) {
	fb := &fakeBackend{}
	s := newTestStore(fb)
	ev := &types.Event{TaskID: "t-1", Kind: types.EventNote, Body: map[string]interface{}{"note": "hi"}}
	if err := s.AppendEvent(context.Background(), ev); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if ev.Actor != types.OwnerHuman {
		t.Errorf("actor defaulted to %q, want human", ev.Actor)
	}
	insert := fb.stmts[0]
	for _, frag := range []string{"INSERT INTO `event`", "'note'", "'human'", "JSON_OBJECT('note', 'hi')"} {
		if !strings.Contains(insert, frag) {
			t.Errorf("insert missing %q:\n%s", frag, insert)
		}
	}
}

func TestAppendEventRejectsBadKind(t *testing.T) {
	s := newTestStore(&fakeBackend{})
	err := s.AppendEvent(context.Background(), &types.Event{TaskID: "t-1", Kind: "renamed"})
	if fault.CodeOf(err) != fault.ValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestListEventsQueryOrder(t *testing.T) {
	fb := &fakeBackend{}
	s := newTestStore(fb)
	if _, err := s.ListEvents(context.Background(), "t-1"); err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if !strings.Contains(fb.stmts[0], "ORDER BY `created_at` ASC, `event_id` ASC") {
		t.Errorf("audit trail must come back oldest first:\n%s", fb.stmts[0])
	}
}

func TestAddDecisionRequiresSummary(t *testing.T) {
	s := newTestStore(&fakeBackend{})
	err := s.AddDecision(context.Background(), &types.Decision{PlanID: "p-1", Decision: "ship it"})
	if fault.CodeOf(err) != fault.ValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestAddDecisionInsertShape(t *testing.T) {
	fb := &fakeBackend{replies: []backend.Rows{
		{planRow("p-1", "active")},
	}}
	s := newTestStore(fb)
	d := &types.Decision{
		PlanID:   "p-1",
		Summary:  "pick a queue",
		Decision: "use the existing broker",
		Options:  []string{"existing broker", "new service"},
	}
	if err := s.AddDecision(context.Background(), d); err != nil {
		t.Fatalf("AddDecision: %v", err)
	}
	if d.ID == "" {
		t.Error("AddDecision should assign an id")
	}
	insert := fb.stmts[1]
	for _, frag := range []string{
		"INSERT INTO `decision`",
		"'pick a queue'",
		"'use the existing broker'",
		"JSON_ARRAY('existing broker', 'new service')",
	} {
		if !strings.Contains(insert, frag) {
			t.Errorf("insert missing %q:\n%s", frag, insert)
		}
	}
}
