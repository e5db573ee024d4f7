package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " options.reset ",
		ActorID:    " actor ",
		RunID:      " run ",
		ObjectType: " options ",
		ObjectID:   " 42 ",
		Channel:    " annotate ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)
	if got.Verb != "options.reset" || got.ObjectType != "options" || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.RunID != "run" || got.Channel != "annotate" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "task.invoked", ObjectType: "task", ObjectID: "annotate_models"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestHooksCompact(t *testing.T) {
	if got := (Hooks{nil, nil}).Compact(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	capture := &CaptureHook{}
	if got := (Hooks{nil, capture}).Compact(); len(got) != 1 {
		t.Fatalf("expected one hook, got %d", len(got))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, ActorID: "ci"})
	if err := enabled.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	got := capture.Events[0]
	if got.Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %q", got.Channel)
	}
	if got.ActorID != "ci" {
		t.Fatalf("expected actor applied, got %q", got.ActorID)
	}
	if got.RunID == "" || got.RunID != enabled.RunID() {
		t.Fatalf("expected run id %q, got %q", enabled.RunID(), got.RunID)
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := emitter.Emit(context.Background(), Event{
		Verb:       "v",
		ObjectType: "o",
		ObjectID:   "1",
		Channel:    "custom",
		RunID:      "explicit",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" || capture.Events[0].RunID != "explicit" {
		t.Fatalf("expected explicit fields preserved, got %+v", capture.Events[0])
	}
	if !capture.Events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", capture.Events[0].OccurredAt)
	}
}
