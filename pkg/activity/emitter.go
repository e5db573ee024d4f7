package activity

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "annotate"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool
	Channel string
	ActorID string
}

// Emitter fans out events to hooks and stamps them with the run identity.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	actorID string
	runID   string
}

// NewEmitter constructs an emitter from hooks and configuration. Each
// emitter gets its own run ID.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	normalized := hooks.Compact()
	return &Emitter{
		hooks:   normalized,
		enabled: cfg.Enabled && len(normalized) > 0,
		channel: channel,
		actorID: strings.TrimSpace(cfg.ActorID),
		runID:   uuid.NewString(),
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// RunID identifies the run the emitter stamps onto events.
func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Emit forwards the event to all hooks, filling channel, actor and run ID
// when missing.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actorID
	}
	if strings.TrimSpace(event.RunID) == "" {
		event.RunID = e.runID
	}
	return e.hooks.Notify(ctx, event)
}
