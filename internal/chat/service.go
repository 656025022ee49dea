// Package chat is the facade hosts talk to. Every method handles one discrete
// host event (a submitted message, a button press, a reset) for one
// conversation key.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/j0lvera/cbtbot/internal/observe"
	"github.com/j0lvera/cbtbot/internal/responder"
	"github.com/j0lvera/cbtbot/internal/session"
	"github.com/rs/zerolog"
)

// ErrUnknownAction is returned for a quick-action token outside the vocabulary.
var ErrUnknownAction = errors.New("chat: unknown quick action")

// Outcome is the result of one host event.
type Outcome struct {
	// Processed is false when the event resolved to no input.
	Processed bool
	Input     session.Input
	Turn      session.Turn
	// Transcript is the snapshot after the event.
	Transcript []session.Entry
}

// Service runs host events against the session registry.
type Service struct {
	registry  *session.Registry
	responder *responder.Responder
	metrics   *observe.Metrics
	log       zerolog.Logger
}

// NewService creates a chat service.
func NewService(
	registry *session.Registry,
	r *responder.Responder,
	metrics *observe.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry:  registry,
		responder: r,
		metrics:   metrics,
		log:       log,
	}
}

// Send handles text received through a submit event.
func (s *Service) Send(ctx context.Context, key, text string) Outcome {
	var res Outcome
	s.registry.WithSession(key, func(e *session.Engine) error {
		res = s.step(ctx, key, e, text)
		return nil
	})
	return res
}

// Type handles a host that re-reads its text field on every render. The
// unchanged text of the last processed message is not processed again.
func (s *Service) Type(ctx context.Context, key, text string) Outcome {
	var res Outcome
	s.registry.WithSession(key, func(e *session.Engine) error {
		e.SetTypedBuffer(text)
		res = s.step(ctx, key, e, "")
		return nil
	})
	return res
}

// QuickAction handles a shortcut press. The action is triggered and resolved
// in the same step.
func (s *Service) QuickAction(ctx context.Context, key, token string) (Outcome, error) {
	if !responder.IsQuickAction(token) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, token)
	}

	var res Outcome
	s.registry.WithSession(key, func(e *session.Engine) error {
		e.TriggerQuickAction(token)
		res = s.step(ctx, key, e, "")
		return nil
	})
	s.metrics.RecordQuickAction(ctx, token)
	return res, nil
}

// Reset wipes the conversation back to the welcome entry.
func (s *Service) Reset(ctx context.Context, key string) []session.Entry {
	var snap []session.Entry
	s.registry.WithSession(key, func(e *session.Engine) error {
		e.Reset()
		snap = e.Snapshot()
		return nil
	})

	s.metrics.RecordReset(ctx)
	s.log.Info().Str("session", key).Msg("conversation reset")
	return snap
}

// Transcript returns the conversation for key without starting one. An
// unknown key sees the welcome-only transcript.
func (s *Service) Transcript(ctx context.Context, key string) []session.Entry {
	if snap, ok := s.registry.Peek(key); ok {
		return snap
	}
	return s.registry.Fresh()
}

// Welcome returns the entry that opens every conversation.
func (s *Service) Welcome(ctx context.Context, key string) session.Entry {
	return s.Transcript(ctx, key)[0]
}

func (s *Service) step(ctx context.Context, key string, e *session.Engine, direct string) Outcome {
	in, turn, ok := e.Step(direct)
	res := Outcome{
		Processed:  ok,
		Input:      in,
		Turn:       turn,
		Transcript: e.Snapshot(),
	}
	if !ok {
		s.log.Debug().Str("session", key).Msg("nothing to process")
		return res
	}

	rule := s.responder.Match(in.Text)
	if turn.Err != nil {
		rule = "error"
		s.metrics.RecordReplyFailure(ctx)
		s.log.Error().
			Err(turn.Err).
			Str("session", key).
			Str("source", string(in.Source)).
			Msg("reply failed, sent internal error message")
	}
	s.metrics.RecordTurn(ctx, string(in.Source), rule)

	s.log.Info().
		Str("session", key).
		Str("source", string(in.Source)).
		Str("rule", rule).
		Int("transcript_len", len(res.Transcript)).
		Msg("turn processed")

	return res
}
