// Package session implements the dialogue engine: an ordered transcript, the
// single-turn input resolution protocol, and consume-once quick actions.
//
// An Engine is not safe for concurrent use. Hosts that serve many
// conversations keep one Engine per conversation in a Registry, which
// serializes access per key.
package session

import (
	"errors"
	"fmt"
)

// Speaker identifies who authored a transcript entry.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Label is the display name of the speaker.
func (s Speaker) Label() string {
	switch s {
	case SpeakerUser:
		return "You"
	case SpeakerBot:
		return "Bot"
	default:
		return string(s)
	}
}

// Entry is one line of the transcript.
type Entry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

func (e Entry) valid() bool {
	return e.Speaker == SpeakerUser || e.Speaker == SpeakerBot
}

// Source tells where a resolved input came from.
type Source string

const (
	SourceAction Source = "action"
	SourceDirect Source = "direct"
	SourceBuffer Source = "buffer"
)

// Input is the single input resolved for a turn.
type Input struct {
	Text   string
	Source Source
}

// Turn is the User/Bot pair appended by ProcessTurn.
type Turn struct {
	User Entry
	Bot  Entry
	// Err is set when the replier failed and Bot carries the internal-error
	// reply instead.
	Err error
}

// Replier produces the bot's reply for an input.
type Replier interface {
	Reply(input string) (string, error)
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(input string) (string, error)

func (f ReplierFunc) Reply(input string) (string, error) { return f(input) }

// ErrEmptyInput is returned by ProcessTurn when given an empty input.
var ErrEmptyInput = errors.New("session: empty input")

// DefaultWelcome seeds the transcript when no welcome text is configured.
const DefaultWelcome = "👋 Hi! Welcome to TESDA Chatbot. Type 'help' to see options."

// Engine owns one conversation.
type Engine struct {
	replier Replier
	welcome string

	transcript []Entry
	pending    string
	hasPending bool

	// typed buffer, only consulted when useBuffer is set
	useBuffer bool
	buffer    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithWelcome sets the bot entry that seeds a fresh transcript.
func WithWelcome(text string) Option {
	return func(e *Engine) {
		if text != "" {
			e.welcome = text
		}
	}
}

// WithTypedBuffer enables the polling fallback: the host writes the current
// text field with SetTypedBuffer and ResolveTurnInput picks it up once.
func WithTypedBuffer() Option {
	return func(e *Engine) {
		e.useBuffer = true
	}
}

// New creates an initialized engine.
func New(replier Replier, opts ...Option) *Engine {
	e := &Engine{
		replier: replier,
		welcome: DefaultWelcome,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Initialize()
	return e
}

// Initialize puts the engine back into its initial state: a single welcome
// entry, no pending action and an empty typed buffer.
func (e *Engine) Initialize() {
	e.transcript = []Entry{{Speaker: SpeakerBot, Text: e.welcome}}
	e.pending = ""
	e.hasPending = false
	e.buffer = ""
}

// Reset is Initialize.
func (e *Engine) Reset() {
	e.Initialize()
}

// TriggerQuickAction records token as the pending action. A pending action
// that has not been resolved yet is overwritten.
func (e *Engine) TriggerQuickAction(token string) {
	e.pending = token
	e.hasPending = token != ""
}

// HasPendingAction reports whether a quick action awaits resolution.
func (e *Engine) HasPendingAction() bool {
	return e.hasPending
}

// SetTypedBuffer stores the latest raw value of the host's text field. It is a
// no-op unless the engine was built WithTypedBuffer.
func (e *Engine) SetTypedBuffer(text string) {
	if e.useBuffer {
		e.buffer = text
	}
}

// ResolveTurnInput picks the one input to process this turn. A pending action
// wins and is cleared as it is read. Next comes direct, the text the host
// received through a submit event. Last, when enabled, the typed buffer is
// taken if it differs from the most recent user entry. The boolean is false
// when there is nothing to do.
func (e *Engine) ResolveTurnInput(direct string) (Input, bool) {
	if e.hasPending {
		in := Input{Text: e.pending, Source: SourceAction}
		e.pending = ""
		e.hasPending = false
		return in, true
	}

	if direct != "" {
		return Input{Text: direct, Source: SourceDirect}, true
	}

	if e.useBuffer && e.buffer != "" {
		if last, ok := e.LastUserText(); ok && last == e.buffer {
			return Input{}, false
		}
		in := Input{Text: e.buffer, Source: SourceBuffer}
		e.buffer = ""
		return in, true
	}

	return Input{}, false
}

// ProcessTurn appends the user entry, asks the replier, and appends the bot
// entry. A replier error does not abort the turn: the bot entry then describes
// the error and Turn.Err is set.
func (e *Engine) ProcessTurn(input string) (Turn, error) {
	if input == "" {
		return Turn{}, ErrEmptyInput
	}

	turn := Turn{User: Entry{Speaker: SpeakerUser, Text: input}}
	e.transcript = append(e.transcript, turn.User)

	reply, err := e.replier.Reply(input)
	if err != nil {
		turn.Err = err
		reply = internalErrorReply(err)
	}

	turn.Bot = Entry{Speaker: SpeakerBot, Text: reply}
	e.transcript = append(e.transcript, turn.Bot)

	if e.useBuffer {
		e.buffer = ""
	}
	return turn, nil
}

// Step resolves and, if there is an input, processes it.
func (e *Engine) Step(direct string) (Input, Turn, bool) {
	in, ok := e.ResolveTurnInput(direct)
	if !ok {
		return Input{}, Turn{}, false
	}
	turn, err := e.ProcessTurn(in.Text)
	if err != nil {
		return in, Turn{}, false
	}
	return in, turn, true
}

// Snapshot returns a copy of the transcript in insertion order. Malformed
// entries are left out.
func (e *Engine) Snapshot() []Entry {
	out := make([]Entry, 0, len(e.transcript))
	for _, entry := range e.transcript {
		if !entry.valid() {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Len returns the number of transcript entries.
func (e *Engine) Len() int {
	return len(e.transcript)
}

// LastUserText returns the text of the most recent user entry.
func (e *Engine) LastUserText() (string, bool) {
	for i := len(e.transcript) - 1; i >= 0; i-- {
		if e.transcript[i].Speaker == SpeakerUser {
			return e.transcript[i].Text, true
		}
	}
	return "", false
}

func internalErrorReply(err error) string {
	return fmt.Sprintf("⚠️ An internal error occurred while generating a reply: %v", err)
}
