// Package engine owns the per-session conversation state machine. A
// session is either idle or awaiting a dice roll; the engine decides
// whether player input reaches the LLM, pauses the story on a roll
// request, and resumes it with the result as grounding context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/narralabs/narramancer/internal/metrics"
	"github.com/narralabs/narramancer/internal/services"
	"github.com/narralabs/narramancer/internal/storage"
	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/dice"
	"github.com/narralabs/narramancer/pkg/prompts"
	"github.com/narralabs/narramancer/pkg/state"
	"github.com/narralabs/narramancer/pkg/textfilter"
)

// ErrNoPendingRoll is returned when a roll trigger arrives for a
// session that is not waiting on one (e.g. a stale button press).
var ErrNoPendingRoll = errors.New("no pending roll for session")

// Apology is the in-character reply surfaced whenever a turn fails
// internally. The player always gets some narrative text back.
const Apology = "⚡ The threads of fate tangle for a moment. Catch your breath and try that again."

// RollReminder is sent when free text arrives while a roll is pending.
// The engine rejects such input instead of cancelling the roll, so a
// mid-story question can never skip a requested check.
const RollReminder = "🎲 The story is waiting on your %s roll. Throw the dice to continue!"

// Result is the outcome of one player interaction.
type Result struct {
	// Text is the narrator output to render. When a roll request was
	// detected it is the placeholder form, never the raw marker.
	Text string

	// RollEcho is the player-facing dice summary, set on roll turns.
	RollEcho string

	// PendingRoll is set while the session waits on a roll.
	PendingRoll *chat.PendingRoll

	// Sheet is the current derived character sheet, if any values have
	// been observed.
	Sheet *chat.SheetSnapshot

	// Rejected is true when free text was refused because a roll is
	// pending. Text then carries the reminder.
	Rejected bool
}

// Engine is the interaction orchestrator. All mutation of a given
// session happens inside that session's critical section, so a session
// holds at most one pending roll no matter how requests interleave.
type Engine struct {
	storage  storage.Storage
	llm      services.LLMService
	roller   dice.Roller
	softener *textfilter.Softener
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is reference counted so an entry can be pruned once no
// interaction holds or waits on it; sessions come and go with the
// Redis TTL, and the map must not grow for the process lifetime.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoller replaces the random roller, used by tests to script dice.
func WithRoller(r dice.Roller) Option {
	return func(e *Engine) { e.roller = r }
}

// WithSoftener enables family-friendly narrator output.
func WithSoftener(s *textfilter.Softener) Option {
	return func(e *Engine) { e.softener = s }
}

func New(store storage.Storage, llm services.LLMService, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		storage: store,
		llm:     llm,
		roller:  dice.Roll,
		logger:  logger,
		locks:   make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockSession serializes interactions per session and returns the
// release func. Different sessions proceed in parallel.
func (e *Engine) lockSession(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sessionLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, id)
		}
		e.mu.Unlock()
	}
}

// Interact processes a free-text player turn.
func (e *Engine) Interact(ctx context.Context, sessionID, text string) (*Result, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("chat", "error").Inc()
		return nil, err
	}

	if s.Awaiting() {
		metrics.TurnsTotal.WithLabelValues("chat", "rejected").Inc()
		return &Result{
			Text:        fmt.Sprintf(RollReminder, s.PendingRoll.Notation()),
			PendingRoll: pendingOf(s),
			Sheet:       sheetOf(s),
			Rejected:    true,
		}, nil
	}

	messages, err := prompts.New().
		WithSession(s).
		WithPlayerMessage(text).
		Build()
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("chat", "error").Inc()
		return nil, err
	}

	reply, err := e.llm.GenerateResponse(ctx, messages)
	if err != nil {
		// The player's turn is not committed; they can resend it.
		metrics.TurnsTotal.WithLabelValues("chat", "error").Inc()
		return nil, err
	}

	s.AppendPlayer(text)
	result := e.acceptNarration(s, reply)

	if err := e.storage.SaveSession(ctx, s); err != nil {
		metrics.TurnsTotal.WithLabelValues("chat", "error").Inc()
		return nil, err
	}

	metrics.TurnsTotal.WithLabelValues("chat", "ok").Inc()
	return result, nil
}

// Roll resolves the session's pending roll and resumes the story. On
// LLM failure the pending roll is retained untouched, so the trigger
// can be retried safely; the discarded dice are rolled fresh next time.
func (e *Engine) Roll(ctx context.Context, sessionID string) (*Result, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.storage.LoadSession(ctx, sessionID)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("roll", "error").Inc()
		return nil, err
	}
	if s == nil || !s.Awaiting() {
		metrics.TurnsTotal.WithLabelValues("roll", "rejected").Inc()
		return nil, ErrNoPendingRoll
	}

	req := s.PendingRoll
	outcome, err := e.roller(req.Count, req.Sides)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("roll", "error").Inc()
		return nil, err
	}

	resolved := req.Resolve(outcome)
	echo := outcome.Echo()

	messages, err := prompts.New().
		WithSession(s).
		WithRollResult(resolved, echo).
		Build()
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("roll", "error").Inc()
		return nil, err
	}

	reply, err := e.llm.GenerateResponse(ctx, messages)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("roll", "error").Inc()
		return nil, err
	}

	// The roll is consumed only now that the forwarding call succeeded.
	s.PendingRoll = nil
	s.AppendNarrator(resolved)
	s.AppendPlayer(echo)
	result := e.acceptNarration(s, reply)
	result.RollEcho = echo

	if err := e.storage.SaveSession(ctx, s); err != nil {
		metrics.TurnsTotal.WithLabelValues("roll", "error").Inc()
		return nil, err
	}

	metrics.RollsTotal.WithLabelValues(req.Notation()).Inc()
	metrics.TurnsTotal.WithLabelValues("roll", "ok").Inc()
	return result, nil
}

// NewGame resets the session's story while keeping its identity.
func (e *Engine) NewGame(ctx context.Context, sessionID string) (*state.Session, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("new_game", "error").Inc()
		return nil, err
	}

	s.Reset()
	if err := e.storage.SaveSession(ctx, s); err != nil {
		metrics.TurnsTotal.WithLabelValues("new_game", "error").Inc()
		return nil, err
	}

	metrics.TurnsTotal.WithLabelValues("new_game", "ok").Inc()
	return s, nil
}

// Session returns the stored session, or nil if none exists.
func (e *Engine) Session(ctx context.Context, sessionID string) (*state.Session, error) {
	return e.storage.LoadSession(ctx, sessionID)
}

// acceptNarration applies post-processing shared by chat and roll
// turns: soften the reply, scan it for a roll request, update the
// sheet, and append it to history unless it became the pending roll's
// origin text.
func (e *Engine) acceptNarration(s *state.Session, reply string) *Result {
	if e.softener != nil {
		reply = e.softener.Soften(reply)
	}

	result := &Result{Text: reply}

	if req, ok := dice.Scan(reply); ok {
		// The origin text lives on the request until the roll resolves;
		// only the placeholder is shown to the player.
		s.PendingRoll = req
		result.Text = req.Placeholder()
		metrics.PendingRollsFound.Inc()
		e.logger.Debug("Roll request detected",
			"session_id", s.ID, "notation", req.Notation())
	} else {
		s.AppendNarrator(reply)
	}

	s.Sheet.Observe(reply)
	result.PendingRoll = pendingOf(s)
	result.Sheet = sheetOf(s)
	return result
}

func (e *Engine) loadOrCreate(ctx context.Context, sessionID string) (*state.Session, error) {
	s, err := e.storage.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = state.NewSession(sessionID)
		e.logger.Info("New session created", "session_id", sessionID)
	}
	return s, nil
}

func pendingOf(s *state.Session) *chat.PendingRoll {
	if s.PendingRoll == nil {
		return nil
	}
	return &chat.PendingRoll{Count: s.PendingRoll.Count, Sides: s.PendingRoll.Sides}
}

func sheetOf(s *state.Session) *chat.SheetSnapshot {
	if s.Sheet.MaxHP == 0 && s.Sheet.Gold == 0 {
		return nil
	}
	return &chat.SheetSnapshot{HP: s.Sheet.HP, MaxHP: s.Sheet.MaxHP, Gold: s.Sheet.Gold}
}
