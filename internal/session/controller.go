package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/wikiquiz/internal/metrics"
	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

// AttemptSaver is the single mutating call the core issues against the
// external store.
type AttemptSaver interface {
	SaveAttempt(ctx context.Context, quizID, score int, answers quiz.AnswerMap) (*quiz.AttemptResult, error)
}

// HistoryInvalidator refreshes the shared history cache after an attempt is
// persisted.
type HistoryInvalidator interface {
	InvalidateAndReload(ctx context.Context) error
}

// OpenOptions describe how a quiz was opened. Review seeds the engine from
// the quiz's stored answer map; otherwise the engine begins at preview
// regardless of prior attempts.
type OpenOptions struct {
	Review bool
}

// ControllerOptions wire collaborators and tuning into a Controller.
type ControllerOptions struct {
	Saver   AttemptSaver
	History HistoryInvalidator
	Logger  zerolog.Logger

	Scheduler    Scheduler
	AdvanceDelay time.Duration

	// OnPerfectScore is the celebratory signal for the hosting surface.
	OnPerfectScore func()
}

// Controller wraps an Attempt Engine with lifecycle rules: how the engine is
// seeded per open mode, when session state resets, and the side effects of a
// completed attempt (persist, then invalidate the history cache).
type Controller struct {
	mu     sync.Mutex
	opts   ControllerOptions
	logger zerolog.Logger

	engine  *Engine
	current *quiz.Quiz
}

// NewController builds a controller with no open session.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "session").Logger(),
	}
}

// Open binds the controller to a quiz. The session is keyed by quiz
// identity: opening a different quiz fully resets session state, while
// re-opening the same quiz with different open-mode flags keeps the running
// session untouched. This asymmetry protects in-flight attempts from
// surfaces that recompute their open flags.
func (c *Controller) Open(ctx context.Context, q *quiz.Quiz, opts OpenOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.ID == q.ID {
		return nil
	}

	if c.engine != nil {
		c.engine.Close()
	}

	sessionID := uuid.NewString()
	logger := c.logger.With().Str("session_id", sessionID).Int("quiz_id", q.ID).Logger()

	engine := NewEngine(q, Hooks{
		OnSubmitted: func(result quiz.AttemptResult) {
			c.persist(ctx, q.ID, result, logger)
		},
		OnPerfectScore: func() {
			metrics.PerfectScores.Inc()
			if c.opts.OnPerfectScore != nil {
				c.opts.OnPerfectScore()
			}
		},
	}, EngineOptions{Scheduler: c.opts.Scheduler, AdvanceDelay: c.opts.AdvanceDelay})

	if opts.Review {
		answers, err := quiz.DecodeAnswers(q.LastAnswers)
		if err != nil {
			engine.Close()
			return fmt.Errorf("open review: %w", err)
		}
		// Score is recomputed locally from the stored answers, never
		// trusted from the server, so stale stored scores cannot leak
		// into the review view.
		engine.OpenInReview(answers)
	}

	c.engine = engine
	c.current = q
	logger.Debug().Bool("review", opts.Review).Msg("session opened")
	return nil
}

// persist saves the completed attempt and refreshes the history cache. A
// failed save is logged and swallowed: the local result stays visible since
// re-deriving the view from a failed call would discard the user's attempt.
func (c *Controller) persist(ctx context.Context, quizID int, result quiz.AttemptResult, logger zerolog.Logger) {
	metrics.AttemptsCompleted.Inc()

	if c.opts.Saver == nil {
		return
	}
	if _, err := c.opts.Saver.SaveAttempt(ctx, quizID, result.Score, result.Answers); err != nil {
		metrics.AttemptSaveFailures.Inc()
		logger.Error().Err(err).Int("score", result.Score).Msg("save attempt failed; keeping local results")
		return
	}
	logger.Info().Int("score", result.Score).Msg("attempt saved")

	if c.opts.History != nil {
		if err := c.opts.History.InvalidateAndReload(ctx); err != nil {
			logger.Warn().Err(err).Msg("history refresh after save failed")
		}
	}
}

// Engine exposes the wrapped engine so the hosting surface can drive
// transitions. Nil until the first Open.
func (c *Controller) Engine() *Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

// Quiz returns the currently open quiz, or nil.
func (c *Controller) Quiz() *quiz.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close discards the session: pending scheduled effects are cancelled and
// any in-flight save completes silently.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil {
		c.engine.Close()
		c.engine = nil
	}
	c.current = nil
}
