package session

import (
	"sync"
	"time"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

// Mode is the attempt lifecycle phase.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeActive  Mode = "active"
	ModeResults Mode = "results"
)

const defaultAdvanceDelay = 700 * time.Millisecond

// Hooks carry one-shot notifications out of the engine. All hooks are
// optional and are invoked outside the engine lock.
type Hooks struct {
	// OnSubmitted fires after a live attempt reaches results, with the
	// final result. Review entry never fires it.
	OnSubmitted func(result quiz.AttemptResult)
	// OnPerfectScore fires when a freshly submitted attempt answered every
	// question correctly. Replaying history never re-fires it.
	OnPerfectScore func()
}

// Engine owns the state machine for one quiz session: mode, position,
// captured answers and score. It performs no I/O; persistence and cache
// effects belong to the Controller.
type Engine struct {
	mu        sync.Mutex
	quiz      *quiz.Quiz
	scheduler Scheduler
	delay     time.Duration
	hooks     Hooks

	mode         Mode
	currentIndex int
	answers      quiz.AnswerMap
	score        int
	readOnly     bool

	// generation invalidates pending timers: a timer only acts if the
	// engine is still in the generation it was scheduled in.
	generation    uint64
	cancelPending func()
}

// EngineOptions tune scheduling. A zero AdvanceDelay falls back to the
// production default; tests inject a manual Scheduler instead.
type EngineOptions struct {
	Scheduler    Scheduler
	AdvanceDelay time.Duration
}

// NewEngine creates an engine in preview mode for the given quiz.
func NewEngine(q *quiz.Quiz, hooks Hooks, opts EngineOptions) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = defaultAdvanceDelay
	}
	return &Engine{
		quiz:      q,
		scheduler: opts.Scheduler,
		delay:     opts.AdvanceDelay,
		hooks:     hooks,
		mode:      ModePreview,
		answers:   quiz.AnswerMap{},
	}
}

// ScoreAnswers counts questions whose recorded answer equals the correct
// option text. Unanswered and mismatched both count as incorrect; a question
// whose CorrectAnswer matches no option simply never scores. Total over all
// well-formed input.
func ScoreAnswers(questions []quiz.Question, answers quiz.AnswerMap) int {
	score := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Start begins a fresh attempt. No-op outside preview.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModePreview {
		return
	}
	e.resetAttemptLocked()
	e.mode = ModeActive
}

// SelectAnswer records the chosen option for a question, then schedules an
// auto-advance (or auto-submit on the last question) so the selection stays
// visible for a moment. No-op outside active mode or in read-only review.
func (e *Engine) SelectAnswer(questionID int, optionText string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeActive || e.readOnly {
		return
	}
	e.answers[questionID] = optionText

	e.cancelPendingLocked()
	gen := e.generation
	e.cancelPending = e.scheduler.Schedule(e.delay, func() {
		e.advanceOrSubmit(gen)
	})
}

// advanceOrSubmit is the pending-timer body. It re-reads engine state at
// fire time rather than trusting values captured at schedule time: a
// navigation during the delay changes what the timer should do, and a reset
// (new generation) means it should do nothing at all.
func (e *Engine) advanceOrSubmit(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.mode != ModeActive {
		e.mu.Unlock()
		return
	}
	if e.currentIndex < len(e.quiz.Questions)-1 {
		e.currentIndex++
		e.mu.Unlock()
		return
	}
	e.submitLocked()
}

// GoPrevious steps back one question, clamped at the first.
func (e *Engine) GoPrevious() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeActive {
		return
	}
	if e.currentIndex > 0 {
		e.currentIndex--
	}
}

// GoNext steps forward one question, clamped at the last.
func (e *Engine) GoNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeActive {
		return
	}
	if e.currentIndex < len(e.quiz.Questions)-1 {
		e.currentIndex++
	}
}

// Submit finalizes the attempt: the score is recomputed in full from the
// answer map, never incrementally, so out-of-order re-selections cannot
// skew the result.
func (e *Engine) Submit() {
	e.mu.Lock()
	if e.mode != ModeActive {
		e.mu.Unlock()
		return
	}
	e.submitLocked()
}

// submitLocked transitions active->results and releases the lock before
// invoking hooks.
func (e *Engine) submitLocked() {
	e.cancelPendingLocked()
	e.score = ScoreAnswers(e.quiz.Questions, e.answers)
	e.mode = ModeResults

	result := quiz.AttemptResult{Score: e.score, Answers: e.answers.Clone()}
	perfect := !e.readOnly && len(e.quiz.Questions) > 0 && e.score == len(e.quiz.Questions)
	submitted := e.hooks.OnSubmitted
	perfectHook := e.hooks.OnPerfectScore
	e.mu.Unlock()

	if submitted != nil {
		submitted(result)
	}
	if perfect && perfectHook != nil {
		perfectHook()
	}
}

// Retake discards the just-scored attempt and starts over. The discarded
// attempt is not re-persisted. No-op outside results.
func (e *Engine) Retake() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeResults {
		return
	}
	e.resetAttemptLocked()
	e.mode = ModeActive
}

// Exit leaves results and returns to the preview view, clearing the attempt.
func (e *Engine) Exit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeResults {
		return
	}
	e.resetAttemptLocked()
	e.mode = ModePreview
}

// OpenInReview drives the engine straight to results with a historical
// answer map, read-only. The score is recomputed locally from the supplied
// answers rather than trusted from storage, and no submission hooks fire:
// replaying history must not replay one-time effects.
func (e *Engine) OpenInReview(answers quiz.AnswerMap) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	e.generation++
	e.readOnly = true
	e.answers = answers.Clone()
	e.score = ScoreAnswers(e.quiz.Questions, e.answers)
	e.currentIndex = 0
	e.mode = ModeResults
}

// Close cancels any pending scheduled effect. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	e.generation++
}

// resetAttemptLocked zeroes attempt state and invalidates pending timers.
func (e *Engine) resetAttemptLocked() {
	e.cancelPendingLocked()
	e.generation++
	e.currentIndex = 0
	e.answers = quiz.AnswerMap{}
	e.score = 0
	e.readOnly = false
}

func (e *Engine) cancelPendingLocked() {
	if e.cancelPending != nil {
		e.cancelPending()
		e.cancelPending = nil
	}
}

// Quiz returns the immutable quiz document this session runs over.
func (e *Engine) Quiz() *quiz.Quiz { return e.quiz }

// Mode returns the current lifecycle phase.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// CurrentIndex returns the position within the question list.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentIndex
}

// CurrentQuestion returns the question at the current position, or nil for
// an empty quiz.
func (e *Engine) CurrentQuestion() *quiz.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentIndex < 0 || e.currentIndex >= len(e.quiz.Questions) {
		return nil
	}
	return &e.quiz.Questions[e.currentIndex]
}

// Answers returns a snapshot of the captured answer map.
func (e *Engine) Answers() quiz.AnswerMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answers.Clone()
}

// Score returns the last computed score. Only meaningful in results mode.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// ReadOnly reports whether the session is a non-editable review of a stored
// attempt.
func (e *Engine) ReadOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readOnly
}

// Result returns the derived attempt result snapshot.
func (e *Engine) Result() quiz.AttemptResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return quiz.AttemptResult{Score: e.score, Answers: e.answers.Clone()}
}
