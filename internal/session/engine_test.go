package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

// manualScheduler lets tests fire or drop auto-advance timers
// deterministically.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (s *manualScheduler) Schedule(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.stopped = true
	}
}

// fire runs every pending timer that has not been cancelled.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	pending := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range pending {
		s.mu.Lock()
		stopped := t.stopped
		s.mu.Unlock()
		if !stopped {
			t.fn()
		}
	}
}

func threeQuestionQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:    42,
		Title: "Alan Turing",
		Questions: []quiz.Question{
			{ID: 1, Text: "q1", Difficulty: quiz.DifficultyEasy, CorrectAnswer: "A",
				Options: []quiz.Option{{ID: 1, Text: "A"}, {ID: 2, Text: "X"}}},
			{ID: 2, Text: "q2", Difficulty: quiz.DifficultyMedium, CorrectAnswer: "B",
				Options: []quiz.Option{{ID: 3, Text: "B"}, {ID: 4, Text: "X"}}},
			{ID: 3, Text: "q3", Difficulty: quiz.DifficultyHard, CorrectAnswer: "C",
				Options: []quiz.Option{{ID: 5, Text: "C"}, {ID: 6, Text: "X"}}},
		},
	}
}

func newTestEngine(t *testing.T, q *quiz.Quiz, hooks Hooks) (*Engine, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	return NewEngine(q, hooks, EngineOptions{Scheduler: sched, AdvanceDelay: time.Millisecond}), sched
}

func TestScoreAnswers(t *testing.T) {
	questions := threeQuestionQuiz().Questions

	tests := []struct {
		name    string
		answers quiz.AnswerMap
		want    int
	}{
		{"all correct", quiz.AnswerMap{1: "A", 2: "B", 3: "C"}, 3},
		{"mixed", quiz.AnswerMap{1: "A", 2: "X"}, 1},
		{"unanswered is incorrect", quiz.AnswerMap{}, 0},
		{"nil map", nil, 0},
		{"empty string differs from unanswered", quiz.AnswerMap{1: ""}, 0},
		{"unknown question ids ignored", quiz.AnswerMap{99: "A"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAnswers(questions, tt.answers))
		})
	}
}

func TestScoreAnswersDegenerateQuestion(t *testing.T) {
	// CorrectAnswer matching no option is a valid quiz that can never be
	// scored correct; it must not be treated as an error.
	questions := []quiz.Question{
		{ID: 1, CorrectAnswer: "never shown", Options: []quiz.Option{{Text: "A"}, {Text: "B"}}},
	}
	assert.Equal(t, 0, ScoreAnswers(questions, quiz.AnswerMap{1: "A"}))
	assert.Equal(t, 1, ScoreAnswers(questions, quiz.AnswerMap{1: "never shown"}),
		"value equality still applies even when no option carries the text")
}

func TestStartResetsState(t *testing.T) {
	eng, _ := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	require.Equal(t, ModePreview, eng.Mode())

	eng.Start()
	assert.Equal(t, ModeActive, eng.Mode())
	assert.Equal(t, 0, eng.CurrentIndex())
	assert.Empty(t, eng.Answers())
	assert.Equal(t, 0, eng.Score())
	assert.False(t, eng.ReadOnly())
}

func TestSelectAnswerAutoAdvances(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	eng.SelectAnswer(1, "A")
	assert.Equal(t, 0, eng.CurrentIndex(), "index holds until the timer fires")
	sched.fire()
	assert.Equal(t, 1, eng.CurrentIndex())
	assert.Equal(t, ModeActive, eng.Mode())
}

func TestSelectAnswerOnLastQuestionAutoSubmits(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()
	eng.GoNext()
	eng.GoNext()
	require.Equal(t, 2, eng.CurrentIndex())

	eng.SelectAnswer(3, "C")
	require.Equal(t, ModeActive, eng.Mode())
	sched.fire()
	assert.Equal(t, ModeResults, eng.Mode())
	assert.Equal(t, 1, eng.Score())
}

func TestNavigationClampsAtEdges(t *testing.T) {
	eng, _ := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	eng.GoPrevious()
	assert.Equal(t, 0, eng.CurrentIndex())

	eng.GoNext()
	eng.GoNext()
	eng.GoNext()
	assert.Equal(t, 2, eng.CurrentIndex())
}

func TestSubmitRecomputesFromFullAnswerMap(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	// Answer, go back, re-answer out of order; the final score must come
	// from the answer map alone.
	eng.SelectAnswer(1, "X")
	sched.fire()
	eng.GoPrevious()
	eng.SelectAnswer(1, "A")
	sched.fire()
	eng.SelectAnswer(2, "B")
	sched.fire()
	eng.Submit()

	assert.Equal(t, ModeResults, eng.Mode())
	assert.Equal(t, 2, eng.Score())
	assert.Equal(t, quiz.AnswerMap{1: "A", 2: "B"}, eng.Answers())
}

func TestSubmitScenarioWithUnansweredQuestion(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	eng.SelectAnswer(1, "A")
	sched.fire()
	eng.SelectAnswer(2, "X")
	sched.fire()
	// Question 3 is left unanswered.
	eng.Submit()

	assert.Equal(t, 1, eng.Score())
	assert.Equal(t, quiz.AnswerMap{1: "A", 2: "X"}, eng.Answers())
	_, answered := eng.Answers()[3]
	assert.False(t, answered, "question 3 stays unanswered, not empty-string answered")
}

func TestRetakeDiscardsAttempt(t *testing.T) {
	submissions := 0
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{
		OnSubmitted: func(quiz.AttemptResult) { submissions++ },
	})
	eng.Start()
	eng.SelectAnswer(1, "A")
	sched.fire()
	eng.Submit()
	require.Equal(t, 1, submissions)

	eng.Retake()
	assert.Equal(t, ModeActive, eng.Mode())
	assert.Equal(t, 0, eng.CurrentIndex())
	assert.Empty(t, eng.Answers())
	assert.Equal(t, 0, eng.Score())
	assert.Equal(t, 1, submissions, "retake must not re-submit the discarded attempt")

	eng.Submit()
	assert.Equal(t, 2, submissions)
}

func TestExitReturnsToPreview(t *testing.T) {
	eng, _ := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()
	eng.Submit()
	require.Equal(t, ModeResults, eng.Mode())

	eng.Exit()
	assert.Equal(t, ModePreview, eng.Mode())
	assert.Empty(t, eng.Answers())
	assert.Equal(t, 0, eng.Score())
}

func TestOpenInReviewIsReadOnly(t *testing.T) {
	eng, _ := newTestEngine(t, threeQuestionQuiz(), Hooks{})

	eng.OpenInReview(quiz.AnswerMap{1: "A", 2: "X"})
	assert.Equal(t, ModeResults, eng.Mode())
	assert.True(t, eng.ReadOnly())
	assert.Equal(t, 1, eng.Score(), "score recomputed locally from the stored answers")

	// A review session never accepts edits.
	eng.SelectAnswer(3, "C")
	assert.Equal(t, quiz.AnswerMap{1: "A", 2: "X"}, eng.Answers())
}

func TestPerfectScoreSignalFiresOnce(t *testing.T) {
	celebrations := 0
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{
		OnPerfectScore: func() { celebrations++ },
	})
	eng.Start()
	eng.SelectAnswer(1, "A")
	sched.fire()
	eng.SelectAnswer(2, "B")
	sched.fire()
	eng.SelectAnswer(3, "C")
	sched.fire()

	require.Equal(t, ModeResults, eng.Mode())
	require.Equal(t, 3, eng.Score())
	assert.Equal(t, 1, celebrations)

	// Re-opening the completed attempt in review replays history, not
	// one-time effects.
	eng.OpenInReview(quiz.AnswerMap{1: "A", 2: "B", 3: "C"})
	assert.Equal(t, 3, eng.Score())
	assert.Equal(t, 1, celebrations)
}

func TestImperfectScoreDoesNotCelebrate(t *testing.T) {
	celebrations := 0
	eng, _ := newTestEngine(t, threeQuestionQuiz(), Hooks{
		OnPerfectScore: func() { celebrations++ },
	})
	eng.Start()
	eng.Submit()
	assert.Equal(t, 0, celebrations)
}

func TestStaleTimerCannotMutateAfterSubmit(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	eng.SelectAnswer(1, "A")
	eng.Submit() // submit before the auto-advance fires
	require.Equal(t, ModeResults, eng.Mode())

	sched.fire()
	assert.Equal(t, ModeResults, eng.Mode())
	assert.Equal(t, 0, eng.CurrentIndex())
}

func TestStaleTimerCannotMutateAfterRetake(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()
	eng.GoNext()
	eng.GoNext()
	eng.SelectAnswer(3, "C") // schedules auto-submit
	eng.Submit()
	eng.Retake()

	sched.fire()
	assert.Equal(t, ModeActive, eng.Mode(), "auto-submit from the discarded attempt must not fire")
	assert.Empty(t, eng.Answers())
}

func TestPendingTimerRereadsPositionAtFireTime(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()
	eng.GoNext()
	eng.GoNext()
	require.Equal(t, 2, eng.CurrentIndex())

	// Answering the last question schedules a submit, but stepping back
	// before the delay elapses means the session is no longer on the
	// last question; the timer must act on where the user is now.
	eng.SelectAnswer(3, "C")
	eng.GoPrevious()
	sched.fire()

	assert.Equal(t, ModeActive, eng.Mode(), "no submit after navigating off the last question")
	assert.Equal(t, 2, eng.CurrentIndex(), "the pending effect advances instead")
}

func TestReselectSupersedesPendingTimer(t *testing.T) {
	eng, sched := newTestEngine(t, threeQuestionQuiz(), Hooks{})
	eng.Start()

	eng.SelectAnswer(1, "X")
	eng.SelectAnswer(1, "A")
	sched.fire()

	assert.Equal(t, 1, eng.CurrentIndex(), "only one advance despite two selections")
	assert.Equal(t, quiz.AnswerMap{1: "A"}, eng.Answers())
}

func TestEmptyQuizNeverCelebrates(t *testing.T) {
	celebrations := 0
	eng, _ := newTestEngine(t, &quiz.Quiz{ID: 7}, Hooks{
		OnPerfectScore: func() { celebrations++ },
	})
	eng.Start()
	eng.Submit()
	assert.Equal(t, ModeResults, eng.Mode())
	assert.Equal(t, 0, eng.Score())
	assert.Equal(t, 0, celebrations)
}
