package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
	"github.com/gokatarajesh/wikiquiz/internal/session"
)

var (
	headline = color.New(color.FgHiWhite, color.Bold)
	accent   = color.New(color.FgCyan)
	good     = color.New(color.FgGreen)
	bad      = color.New(color.FgRed)
	warn     = color.New(color.FgYellow)
	dim      = color.New(color.Faint)
)

// runner drives one quiz session through terminal prompts. It is the thin
// rendering layer; all lifecycle rules live in the session controller.
type runner struct {
	d   *deps
	in  *bufio.Scanner
	out io.Writer
}

func newRunner(d *deps, in io.Reader, out io.Writer) *runner {
	return &runner{d: d, in: bufio.NewScanner(in), out: out}
}

func (r *runner) run(ctx context.Context, q *quiz.Quiz, review bool) error {
	ctrl := session.NewController(session.ControllerOptions{
		Saver:          r.d.store,
		History:        r.d.history,
		Logger:         r.d.logger,
		AdvanceDelay:   r.d.cfg.Session.AutoAdvanceDelay,
		OnPerfectScore: r.celebrate,
	})
	defer ctrl.Close()

	if err := ctrl.Open(ctx, q, session.OpenOptions{Review: review}); err != nil {
		return err
	}
	eng := ctrl.Engine()

	for {
		switch eng.Mode() {
		case session.ModePreview:
			r.renderPreview(q)
			input, ok := r.prompt("Press Enter to start quiz mode, q to quit: ")
			if !ok || input == "q" {
				return nil
			}
			eng.Start()

		case session.ModeActive:
			r.renderQuestion(eng)
			input, ok := r.prompt("> ")
			if !ok {
				return nil
			}
			switch input {
			case "q":
				return nil
			case "p":
				eng.GoPrevious()
			case "n":
				eng.GoNext()
			case "s":
				eng.Submit()
			default:
				r.selectOption(eng, input)
			}

		case session.ModeResults:
			r.renderResults(eng)
			input, ok := r.prompt("r to retake, anything else to exit: ")
			if !ok || input != "r" {
				return nil
			}
			eng.Retake()
		}
	}
}

func (r *runner) prompt(msg string) (string, bool) {
	fmt.Fprint(r.out, msg)
	if !r.in.Scan() {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(r.in.Text())), true
}

// selectOption maps a letter (a, b, ...) onto the current question's option
// and records it, then waits out the auto-advance delay so the engine has
// moved on (or submitted) before the next render.
func (r *runner) selectOption(eng *session.Engine, input string) {
	question := eng.CurrentQuestion()
	if question == nil || len(input) != 1 {
		return
	}
	idx := int(input[0] - 'a')
	if idx < 0 || idx >= len(question.Options) {
		warn.Fprintln(r.out, "pick an option letter, p/n to move, s to submit")
		return
	}

	prevIndex := eng.CurrentIndex()
	eng.SelectAnswer(question.ID, question.Options[idx].Text)

	deadline := time.Now().Add(r.d.cfg.Session.AutoAdvanceDelay + 250*time.Millisecond)
	for time.Now().Before(deadline) {
		if eng.Mode() != session.ModeActive || eng.CurrentIndex() != prevIndex {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (r *runner) renderPreview(q *quiz.Quiz) {
	fmt.Fprintln(r.out)
	headline.Fprintln(r.out, q.Title)
	dim.Fprintln(r.out, q.URL)
	if q.Summary != "" {
		fmt.Fprintf(r.out, "\n%s\n", q.Summary)
	}
	for _, cat := range []string{quiz.CategoryPeople, quiz.CategoryOrganizations, quiz.CategoryLocations} {
		entities := q.EntitiesByCategory(cat)
		if len(entities) == 0 {
			continue
		}
		names := make([]string, 0, len(entities))
		for _, e := range entities {
			names = append(names, e.Name)
		}
		accent.Fprintf(r.out, "%s: ", cat)
		fmt.Fprintln(r.out, strings.Join(names, ", "))
	}
	if len(q.RelatedTopics) > 0 {
		topics := make([]string, 0, len(q.RelatedTopics))
		for _, t := range q.RelatedTopics {
			topics = append(topics, t.Topic)
		}
		dim.Fprintf(r.out, "related: %s\n", strings.Join(topics, ", "))
	}
	fmt.Fprintf(r.out, "\nThis quiz contains %d questions ranging from easy to hard.\n", len(q.Questions))
}

func (r *runner) renderQuestion(eng *session.Engine) {
	q := eng.Quiz()
	question := eng.CurrentQuestion()
	if question == nil {
		return
	}
	answers := eng.Answers()

	fmt.Fprintln(r.out)
	dim.Fprintf(r.out, "Question %d of %d  [%s]\n", eng.CurrentIndex()+1, len(q.Questions), question.Difficulty)
	headline.Fprintln(r.out, question.Text)
	for i, opt := range question.Options {
		marker := " "
		if answers[question.ID] == opt.Text {
			marker = "*"
		}
		fmt.Fprintf(r.out, " %s %c) %s\n", marker, 'a'+i, opt.Text)
	}
	dim.Fprintln(r.out, "answer with a letter; p previous, n next, s submit, q quit")
}

func (r *runner) renderResults(eng *session.Engine) {
	q := eng.Quiz()
	answers := eng.Answers()
	score := eng.Score()

	fmt.Fprintln(r.out)
	headline.Fprintf(r.out, "Your Score: %d / %d\n", score, len(q.Questions))
	switch {
	case len(q.Questions) > 0 && score == len(q.Questions):
		good.Fprintln(r.out, "Perfect score! Outstanding!")
	case score > len(q.Questions)/2:
		good.Fprintln(r.out, "Great job! Keep learning.")
	default:
		warn.Fprintln(r.out, "Good effort! Review the answers below.")
	}

	for _, question := range q.Questions {
		selected, answered := answers[question.ID]
		fmt.Fprintln(r.out)
		headline.Fprintln(r.out, question.Text)
		switch {
		case !answered:
			warn.Fprintln(r.out, "  Not Answered")
		case selected == question.CorrectAnswer:
			good.Fprintf(r.out, "  Your Answer: %s\n", selected)
		default:
			bad.Fprintf(r.out, "  Your Answer: %s\n", selected)
		}
		fmt.Fprintf(r.out, "  Correct Answer: %s\n", question.CorrectAnswer)
		if question.Explanation != "" {
			dim.Fprintf(r.out, "  Explanation: %s\n", question.Explanation)
		}
	}
}

func (r *runner) celebrate() {
	good.Fprintln(r.out, "\n*** PERFECT SCORE ***")
}
