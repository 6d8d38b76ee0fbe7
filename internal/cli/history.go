package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

func newHistoryCmd(d *deps) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past quizzes, review a stored attempt, or retry one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), d, search)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title or URL")
	return cmd
}

func runHistory(ctx context.Context, d *deps, search string) error {
	items, err := d.history.EnsureLoaded(ctx)
	if err != nil {
		// Fetch failures are logged by the coordinator; the surface
		// only tells the user there is nothing to show yet.
		warn.Fprintln(os.Stderr, "History is unavailable right now, try again later.")
		return nil
	}

	filtered := filterQuizzes(items, search)
	if len(filtered) == 0 {
		dim.Println("No quizzes found in history.")
		return nil
	}

	renderHistoryTable(filtered)

	in := bufio.NewScanner(os.Stdin)
	fmt.Print("Pick a quiz number (optionally followed by r to review): ")
	if !in.Scan() {
		return nil
	}
	choice, review, err := parseChoice(in.Text(), len(filtered))
	if err != nil {
		warn.Println(err.Error())
		return nil
	}

	selected := &filtered[choice]
	if review && !selected.HasStoredAttempt() {
		warn.Println("That quiz has no stored attempt to review.")
		return nil
	}

	// A retry wants the freshest document; review deliberately stays on
	// the cached copy since it must not touch the network. A failed
	// re-fetch falls back to the cache.
	if !review {
		if fresh, err := d.store.GetQuiz(ctx, selected.ID); err == nil {
			selected = fresh
		} else {
			d.logger.Warn().Err(err).Int("quiz_id", selected.ID).Msg("fresh quiz fetch failed, using cached copy")
		}
	}
	return newRunner(d, os.Stdin, os.Stdout).run(ctx, selected, review)
}

func filterQuizzes(items []quiz.Quiz, search string) []quiz.Quiz {
	if search == "" {
		return items
	}
	needle := strings.ToLower(search)
	var out []quiz.Quiz
	for _, q := range items {
		if strings.Contains(strings.ToLower(q.Title), needle) || strings.Contains(strings.ToLower(q.URL), needle) {
			out = append(out, q)
		}
	}
	return out
}

func renderHistoryTable(items []quiz.Quiz) {
	for i, q := range items {
		scoreCol := "-"
		if q.LastScore != nil {
			scoreCol = fmt.Sprintf("%d / %d", *q.LastScore, len(q.Questions))
		}
		fmt.Printf("%3d. ", i+1)
		headline.Printf("%-50.50s", q.Title)
		fmt.Printf("  %-9s  %s", scoreCol, q.CreatedAt.Format("2006-01-02"))
		if q.HasStoredAttempt() {
			accent.Print("  [reviewable]")
		}
		fmt.Println()
	}
}

// parseChoice reads inputs like "3" or "3 r" into a zero-based index plus a
// review flag.
func parseChoice(input string, count int) (int, bool, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return 0, false, fmt.Errorf("nothing selected")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > count {
		return 0, false, fmt.Errorf("pick a number between 1 and %d", count)
	}
	review := len(fields) > 1 && fields[1] == "r"
	return n - 1, review, nil
}
