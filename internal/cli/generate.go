package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/wikiquiz/internal/store"
)

func newGenerateCmd(d *deps) *cobra.Command {
	var forceRefresh bool

	cmd := &cobra.Command{
		Use:   "generate <article-url>",
		Short: "Generate a quiz from a reference article and take it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), d, args[0], forceRefresh)
		},
	}
	cmd.Flags().BoolVar(&forceRefresh, "force", false, "regenerate even if the article was seen before")
	return cmd
}

func runGenerate(ctx context.Context, d *deps, articleURL string, forceRefresh bool) error {
	genCtx, cancel := context.WithTimeout(ctx, d.cfg.API.GenerateTimeout)
	defer cancel()

	dim.Println("Building quiz, this can take a while...")
	q, err := d.store.GenerateQuiz(genCtx, articleURL, forceRefresh)
	if err != nil {
		// Generation failures are user-facing; the backend's detail
		// message is readable as-is. No session exists yet, so there
		// is nothing to unwind.
		var apiErr *store.APIError
		if errors.As(err, &apiErr) {
			bad.Fprintln(os.Stderr, apiErr.Detail)
			return err
		}
		bad.Fprintln(os.Stderr, "Failed to generate quiz. Please check the URL.")
		return err
	}

	// A new quiz changes the history list; refresh failures are already
	// logged by the coordinator and must not block the session.
	_ = d.history.InvalidateAndReload(ctx)

	return newRunner(d, os.Stdin, os.Stdout).run(ctx, q, false)
}
