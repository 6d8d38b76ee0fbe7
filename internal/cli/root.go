// Package cli hosts the two terminal surfaces of the client: "generate"
// (turn an article URL into a quiz and take it) and "history" (browse,
// review, or retry past quizzes). Both share one history cache coordinator
// so neither surface triggers duplicate list fetches.
package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/wikiquiz/internal/config"
	"github.com/gokatarajesh/wikiquiz/internal/history"
	"github.com/gokatarajesh/wikiquiz/internal/store"
)

type deps struct {
	cfg     *config.App
	logger  zerolog.Logger
	store   *store.Client
	history *history.Coordinator
}

// Execute wires shared collaborators and runs the CLI.
func Execute(ctx context.Context, cfg *config.App, logger zerolog.Logger) error {
	client := store.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	d := &deps{
		cfg:     cfg,
		logger:  logger,
		store:   client,
		history: history.NewCoordinator(client, logger),
	}
	return newRootCmd(d).ExecuteContext(ctx)
}

func newRootCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wikiquiz",
		Short:         "Turn reference articles into interactive quizzes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(os.Stdout)
	cmd.AddCommand(newGenerateCmd(d))
	cmd.AddCommand(newHistoryCmd(d))
	return cmd
}
