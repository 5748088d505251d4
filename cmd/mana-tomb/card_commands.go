package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quehorrifico/mana-tomb-cli/internal/display"
	"github.com/quehorrifico/mana-tomb-cli/internal/resolver"
)

func newCardCommand(a **app) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "card <name>",
		Short: "Look up a card by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			query := strings.Join(args, " ")

			var (
				outcome resolver.SearchOutcome
				err     error
			)
			if offline {
				outcome, err = app.lookup.Offline(cmd.Context(), query)
			} else {
				outcome, err = app.lookup.Lookup(cmd.Context(), query)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outcome.Kind {
			case resolver.OutcomeExactMatch:
				display.Card(out, outcome.Card)
			case resolver.OutcomeFuzzyMatches:
				display.Candidates(out, query, outcome.Candidates)
			case resolver.OutcomeNotFound:
				fmt.Fprintf(out, "No cards found matching %q\n", query)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "answer from the local cache without contacting the backend")
	return cmd
}

func newRandomCommand(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Show a random card",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			card, err := app.lookup.Random(cmd.Context())
			if err != nil {
				return err
			}
			display.Card(cmd.OutOrStdout(), card)
			return nil
		},
	}
}
