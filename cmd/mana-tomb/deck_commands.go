package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quehorrifico/mana-tomb-cli/internal/display"
	"github.com/quehorrifico/mana-tomb-cli/internal/resolver"
)

func newDecksCommand(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Manage your commander decks",
	}
	cmd.AddCommand(
		newDecksListCommand(a),
		newDecksShowCommand(a),
		newDecksCreateCommand(a),
		newDecksEditCommand(a),
		newDecksDeleteCommand(a),
	)
	return cmd
}

func newDecksListCommand(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			if _, err := app.requireAuth(cmd); err != nil {
				return err
			}

			decks, err := app.drafts.ListDecks(cmd.Context())
			if err != nil {
				return err
			}

			display.DeckTable(cmd.OutOrStdout(), decks)
			return nil
		},
	}
}

func newDecksShowCommand(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <deck-id>",
		Short: "Show a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}

			deck, err := app.client.GetDeck(cmd.Context(), deckID)
			if err != nil {
				return err
			}
			display.Deck(cmd.OutOrStdout(), deck)
			return nil
		},
	}
}

func newDecksCreateCommand(a **app) *cobra.Command {
	var name, description, commander string
	var cards []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			if _, err := app.requireAuth(cmd); err != nil {
				return err
			}

			draft := app.drafts.StartNew()
			if err := draft.SetName(name); err != nil {
				return err
			}
			if err := draft.SetDescription(description); err != nil {
				return err
			}
			if err := draft.SetCommander(commander); err != nil {
				return err
			}

			if err := addCards(cmd, app, cards); err != nil {
				return err
			}

			deck, err := app.drafts.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created deck #%d %q with %d cards\n",
				deck.DeckID, deck.Name, len(deck.Cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "deck name")
	cmd.Flags().StringVar(&description, "description", "", "deck description")
	cmd.Flags().StringVar(&commander, "commander", "", "commander card name")
	cmd.Flags().StringArrayVar(&cards, "card", nil, "card name to add (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDecksEditCommand(a **app) *cobra.Command {
	var name, description, commander string
	var addNames, removeNames []string

	cmd := &cobra.Command{
		Use:   "edit <deck-id>",
		Short: "Edit an existing deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			if _, err := app.requireAuth(cmd); err != nil {
				return err
			}

			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}

			draft, err := app.drafts.StartEdit(cmd.Context(), deckID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				if err := draft.SetName(name); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("description") {
				if err := draft.SetDescription(description); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("commander") {
				if err := draft.SetCommander(commander); err != nil {
					return err
				}
			}
			for _, cardName := range removeNames {
				if err := draft.RemoveCard(cardName); err != nil {
					return err
				}
			}
			if err := addCards(cmd, app, addNames); err != nil {
				return err
			}

			deck, err := app.drafts.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated deck #%d %q (%d cards)\n",
				deck.DeckID, deck.Name, len(deck.Cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new deck name")
	cmd.Flags().StringVar(&description, "description", "", "new deck description")
	cmd.Flags().StringVar(&commander, "commander", "", "new commander card name")
	cmd.Flags().StringArrayVar(&addNames, "add-card", nil, "card name to add (repeatable)")
	cmd.Flags().StringArrayVar(&removeNames, "remove-card", nil, "card name to remove (repeatable)")
	return cmd
}

func newDecksDeleteCommand(a **app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <deck-id>",
		Short: "Delete a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			if _, err := app.requireAuth(cmd); err != nil {
				return err
			}

			deckID, err := parseDeckID(args[0])
			if err != nil {
				return err
			}

			if !yes {
				answer, err := prompt(fmt.Sprintf("Delete deck #%d? This cannot be undone [y/N]: ", deckID))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := app.drafts.DeleteDeck(cmd.Context(), deckID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck #%d\n", deckID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

// addCards feeds names through the draft manager's uniform resolution
// policy, printing disambiguation candidates for ambiguous names instead of
// failing the whole command.
func addCards(cmd *cobra.Command, app *app, names []string) error {
	out := cmd.OutOrStdout()
	for _, cardName := range names {
		outcome, err := app.drafts.AddCard(cmd.Context(), cardName)
		if err != nil {
			return fmt.Errorf("add card %q: %w", cardName, err)
		}
		switch {
		case outcome.Kind == resolver.OutcomeNotFound:
			fmt.Fprintf(out, "No card found matching %q, skipped\n", cardName)
		case outcome.Kind == resolver.OutcomeFuzzyMatches && len(outcome.Candidates) > 1:
			display.Candidates(out, cardName, outcome.Candidates)
			fmt.Fprintf(out, "Skipped %q; re-run with the exact name\n", cardName)
		}
	}
	return nil
}

func parseDeckID(raw string) (int, error) {
	deckID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid deck ID %q", raw)
	}
	return deckID, nil
}
