package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
)

// Deck writes a full deck view: header, commander, description, card list.
func Deck(out io.Writer, deck *manatomb.Deck) {
	fmt.Fprintf(out, "#%d  %s\n", deck.DeckID, deck.Name)
	if deck.Commander != "" {
		fmt.Fprintf(out, "Commander: %s\n", deck.Commander)
	}
	if deck.Description != "" {
		fmt.Fprintln(out, deck.Description)
	}
	fmt.Fprintf(out, "Cards (%d):\n", len(deck.Cards))
	for _, name := range deck.Cards {
		fmt.Fprintf(out, "  %s\n", name)
	}
}

// DeckTable writes a one-line-per-deck table.
func DeckTable(out io.Writer, decks []manatomb.Deck) {
	if len(decks) == 0 {
		fmt.Fprintln(out, "No decks found")
		return
	}

	fmt.Fprintf(out, "%-6s %-28s %-28s %s\n", "ID", "Name", "Commander", "Cards")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, deck := range decks {
		fmt.Fprintf(out, "#%-5d %-28s %-28s %d\n",
			deck.DeckID,
			truncate(deck.Name, 26),
			truncate(deck.Commander, 26),
			len(deck.Cards),
		)
	}
}

// truncate shortens s to maxLen, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
