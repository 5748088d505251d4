// Package display renders cards and decks for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
)

// Card writes a full card detail view.
func Card(out io.Writer, card *manatomb.Card) {
	fmt.Fprintf(out, "%s  %s\n", card.Name, card.ManaCost)
	fmt.Fprintln(out, card.TypeLine)
	if card.OracleText != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, card.OracleText)
	}
	if card.SetName != "" {
		fmt.Fprintf(out, "\nSet: %s (%s)\n", card.SetName, strings.ToUpper(card.SetCode))
	}
	if card.ImageURIs.Normal != "" {
		fmt.Fprintf(out, "Image: %s\n", card.ImageURIs.Normal)
	}
}

// Candidates writes a disambiguation list for an ambiguous name.
func Candidates(out io.Writer, query string, candidates []manatomb.Card) {
	fmt.Fprintf(out, "No exact match for %q. Did you mean:\n", query)
	for _, candidate := range candidates {
		if candidate.ManaCost != "" {
			fmt.Fprintf(out, "  %s  %s\n", candidate.Name, candidate.ManaCost)
		} else {
			fmt.Fprintf(out, "  %s\n", candidate.Name)
		}
	}
}
