// Package render holds the two presentation adapters: plain text for
// the terminal and HTML for Telegram. Both are pure functions of the
// normalized Item and tolerate minimal (non-detailed) items by omitting
// absent sections.
package render

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/exile-tools/poewiki-cli/internal/model"
)

// Terminal renders one table row per item: name, rarity, class.
func Terminal(items []model.Item) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRARITY\tCLASS")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.Name, item.Rarity, item.Class)
	}
	_ = w.Flush()
	return sb.String()
}

// TerminalDetailed renders a multi-line block per item. Sections whose
// Item fields are absent are omitted entirely, headers included.
func TerminalDetailed(items []model.Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, terminalBlock(item))
	}
	return strings.Join(blocks, "\n")
}

func terminalBlock(item model.Item) string {
	var lines []string

	header := fmt.Sprintf("%s (%s)", item.Name, item.Rarity)
	if item.Class != "" {
		header += " - " + item.Class
	}
	lines = append(lines, header, strings.Repeat("-", len(header)))

	for _, stat := range item.BaseStats {
		lines = append(lines, fmt.Sprintf("%s: %s", stat.Label, stat.Value))
	}
	if item.RequiredLevel != "" {
		lines = append(lines, "Requires Level "+item.RequiredLevel)
	}

	if len(item.Mods) > 0 {
		lines = append(lines, "")
		lines = append(lines, item.Mods...)
	}

	if len(item.StackEffects) > 0 {
		lines = append(lines, "")
		for _, e := range item.StackEffects {
			if e.Threshold != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", e.Threshold, e.Description))
			} else {
				lines = append(lines, e.Description)
			}
		}
	}

	if item.Description != "" {
		lines = append(lines, "", item.Description)
	}
	if item.FlavourText != "" {
		lines = append(lines, "", fmt.Sprintf("%q", item.FlavourText))
	}

	return strings.Join(lines, "\n") + "\n"
}
