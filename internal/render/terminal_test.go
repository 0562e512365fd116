package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exile-tools/poewiki-cli/internal/model"
)

func TestTerminal(t *testing.T) {
	items := []model.Item{
		{Name: "Chaos Orb", Rarity: model.RarityCurrency, Class: "Stackable Currency"},
		{Name: "Starforge", Rarity: model.RarityUnique, Class: "Two-Handed Sword"},
	}

	out := Terminal(items)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Chaos Orb")
	assert.Contains(t, lines[1], "Currency")
	assert.Contains(t, lines[2], "Starforge")
	assert.Contains(t, lines[2], "Unique")
}

func TestTerminalDetailedFullItem(t *testing.T) {
	item := model.Item{
		Name:          "Starforge",
		Rarity:        model.RarityUnique,
		Class:         "Two-Handed Sword",
		RequiredLevel: "67",
		BaseStats: []model.StatLine{
			{Label: "Physical Damage", Value: "98-185"},
			{Label: "Attacks per Second", Value: "1.38"},
		},
		Mods:        []string{"500% increased Physical Damage"},
		FlavourText: "The end is written into the beginning.",
	}

	out := TerminalDetailed([]model.Item{item})

	assert.Contains(t, out, "Starforge (Unique) - Two-Handed Sword")
	assert.Contains(t, out, "Physical Damage: 98-185")
	assert.Contains(t, out, "Requires Level 67")
	assert.Contains(t, out, "500% increased Physical Damage")
	assert.Contains(t, out, `"The end is written into the beginning."`)
}

func TestTerminalDetailedOmitsAbsentSections(t *testing.T) {
	// A detailed fetch that returned no mods must not render an empty
	// mods section.
	item := model.Item{
		Name:   "Driftwood Club",
		Rarity: model.RarityNormal,
		Class:  "One-Handed Mace",
	}

	out := TerminalDetailed([]model.Item{item})

	assert.Contains(t, out, "Driftwood Club (Normal) - One-Handed Mace")
	assert.NotContains(t, out, "Requires Level")
	assert.NotContains(t, out, "\n\n\n", "absent sections should not leave blank gaps")
}

func TestTerminalDetailedCurrency(t *testing.T) {
	item := model.Item{
		Name:   "Chaos Orb",
		Rarity: model.RarityCurrency,
		Class:  "Stackable Currency",
		StackEffects: []model.StackEffect{
			{Threshold: "1", Description: "Reforges a rare item with new random modifiers"},
		},
	}

	out := TerminalDetailed([]model.Item{item})
	assert.Contains(t, out, "1: Reforges a rare item with new random modifiers")
}
