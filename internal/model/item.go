package model

import "strings"

// Rarity classifies an item and drives rendering style.
type Rarity string

const (
	RarityNormal         Rarity = "Normal"
	RarityMagic          Rarity = "Magic"
	RarityRare           Rarity = "Rare"
	RarityUnique         Rarity = "Unique"
	RarityCurrency       Rarity = "Currency"
	RarityGem            Rarity = "Gem"
	RarityDivinationCard Rarity = "Divination Card"
)

var knownRarities = map[string]Rarity{
	"normal":          RarityNormal,
	"magic":           RarityMagic,
	"rare":            RarityRare,
	"unique":          RarityUnique,
	"currency":        RarityCurrency,
	"gem":             RarityGem,
	"divination card": RarityDivinationCard,
}

// ParseRarity maps a raw wiki rarity value onto a known Rarity.
// Unrecognized values degrade to Normal; the second return reports
// whether the value was recognized so callers can log drift.
func ParseRarity(raw string) (Rarity, bool) {
	r, ok := knownRarities[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return RarityNormal, false
	}
	return r, true
}

// StatLine is a single labelled base stat, e.g. ("Attacks per Second", "1.50").
type StatLine struct {
	Label string
	Value string
}

// StackEffect is one stack-size threshold and its effect description,
// present on Currency items only.
type StackEffect struct {
	Threshold   string
	Description string
}

// Item is the normalized result entity consumed by both renderers.
//
// An Item built from a search row carries only Name, Rarity, Class,
// PageID and ImageURL. BaseStats, Mods, FlavourText, Description and
// StackEffects are populated only by a detailed fetch; nil/empty means
// "not fetched", and renderers must omit the corresponding sections.
// Items are never mutated after construction: a detailed fetch yields a
// new Item that replaces the minimal one.
type Item struct {
	Name          string
	Rarity        Rarity
	Class         string
	PageID        string
	ImageURL      string
	RequiredLevel string
	BaseStats     []StatLine
	Mods          []string
	Description   string
	FlavourText   string
	StackEffects  []StackEffect
}

// Key identifies an item for de-duplication of search results. Different
// rarities of the same name (e.g. Starforge vs its replica) stay distinct.
func (i Item) Key() string {
	return i.Name + "|" + i.Class + "|" + string(i.Rarity)
}
