// Package normalize maps heterogeneous raw Cargo rows onto the one Item
// entity both renderers consume. Plain items and currency items have
// different field sets; the dispatch on rarity happens here and nowhere
// else.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

var (
	wikiLinkRe = regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^\]]+)\]\]`)
	brRe       = regexp.MustCompile(`<br\s*/?>`)

	titleCaser = cases.Title(language.English)
)

// statOrder fixes the display order and labels of well-known base stats.
// Range-text columns summarize rolls and take precedence over their
// numeric counterparts, which are suppressed.
var statOrder = []struct {
	key   string
	label string
}{
	{"physical_damage_range_text", "Physical Damage"},
	{"physical_damage", "Physical Damage"},
	{"critical_strike_chance_range_text", "Critical Strike Chance"},
	{"critical_strike_chance", "Critical Strike Chance"},
	{"attack_speed_range_text", "Attacks per Second"},
	{"attack_speed", "Attacks per Second"},
	{"weapon_range_range_text", "Weapon Range"},
	{"weapon_range", "Weapon Range"},
	{"armour_range_text", "Armour"},
	{"armour", "Armour"},
	{"evasion_range_text", "Evasion Rating"},
	{"evasion", "Evasion Rating"},
	{"energy_shield_range_text", "Energy Shield"},
	{"energy_shield", "Energy Shield"},
	{"ward_range_text", "Ward"},
	{"ward", "Ward"},
	{"map_tier", "Map Tier"},
	{"gem_tags", "Tags"},
	{"primary_attribute", "Primary Attribute"},
}

// identityFields never render as base stats.
var identityFields = map[string]struct{}{
	"name":           {},
	"rarity":         {},
	"class":          {},
	"_pageid":        {},
	"inventory_icon": {},
	"required_level": {},
	"flavour_text":   {},
	"description":    {},
	"implicit_mods":  {},
	"explicit_mods":  {},
	"drop_enabled":   {},
}

// Normalize maps one raw row onto a fresh Item. A non-detailed row
// yields only the identity fields; a detailed row additionally yields
// stats, mods, flavour text and (for currency) stack effects. Missing
// optional fields stay absent rather than blank.
func Normalize(row cargo.Row, detailed bool) model.Item {
	rawRarity := field(row, "rarity")
	rarity, known := model.ParseRarity(rawRarity)
	if !known && rawRarity != "" {
		zap.L().Warn("unrecognized rarity, falling back to Normal",
			zap.String("rarity", rawRarity),
			zap.String("name", field(row, "name")),
		)
	}

	item := model.Item{
		Name:   field(row, "name"),
		Rarity: rarity,
		Class:  field(row, "class"),
		PageID: field(row, "_pageID"),
	}
	if item.Name == "" {
		item.Name = "Unknown"
	}

	if detailed {
		applyDetails(&item, row)
	}
	return item
}

// Enrich builds a new detailed Item from the identity of a minimal one
// plus the rows of a detailed fetch. The minimal Item is left untouched;
// the two-phase flow replaces, never patches.
func Enrich(base model.Item, rows []cargo.Row) model.Item {
	merged := cargo.Row{}
	for _, row := range rows {
		for k, v := range row {
			merged[k] = v
		}
	}

	item := model.Item{
		Name:     base.Name,
		Rarity:   base.Rarity,
		Class:    base.Class,
		PageID:   base.PageID,
		ImageURL: base.ImageURL,
	}
	if name := field(merged, "name"); name != "" {
		item.Name = name
	}
	applyDetails(&item, merged)
	return item
}

func applyDetails(item *model.Item, row cargo.Row) {
	item.RequiredLevel = field(row, "required_level")
	item.FlavourText = cleanText(field(row, "flavour_text"))

	if item.Rarity == model.RarityCurrency {
		// Currency rows carry a stack-size/effect block instead of
		// mods and base stats; those stay absent.
		item.StackEffects = ParseStackEffects(field(row, "description"))
		return
	}

	item.Description = cleanText(field(row, "description"))
	item.Mods = append(splitMods(field(row, "implicit_mods")), splitMods(field(row, "explicit_mods"))...)
	if len(item.Mods) == 0 {
		item.Mods = nil
	}
	item.BaseStats = statLines(row)
}

// ParseStackEffects splits a currency effect block into ordered
// threshold/description pairs: one pair per line, threshold and
// description separated by the first colon. Lines without a colon are
// effect descriptions with no threshold.
func ParseStackEffects(block string) []model.StackEffect {
	block = cleanText(brRe.ReplaceAllString(block, "\n"))
	if block == "" {
		return nil
	}

	var effects []model.StackEffect
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		threshold, desc, found := strings.Cut(line, ":")
		if !found {
			effects = append(effects, model.StackEffect{Description: line})
			continue
		}
		effects = append(effects, model.StackEffect{
			Threshold:   strings.TrimSpace(threshold),
			Description: strings.TrimSpace(desc),
		})
	}
	return effects
}

func statLines(row cargo.Row) []model.StatLine {
	remaining := make(map[string]string, len(row))
	for k, v := range row {
		key := normalizeKey(k)
		if _, identity := identityFields[key]; identity {
			continue
		}
		if v == "" || v == "0" {
			continue
		}
		remaining[key] = v
	}

	var stats []model.StatLine
	for _, s := range statOrder {
		val, ok := remaining[s.key]
		if !ok {
			continue
		}
		delete(remaining, s.key)
		if strings.HasSuffix(s.key, "_range_text") {
			// The range text supersedes the numeric roll columns.
			base := strings.TrimSuffix(s.key, "_range_text")
			delete(remaining, base)
			delete(remaining, base+"_min")
			delete(remaining, base+"_max")
		}
		stats = append(stats, model.StatLine{Label: s.label, Value: cleanText(val)})
	}

	// Leftover columns render with a title-cased label, in stable order.
	var leftover []string
	for k := range remaining {
		leftover = append(leftover, k)
	}
	sort.Strings(leftover)
	for _, k := range leftover {
		label := titleCaser.String(strings.ReplaceAll(strings.TrimSuffix(k, "_range_text"), "_", " "))
		stats = append(stats, model.StatLine{Label: label, Value: cleanText(remaining[k])})
	}
	return stats
}

func splitMods(raw string) []string {
	raw = cleanText(raw)
	if raw == "" {
		return nil
	}
	var mods []string
	for _, line := range brRe.Split(raw, -1) {
		line = strings.TrimSpace(line)
		if line != "" {
			mods = append(mods, line)
		}
	}
	return mods
}

// field reads a row value under either the underscore or space spelling
// of a logical field name; Cargo reports requested columns with spaces.
func field(row cargo.Row, name string) string {
	if v, ok := row[name]; ok {
		return v
	}
	if v, ok := row[strings.ReplaceAll(name, "_", " ")]; ok {
		return v
	}
	return row[strings.ReplaceAll(name, " ", "_")]
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(k), " ", "_"))
}

// cleanText strips wiki link markup, keeping the display text.
func cleanText(s string) string {
	return strings.TrimSpace(wikiLinkRe.ReplaceAllString(s, "$1"))
}

