// Package query translates user search input into structured Cargo
// queries against the loaded schema mapping.
package query

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/exile-tools/poewiki-cli/internal/mapping"
	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

// ErrInvalidInput flags bad user-supplied parameters. Reported directly
// to the user; never retried.
var ErrInvalidInput = eris.New("invalid query input")

// metadataFields are the logical detail fields fetched from the items
// table, in the order a detailed row should carry them.
var metadataFields = []string{
	"required_level",
	"flavour_text",
	"description",
	"implicit_mods",
	"explicit_mods",
}

// statExcludedFields never count as base stats even when the
// supplementary table declares them.
var statExcludedFields = map[string]struct{}{
	"name":          {},
	"class":         {},
	"item_class":    {},
	"rarity":        {},
	"implicit_mods": {},
	"explicit_mods": {},
	"flavour_text":  {},
	"description":   {},
}

// statExcludedSubstrings filter out per-roll numeric columns that the
// range_text columns already summarize.
var statExcludedSubstrings = []string{"_min", "_max", "average", "color", "colour", "html"}

// Builder converts search terms and detail lookups into Cargo query
// requests. It consults the schema mapping for every column it emits and
// fails with a schema error when a required logical field is missing.
type Builder struct {
	schema   *mapping.Schema
	maxLimit int
}

// NewBuilder creates a Builder bound to a validated schema mapping.
func NewBuilder(schema *mapping.Schema, maxLimit int) *Builder {
	if maxLimit < 1 {
		maxLimit = 1
	}
	return &Builder{schema: schema, maxLimit: maxLimit}
}

// Search builds the minimal-field query for a free-text name search.
// The term matches case-insensitively as a substring; limit is clamped
// to the configured maximum, never rejected.
func (b *Builder) Search(term string, limit int, itemClass string) (cargo.QueryRequest, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return cargo.QueryRequest{}, eris.Wrap(ErrInvalidInput, "query: empty search term")
	}
	if limit < 1 {
		return cargo.QueryRequest{}, eris.Wrapf(ErrInvalidInput, "query: limit %d below 1", limit)
	}
	if limit > b.maxLimit {
		limit = b.maxLimit
	}

	for _, f := range []string{"name", "rarity", "class"} {
		if !b.schema.HasField(mapping.ItemsTable, f) {
			return cargo.QueryRequest{}, eris.Wrapf(mapping.ErrSchema, "query: items table missing field %q", f)
		}
	}

	fields := []string{"name", "rarity", "class", "_pageID"}
	if b.schema.HasField(mapping.ItemsTable, "inventory_icon") {
		fields = append(fields, "inventory_icon")
	}

	where := "name LIKE '%" + escape(term) + "%'"
	if itemClass != "" {
		where += " AND class='" + escape(itemClass) + "'"
	}

	orderBy := "name"
	if b.schema.HasField(mapping.ItemsTable, "drop_enabled") {
		orderBy = "drop_enabled DESC, name"
	}

	return cargo.QueryRequest{
		Tables:  mapping.ItemsTable,
		Fields:  fields,
		Where:   where,
		OrderBy: orderBy,
		Limit:   limit,
	}, nil
}

// Detail builds the full-field queries for a single already-identified
// item: one against the items table for metadata and mods, and, when the
// item class has a supplementary stats table in the mapping, a second
// against that table. Detail lookups are keyed by page identifier, not
// by search term.
func (b *Builder) Detail(pageID string, itemClass string) ([]cargo.QueryRequest, error) {
	if strings.TrimSpace(pageID) == "" {
		return nil, eris.Wrap(ErrInvalidInput, "query: empty page identifier")
	}

	if !b.schema.HasField(mapping.ItemsTable, "name") {
		return nil, eris.Wrap(mapping.ErrSchema, "query: items table missing field \"name\"")
	}

	where := "_pageID='" + escape(pageID) + "'"

	// The name field anchors the query so it never requests zero fields.
	fields := []string{"name"}
	for _, f := range metadataFields {
		if b.schema.HasField(mapping.ItemsTable, f) {
			fields = append(fields, f)
		}
	}

	reqs := []cargo.QueryRequest{{
		Tables: mapping.ItemsTable,
		Fields: fields,
		Where:  where,
		Limit:  1,
	}}

	table, ok := mapping.TableForClass(itemClass)
	if !ok || table == mapping.ItemsTable || !b.schema.HasTable(table) {
		return reqs, nil
	}

	statFields := b.statFields(table)
	if len(statFields) > 0 {
		reqs = append(reqs, cargo.QueryRequest{
			Tables: table,
			Fields: statFields,
			Where:  where,
			Limit:  1,
		})
	}

	return reqs, nil
}

func (b *Builder) statFields(table string) []string {
	var fields []string
	for _, f := range b.schema.Fields(table) {
		key := strings.ReplaceAll(strings.ToLower(f), " ", "_")
		if _, excluded := statExcludedFields[key]; excluded {
			continue
		}
		if containsAny(key, statExcludedSubstrings) {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// escape doubles single quotes for Cargo's SQL-style where clauses.
func escape(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
