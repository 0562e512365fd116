// Package mapping loads the generated Cargo schema artifact that maps
// logical item fields to remote tables and columns. The artifact is
// produced out-of-process (see the mapping subcommand) and treated as
// read-only configuration: it is loaded and validated once at startup.
package mapping

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrSchema signals that the mapping artifact is missing, unreadable or
// inconsistent with what the query layer requires. It means the artifact
// is stale and must be regenerated; it is never retried at runtime.
var ErrSchema = eris.New("cargo schema mapping invalid")

// ItemsTable is the primary Cargo table every search runs against.
const ItemsTable = "items"

// requiredItemFields are the logical fields the search pipeline cannot
// work without. Their absence fails Load eagerly rather than surfacing
// on the first query.
var requiredItemFields = []string{"name", "rarity", "class"}

// Schema is the parsed mapping artifact: remote table name to the list
// of columns declared on it.
type Schema struct {
	Tables map[string][]string `yaml:"tables"`

	index map[string]map[string]struct{}
}

// Load reads and validates the mapping artifact at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrSchema, "mapping: read %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a mapping artifact.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(ErrSchema, "mapping: unmarshal: %v", err)
	}
	if len(s.Tables) == 0 {
		return nil, eris.Wrap(ErrSchema, "mapping: no tables declared")
	}

	s.index = make(map[string]map[string]struct{}, len(s.Tables))
	for table, fields := range s.Tables {
		cols := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			cols[normalize(f)] = struct{}{}
		}
		s.index[table] = cols
	}

	for _, f := range requiredItemFields {
		if !s.HasField(ItemsTable, f) {
			return nil, eris.Wrapf(ErrSchema, "mapping: items table missing required field %q", f)
		}
	}

	return &s, nil
}

// HasTable reports whether the remote schema declares the given table.
func (s *Schema) HasTable(table string) bool {
	_, ok := s.index[table]
	return ok
}

// HasField reports whether a column exists on a table. Cargo accepts
// both spaces and underscores in field names; both match here.
func (s *Schema) HasField(table, field string) bool {
	cols, ok := s.index[table]
	if !ok {
		return false
	}
	_, ok = cols[normalize(field)]
	return ok
}

// Fields returns the declared columns of a table.
func (s *Schema) Fields(table string) []string {
	return s.Tables[table]
}

func normalize(field string) string {
	return strings.ReplaceAll(strings.TrimSpace(field), " ", "_")
}

// classTables routes item classes to the supplementary Cargo table that
// holds their base stats. Classes without an entry have no stats beyond
// the items table.
var classTables = map[string]string{
	"One-Handed Axe":   "weapons",
	"Two-Handed Axe":   "weapons",
	"One-Handed Mace":  "weapons",
	"Two-Handed Mace":  "weapons",
	"One-Handed Sword": "weapons",
	"Two-Handed Sword": "weapons",
	"Bow":              "weapons",
	"Claw":             "weapons",
	"Dagger":           "weapons",
	"Rune Dagger":      "weapons",
	"Staff":            "weapons",
	"Warstaff":         "weapons",
	"Wand":             "weapons",
	"Sceptre":          "weapons",

	"Body Armour": "armours",
	"Helmet":      "armours",
	"Boots":       "armours",
	"Gloves":      "armours",
	"Shield":      "armours",

	"Skill Gem":       "skill_gems",
	"Support Gem":     "skill_gems",
	"Map":             "maps",
	"Jewel":           "jewels",
	"Abyss Jewel":     "jewels",
	"Flask":           "flasks",
	"Amulet":          "amulets",
	"Ring":            "items",
	"Belt":            "items",
	"Divination Card": "divination_cards",
}

// TableForClass returns the supplementary stats table for an item class.
func TableForClass(class string) (string, bool) {
	t, ok := classTables[class]
	return t, ok
}

// KnownTables returns every table the generator should introspect: the
// items table plus all supplementary tables, deduplicated.
func KnownTables() []string {
	seen := map[string]struct{}{ItemsTable: {}}
	tables := []string{ItemsTable}
	for _, t := range classTables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tables = append(tables, t)
	}
	return tables
}
