package mapping

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

type fakeIntrospector struct {
	fields map[string][]string
}

func (f *fakeIntrospector) Query(ctx context.Context, req cargo.QueryRequest) ([]cargo.Row, error) {
	return nil, nil
}

func (f *fakeIntrospector) ImageURLs(ctx context.Context, titles []string) (map[string]string, error) {
	return nil, nil
}

func (f *fakeIntrospector) TableFields(ctx context.Context, table string) ([]string, error) {
	fields, ok := f.fields[table]
	if !ok {
		return nil, eris.Errorf("no such table %s", table)
	}
	return fields, nil
}

func TestGenerate(t *testing.T) {
	client := &fakeIntrospector{fields: map[string][]string{
		"items":   {"name", "rarity", "class", "flavour_text"},
		"weapons": {"name", "attack_speed"},
	}}

	s, err := Generate(context.Background(), client)
	require.NoError(t, err)

	// Tables the remote no longer declares are skipped, not fatal.
	assert.True(t, s.HasTable("items"))
	assert.True(t, s.HasTable("weapons"))
	assert.False(t, s.HasTable("maps"))
	assert.True(t, s.HasField("items", "flavour_text"))
}

func TestGenerateMissingItemsTable(t *testing.T) {
	client := &fakeIntrospector{fields: map[string][]string{
		"weapons": {"name", "attack_speed"},
	}}

	_, err := Generate(context.Background(), client)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestGenerateItemsMissingRequiredColumn(t *testing.T) {
	client := &fakeIntrospector{fields: map[string][]string{
		"items": {"name", "class"}, // no rarity
	}}

	_, err := Generate(context.Background(), client)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}
