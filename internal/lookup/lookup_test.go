package lookup

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exile-tools/poewiki-cli/internal/mapping"
	"github.com/exile-tools/poewiki-cli/internal/model"
	"github.com/exile-tools/poewiki-cli/internal/query"
	"github.com/exile-tools/poewiki-cli/pkg/cargo"
)

// fakeClient serves canned rows per table and records the requests it saw.
type fakeClient struct {
	rows      map[string][]cargo.Row
	queryErr  error
	images    map[string]string
	imagesErr error

	queries     []cargo.QueryRequest
	imageTitles [][]string
}

func (f *fakeClient) Query(_ context.Context, req cargo.QueryRequest) ([]cargo.Row, error) {
	f.queries = append(f.queries, req)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows[req.Tables], nil
}

func (f *fakeClient) ImageURLs(_ context.Context, titles []string) (map[string]string, error) {
	f.imageTitles = append(f.imageTitles, titles)
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return f.images, nil
}

func (f *fakeClient) TableFields(_ context.Context, _ string) ([]string, error) {
	return nil, eris.New("not implemented")
}

func testService(t *testing.T, client *fakeClient) *Service {
	t.Helper()
	s, err := mapping.Parse([]byte(`
tables:
  items: [name, rarity, class, inventory_icon, required_level, flavour_text, description, implicit_mods, explicit_mods]
  weapons: [name, attack_speed, physical_damage_range_text]
`))
	require.NoError(t, err)
	return New(client, query.NewBuilder(s, 50))
}

func TestSearch(t *testing.T) {
	client := &fakeClient{
		rows: map[string][]cargo.Row{
			"items": {
				{"name": "Chaos Orb", "rarity": "Currency", "class": "Stackable Currency", "_pageID": "42", "inventory icon": "File:Chaos Orb inventory icon.png"},
				{"name": "Orb of Chance", "rarity": "Currency", "class": "Stackable Currency", "_pageID": "43", "inventory icon": "File:Orb of Chance inventory icon.png"},
			},
		},
		images: map[string]string{
			"File:Chaos Orb inventory icon.png":     "https://img.test/chaos.png",
			"File:Orb of Chance inventory icon.png": "https://img.test/chance.png",
		},
	}
	svc := testService(t, client)

	items, err := svc.Search(context.Background(), "orb", 10, "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Chaos Orb", items[0].Name)
	assert.Equal(t, model.RarityCurrency, items[0].Rarity)
	assert.Equal(t, "42", items[0].PageID)
	assert.Equal(t, "https://img.test/chaos.png", items[0].ImageURL)
	assert.Equal(t, "https://img.test/chance.png", items[1].ImageURL)

	require.Len(t, client.imageTitles, 1, "icons resolve in one batch request")
	assert.Len(t, client.imageTitles[0], 2)
}

func TestSearchNoResults(t *testing.T) {
	client := &fakeClient{rows: map[string][]cargo.Row{}}
	svc := testService(t, client)

	items, err := svc.Search(context.Background(), "zzzz", 10, "")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, client.imageTitles, "no icons, no image request")
}

func TestSearchImageFailureDegrades(t *testing.T) {
	client := &fakeClient{
		rows: map[string][]cargo.Row{
			"items": {
				{"name": "Chaos Orb", "rarity": "Currency", "class": "Stackable Currency", "_pageID": "42", "inventory icon": "File:Chaos Orb inventory icon.png"},
			},
		},
		imagesErr: eris.New("imageinfo unavailable"),
	}
	svc := testService(t, client)

	items, err := svc.Search(context.Background(), "chaos", 10, "")
	require.NoError(t, err, "icon failure must not fail the search")
	require.Len(t, items, 1)
	assert.Empty(t, items[0].ImageURL)
}

func TestSearchSharedIconRequestedOnce(t *testing.T) {
	client := &fakeClient{
		rows: map[string][]cargo.Row{
			"items": {
				{"name": "Scroll of Wisdom", "rarity": "Currency", "class": "Stackable Currency", "inventory icon": "File:Scroll.png"},
				{"name": "Portal Scroll", "rarity": "Currency", "class": "Stackable Currency", "inventory icon": "File:Scroll.png"},
			},
		},
		images: map[string]string{"File:Scroll.png": "https://img.test/scroll.png"},
	}
	svc := testService(t, client)

	items, err := svc.Search(context.Background(), "scroll", 10, "")
	require.NoError(t, err)
	require.Len(t, client.imageTitles, 1)
	assert.Len(t, client.imageTitles[0], 1, "duplicate icon titles collapse")
	assert.Equal(t, "https://img.test/scroll.png", items[0].ImageURL)
	assert.Equal(t, "https://img.test/scroll.png", items[1].ImageURL)
}

func TestSearchInvalidInput(t *testing.T) {
	svc := testService(t, &fakeClient{})

	_, err := svc.Search(context.Background(), "   ", 10, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidInput)
}

func TestSearchQueryErrorPropagates(t *testing.T) {
	sentinel := cargo.ErrRemote
	client := &fakeClient{queryErr: eris.Wrap(sentinel, "cargo: query")}
	svc := testService(t, client)

	_, err := svc.Search(context.Background(), "orb", 10, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cargo.ErrRemote, "wrapping preserves the sentinel")
}

func TestDetail(t *testing.T) {
	client := &fakeClient{
		rows: map[string][]cargo.Row{
			"items": {
				{"name": "Starforge", "required level": "67", "flavour text": "The end is written into the beginning.", "explicit mods": "500% increased Physical Damage"},
			},
			"weapons": {
				{"attack speed": "1.38", "physical damage range text": "98-185"},
			},
		},
	}
	svc := testService(t, client)

	base := model.Item{
		Name:     "Starforge",
		Rarity:   model.RarityUnique,
		Class:    "Two-Handed Sword",
		PageID:   "1234",
		ImageURL: "https://img.test/starforge.png",
	}

	detailed, err := svc.Detail(context.Background(), base)
	require.NoError(t, err)

	require.Len(t, client.queries, 2, "items query plus weapons stats query")
	assert.Equal(t, "items", client.queries[0].Tables)
	assert.Equal(t, "weapons", client.queries[1].Tables)

	assert.Equal(t, base.Name, detailed.Name)
	assert.Equal(t, base.ImageURL, detailed.ImageURL)
	assert.Equal(t, "67", detailed.RequiredLevel)
	assert.Equal(t, []string{"500% increased Physical Damage"}, detailed.Mods)
	require.NotEmpty(t, detailed.BaseStats)
	assert.Equal(t, model.StatLine{Label: "Physical Damage", Value: "98-185"}, detailed.BaseStats[0])

	// The input stays a minimal item.
	assert.Nil(t, base.Mods)
	assert.Empty(t, base.RequiredLevel)
}

func TestDetailMissingPageID(t *testing.T) {
	svc := testService(t, &fakeClient{})

	_, err := svc.Detail(context.Background(), model.Item{Name: "Starforge"})
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrInvalidInput)
}

func TestDetailQueryErrorPropagates(t *testing.T) {
	client := &fakeClient{queryErr: eris.Wrap(cargo.ErrNetwork, "cargo: get")}
	svc := testService(t, client)

	_, err := svc.Detail(context.Background(), model.Item{Name: "Goldrim", PageID: "88", Class: "Helmet"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cargo.ErrNetwork)
}
