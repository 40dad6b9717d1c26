package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "shgrid/entity"
)

type planet struct {
	Name  string
	Kind  string
	Orbit string
}

func planetCell(row planet, columnID string) string {
	switch columnID {
	case "name":
		return row.Name
	case "kind":
		return row.Kind
	case "orbit":
		return row.Orbit
	}
	return ""
}

var planets = []planet{
	{Name: "Mercury", Kind: "rocky", Orbit: "1"},
	{Name: "Venus", Kind: "rocky", Orbit: "2"},
	{Name: "Earth", Kind: "rocky", Orbit: "3"},
	{Name: "Mars", Kind: "rocky", Orbit: "4"},
	{Name: "Jupiter", Kind: "gas", Orbit: "5"},
	{Name: "Saturn", Kind: "gas", Orbit: "6"},
	{Name: "Uranus", Kind: "ice", Orbit: "7"},
	{Name: "Neptune", Kind: "ice", Orbit: "8"},
}

func newLocal(t *testing.T, cfg LocalConfig[planet]) *LocalGrid[planet] {
	t.Helper()

	cfg.Columns = []nt.Column{{ID: "name"}, {ID: "kind"}, {ID: "orbit"}}
	cfg.Rows = planets
	cfg.Cell = planetCell

	lg, err := cfg.New()
	require.NoError(t, err)
	return lg
}

func names(rows []planet) (out []string) {
	out = []string{}
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return
}

// LocalGrid and ServerGrid are interchangeable for a view.
var (
	_ DataSource[planet] = &LocalGrid[planet]{}
	_ DataSource[planet] = &ServerGrid[planet]{}
)

func TestLocalGrid_Paging(t *testing.T) {
	lg := newLocal(t, LocalConfig[planet]{Limit: 3})

	state := lg.State()
	assert.False(t, state.Loading)
	assert.Equal(t, 8, state.Count)
	assert.Equal(t, []string{"Mercury", "Venus", "Earth"}, names(state.Data))

	require.NoError(t, lg.SetPage(2))
	assert.Equal(t, []string{"Uranus", "Neptune"}, names(lg.State().Data))

	require.NoError(t, lg.SetPage(5))
	assert.Equal(t, []string{}, names(lg.State().Data))

	assert.ErrorIs(t, lg.SetPage(-1), nt.ErrNegativePage)
	assert.Equal(t, 15, lg.Paginator().Offset)
}

func TestLocalGrid_Filter(t *testing.T) {
	lg := newLocal(t, LocalConfig[planet]{Limit: 10})

	require.NoError(t, lg.SetFilter("name", "UR"))
	assert.Equal(t, []string{"Mercury", "Saturn", "Uranus"}, names(lg.State().Data))

	require.NoError(t, lg.SetFilter("kind", "gas"))
	assert.Equal(t, []string{"Saturn"}, names(lg.State().Data))
	assert.Equal(t, 1, lg.State().Count)

	require.NoError(t, lg.SetFilter("name", ""))
	require.NoError(t, lg.SetFilter("kind", ""))
	assert.Equal(t, 8, lg.State().Count)

	assert.ErrorIs(t, lg.SetFilter("moons", "2"), ErrUnknownColumn)
}

func TestLocalGrid_Sort(t *testing.T) {
	lg := newLocal(t, LocalConfig[planet]{
		Limit:   4,
		Sorters: []nt.Sorter{{Column: "kind", Asc: true}, {Column: "name", Asc: false}},
	})

	assert.Equal(t, []string{"Saturn", "Jupiter", "Uranus", "Neptune"}, names(lg.State().Data))

	require.NoError(t, lg.ToggleSort("kind"))
	assert.Equal(t, []string{"Venus", "Mercury", "Mars", "Earth"}, names(lg.State().Data))

	require.NoError(t, lg.ToggleSort("kind"))
	require.NoError(t, lg.ToggleSort("name"))
	assert.Equal(t, []string{"Mercury", "Venus", "Earth", "Mars"}, names(lg.State().Data))
}

func TestLocalGrid_Notify(t *testing.T) {
	var calls int
	lg := newLocal(t, LocalConfig[planet]{Listener: func() { calls++ }})
	assert.Equal(t, 1, calls)

	lg.OnChange(nil)
	lg.BuildData()
	assert.Equal(t, 1, calls)

	lg.OnChange(func() { calls += 10 })
	lg.SetRows(planets[:2])
	assert.Equal(t, 11, calls)
	assert.Equal(t, 2, lg.State().Count)
}

func TestLocalConfig_New(t *testing.T) {
	cfg := LocalConfig[planet]{Columns: []nt.Column{{ID: "name"}}}
	_, err := cfg.New()
	assert.Error(t, err)
}

func TestLocalGrid_Accessors(t *testing.T) {
	lg := newLocal(t, LocalConfig[planet]{
		Limit:   3,
		RowLink: func(row planet) string { return "/planets/" + row.Name },
	})

	assert.Equal(t, 3, lg.PageCount())
	assert.Len(t, lg.Columns(), 3)
	assert.Equal(t, []nt.Sorter{}, lg.Sorters())
	assert.Equal(t, "/planets/Mars", lg.RowLink(planets[3]))

	require.NoError(t, lg.SetFilter("kind", "ice"))
	assert.Equal(t, 1, lg.PageCount())
	assert.Equal(t, "ice", lg.Columns()[1].Filter)
}
