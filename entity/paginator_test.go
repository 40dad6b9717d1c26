package entity

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginator(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		offset  int
		want    Paginator
		wantErr bool
	}{
		{name: "defaults", want: Paginator{Limit: DefaultLimit}},
		{name: "explicit", limit: 15, offset: 30, want: Paginator{Limit: 15, Offset: 30}},
		{name: "negative limit", limit: -1, wantErr: true},
		{name: "negative offset", limit: 10, offset: -10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgn, err := NewPaginator(tt.limit, tt.offset, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pgn)
		})
	}
}

func TestPaginator_SetPage(t *testing.T) {
	for _, limit := range []int{1, 5, 15, 100} {
		for _, page := range []int{0, 1, 2, 7, 1000} {
			pgn := Paginator{Limit: limit}
			require.NoError(t, pgn.SetPage(page))
			assert.Equal(t, limit*page, pgn.Offset)
			assert.Equal(t, page, pgn.Page())
		}
	}
}

func TestPaginator_SetPageNegative(t *testing.T) {
	pgn := Paginator{Limit: 10, Offset: 20}

	err := pgn.SetPage(-1)
	assert.True(t, errors.Is(err, ErrNegativePage))
	assert.Equal(t, 20, pgn.Offset)
}

func TestPaginator_SetPageOverflow(t *testing.T) {
	pgn := Paginator{Limit: 15, Offset: 45}

	err := pgn.SetPage(math.MaxInt / 10)
	assert.True(t, errors.Is(err, ErrPageTooLarge))
	assert.Equal(t, 45, pgn.Offset)

	require.NoError(t, pgn.SetPage(math.MaxInt/15))
	assert.GreaterOrEqual(t, pgn.Offset, 0)
}

func TestPaginator_SetLimit(t *testing.T) {
	pgn := Paginator{Limit: 10, Offset: 30, LimitOptions: []int{5, 10, 25}}

	require.NoError(t, pgn.SetLimit(25))
	assert.Equal(t, 25, pgn.Limit)
	assert.Equal(t, 25, pgn.Offset)

	err := pgn.SetLimit(15)
	assert.True(t, errors.Is(err, ErrLimitNotOption))
	assert.Equal(t, 25, pgn.Limit)

	err = pgn.SetLimit(0)
	assert.True(t, errors.Is(err, ErrBadLimit))
}

func TestPaginator_PageCount(t *testing.T) {
	pgn := Paginator{Limit: 15}

	assert.Equal(t, 0, pgn.PageCount(0))
	assert.Equal(t, 1, pgn.PageCount(1))
	assert.Equal(t, 1, pgn.PageCount(15))
	assert.Equal(t, 2, pgn.PageCount(16))
	assert.Equal(t, 7, pgn.PageCount(100))
}
