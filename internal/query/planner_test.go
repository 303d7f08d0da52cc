package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/golinks/internal/apperr"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

type fakeGateway struct {
	items []models.Link
	total int
	err   error
	calls []search.Descriptor
}

func (g *fakeGateway) Query(_ context.Context, d search.Descriptor) ([]models.Link, int, error) {
	g.calls = append(g.calls, d)
	if g.err != nil {
		return nil, 0, g.err
	}
	return g.items, g.total, nil
}

func TestLastPage(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{25, 10, 3},
		{0, 10, 0},
		{10, 10, 1},
		{11, 10, 2},
		{1, 1, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LastPage(c.total, c.limit), "total=%d limit=%d", c.total, c.limit)
	}
}

func TestExecute_PackagesPage(t *testing.T) {
	gw := &fakeGateway{items: []models.Link{{ID: 1, Source: "a"}}, total: 25}
	p := NewPlanner(gw)

	res, err := p.Execute(context.Background(),
		search.Search{Query: "a", Method: search.Levenshtein},
		search.Paging{Page: 2, Limit: 10},
		search.Sort{By: search.Alphabetical, Order: search.Ascending},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 3, res.LastPage)
	assert.Equal(t, 25, res.Total)
	assert.Len(t, res.Items, 1)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, search.KindDistance, gw.calls[0].Strategy.Kind)
	assert.Equal(t, "levenshtein", gw.calls[0].Strategy.Func)
}

func TestExecute_EmptyResult(t *testing.T) {
	p := NewPlanner(&fakeGateway{})

	res, err := p.ExecuteState(context.Background(), search.DefaultState())
	require.NoError(t, err)
	assert.Zero(t, res.LastPage)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestExecute_InvalidLimitNeverReachesStore(t *testing.T) {
	for _, limit := range []int{0, -3} {
		gw := &fakeGateway{}
		_, err := NewPlanner(gw).Execute(context.Background(),
			search.Search{}, search.Paging{Page: 1, Limit: limit}, search.Sort{})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		assert.Empty(t, gw.calls)
	}
}

func TestExecute_UnimplementedMethodFailsFast(t *testing.T) {
	gw := &fakeGateway{items: []models.Link{{ID: 1}}, total: 1}

	res, err := NewPlanner(gw).Execute(context.Background(),
		search.Search{Query: "x", Method: search.Metaphone},
		search.Paging{Page: 1, Limit: 10}, search.Sort{})
	assert.ErrorIs(t, err, apperr.ErrNotImplemented)
	assert.Nil(t, res)
	assert.Empty(t, gw.calls)
}

func TestExecute_UnknownMethodIsInvalid(t *testing.T) {
	gw := &fakeGateway{}
	_, err := NewPlanner(gw).Execute(context.Background(),
		search.Search{Method: search.Method(99)},
		search.Paging{Page: 1, Limit: 10}, search.Sort{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Empty(t, gw.calls)
}

func TestExecute_StoreErrorPassesThrough(t *testing.T) {
	boom := errors.Join(apperr.ErrUnavailable, errors.New("locked"))
	gw := &fakeGateway{err: boom}

	_, err := NewPlanner(gw).Execute(context.Background(),
		search.Search{}, search.Paging{Page: 1, Limit: 10}, search.Sort{})
	assert.Same(t, boom, err)
}
