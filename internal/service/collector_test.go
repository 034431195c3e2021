package service

import (
	"context"
	"errors"
	"testing"

	"AuctionSync/internal/adapter/mabinogi"
	"AuctionSync/internal/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listings(names ...string) []model.RawListing {
	out := make([]model.RawListing, 0, len(names))
	for _, n := range names {
		out = append(out, model.RawListing{ItemName: n})
	}
	return out
}

func TestCollectFollowsCursorUntilEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	f := &scriptedFetcher{pages: map[string][]*model.Page{
		"검": {
			{Items: listings("a", "b"), NextCursor: "p1"},
			{Items: listings("c"), NextCursor: "p2"},
			{Items: listings("d"), NextCursor: ""},
		},
	}}
	res, err := NewCollector(f, 100, logger).Collect(context.Background(), model.Category{ID: "검"})
	require.NoError(t, err)
	assert.Len(t, res.Listings, 4)
	assert.Equal(t, 3, res.Pages)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, []string{"검|", "검|p1", "검|p2"}, f.seen)
}

func TestCollectStopsOnEmptyPage(t *testing.T) {
	logger, _ := test.NewNullLogger()
	f := &scriptedFetcher{pages: map[string][]*model.Page{
		"검": {
			{Items: listings("a"), NextCursor: "p1"},
			{Items: nil, NextCursor: "p2"},
			{Items: listings("never"), NextCursor: ""},
		},
	}}
	res, err := NewCollector(f, 100, logger).Collect(context.Background(), model.Category{ID: "검"})
	require.NoError(t, err)
	assert.Len(t, res.Listings, 1)
	assert.Equal(t, int64(2), f.Calls())
}

func TestCollectStopsAtPageCeiling(t *testing.T) {
	logger, hook := test.NewNullLogger()
	f := &endlessFetcher{}
	res, err := NewCollector(f, 7, logger).Collect(context.Background(), model.Category{ID: "검"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.Calls())
	assert.Equal(t, 7, res.Pages)
	assert.Len(t, res.Listings, 7)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "页数上限")
}

func TestCollectFallbackReplacesResult(t *testing.T) {
	logger, _ := test.NewNullLogger()
	restored := []model.NormalizedItem{{Name: "old1"}, {Name: "old2"}}
	f := &scriptedFetcher{pages: map[string][]*model.Page{
		"검": {
			{Items: listings("a"), NextCursor: "p1"},
			{UsedFallback: true, Restored: restored},
		},
	}}
	res, err := NewCollector(f, 100, logger).Collect(context.Background(), model.Category{ID: "검"})
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	assert.Equal(t, restored, res.Restored)
	assert.Empty(t, res.Listings)
	assert.Equal(t, 2, res.Pages)
}

func TestCollectPropagatesErrorsUnchanged(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fatal := &mabinogi.FatalError{Cause: errors.New("bad key")}
	f := &scriptedFetcher{errs: map[string]error{"검": fatal}}
	_, err := NewCollector(f, 100, logger).Collect(context.Background(), model.Category{ID: "검"})
	assert.Same(t, fatal, err)
	assert.True(t, mabinogi.IsFatal(err))
}
