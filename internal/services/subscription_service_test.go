package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipesLimit(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	testCases := []struct {
		raw      string
		expected *int
	}{
		{raw: "", expected: nil},
		{raw: "3", expected: intPtr(3)},
		{raw: "0", expected: intPtr(0)},
		{raw: "-1", expected: nil},
		{raw: "2.5", expected: nil},
		{raw: "abc", expected: nil},
		{raw: " 4", expected: nil},
	}

	for _, tt := range testCases {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRecipesLimit(tt.raw))
		})
	}
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	svc := NewSubscriptionService(f.db, 10)

	t.Run("self follow is rejected without a record", func(t *testing.T) {
		_, err := svc.Subscribe(alice, alice.UserID, nil)
		require.Error(t, err)
		assert.True(t, IsValidation(err))

		var count int64
		require.NoError(t, f.db.Model(&models.Follow{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.Subscribe(alice, 999, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("subscribe then duplicate", func(t *testing.T) {
		entry, err := svc.Subscribe(alice, bob.UserID, nil)
		require.NoError(t, err)
		assert.Equal(t, "bob", entry.Author.Username)
		assert.True(t, entry.IsSubscribed)
		assert.Zero(t, entry.RecipesCount)

		_, err = svc.Subscribe(alice, bob.UserID, nil)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unsubscribe twice", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(alice, bob.UserID))
		assert.ErrorIs(t, svc.Unsubscribe(alice, bob.UserID), ErrRelationNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.Subscribe(Anonymous(), bob.UserID, nil)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestListSubscriptions(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	carol := f.user(t, "carol", models.RoleUser)
	svc := NewSubscriptionService(f.db, 10)

	first := f.recipe(t, bob, "Bob 1", []string{"lunch"})
	second := f.recipe(t, bob, "Bob 2", []string{"lunch"})
	third := f.recipe(t, bob, "Bob 3", []string{"lunch"})
	f.recipe(t, carol, "Carol 1", []string{"dinner"})

	_, err := svc.Subscribe(alice, carol.UserID, nil)
	require.NoError(t, err)
	_, err = svc.Subscribe(alice, bob.UserID, nil)
	require.NoError(t, err)

	t.Run("one entry per author in follow order", func(t *testing.T) {
		page, err := svc.ListSubscriptions(alice, nil, Pagination{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Count)
		require.Len(t, page.Results, 2)
		assert.Equal(t, "carol", page.Results[0].Author.Username)
		assert.Equal(t, "bob", page.Results[1].Author.Username)

		bobs := page.Results[1]
		assert.True(t, bobs.IsSubscribed)
		assert.Equal(t, int64(3), bobs.RecipesCount)
		require.Len(t, bobs.Recipes, 3)
		assert.Equal(t, []uint{third, second, first}, []uint{bobs.Recipes[0].ID, bobs.Recipes[1].ID, bobs.Recipes[2].ID})
	})

	t.Run("recipes limit caps the list but not the count", func(t *testing.T) {
		page, err := svc.ListSubscriptions(alice, ParseRecipesLimit("2"), Pagination{})
		require.NoError(t, err)
		bobs := page.Results[1]
		assert.Equal(t, int64(3), bobs.RecipesCount)
		require.Len(t, bobs.Recipes, 2)
		assert.Equal(t, third, bobs.Recipes[0].ID)
	})

	t.Run("zero limit returns no recipes", func(t *testing.T) {
		page, err := svc.ListSubscriptions(alice, ParseRecipesLimit("0"), Pagination{})
		require.NoError(t, err)
		assert.Empty(t, page.Results[1].Recipes)
		assert.Equal(t, int64(3), page.Results[1].RecipesCount)
	})

	t.Run("paginates authors", func(t *testing.T) {
		page, err := svc.ListSubscriptions(alice, nil, Pagination{Page: 2, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Count)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "bob", page.Results[0].Author.Username)
	})

	t.Run("users without follows get an empty feed", func(t *testing.T) {
		page, err := svc.ListSubscriptions(bob, nil, Pagination{})
		require.NoError(t, err)
		assert.Zero(t, page.Count)
		assert.Empty(t, page.Results)
	})
}
