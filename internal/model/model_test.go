package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarCatalogLookup(t *testing.T) {
	c, err := NewAvatarCatalog(DefaultAvatars())
	require.NoError(t, err)

	a, err := c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "Duck", a.Name)

	_, err = c.Lookup(99)
	assert.ErrorIs(t, err, ErrInvalidAvatar)
}

func TestAvatarCatalogDefault(t *testing.T) {
	c, err := NewAvatarCatalog(DefaultAvatars())
	require.NoError(t, err)

	assert.Equal(t, 0, c.Default().ID)
	assert.Equal(t, c.Default(), c.LookupOrDefault(-5))
	assert.Len(t, c.All(), 15)
}

func TestAvatarCatalogRejectsInvalid(t *testing.T) {
	_, err := NewAvatarCatalog(nil)
	assert.ErrorIs(t, err, ErrInvalidAvatar)

	_, err = NewAvatarCatalog([]Avatar{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
	assert.ErrorIs(t, err, ErrInvalidAvatar)
}

func TestRosterSort(t *testing.T) {
	r := Roster{
		{PlayerID: "p3", DisplayName: "Cara", SpaceID: 4},
		{PlayerID: "p2", DisplayName: "Bea", SpaceID: 10},
		{PlayerID: "p1", DisplayName: "Abe", SpaceID: 4},
		{PlayerID: "p0", DisplayName: "Abe", SpaceID: 4},
	}
	r.Sort()

	ids := make([]PlayerID, len(r))
	for i, e := range r {
		ids[i] = e.PlayerID
	}
	assert.Equal(t, []PlayerID{"p2", "p0", "p1", "p3"}, ids)
}

func TestRosterFind(t *testing.T) {
	r := Roster{{PlayerID: "p1", SpaceID: 3}}

	entry := r.Find("p1")
	require.NotNil(t, entry)
	assert.Equal(t, 3, entry.SpaceID)
	assert.Nil(t, r.Find("p2"))
}

func TestMoveReached(t *testing.T) {
	assert.True(t, Move{To: 100}.Reached(100))
	assert.False(t, Move{To: 99}.Reached(100))
}

func TestPlayerName(t *testing.T) {
	var missing *Player
	assert.Equal(t, UnknownPlayerName, missing.Name())
	assert.Equal(t, UnknownPlayerName, (&Player{ID: "p1"}).Name())
	assert.Equal(t, "Alice", (&Player{ID: "p1", DisplayName: "Alice"}).Name())
}
