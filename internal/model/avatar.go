package model

import "fmt"

// Avatar is a selectable player character.
// Ids are append-only: changing one reassigns every stored player's avatar.
type Avatar struct {
	ID    int
	Glyph string
	Name  string
}

// AvatarCatalog is an immutable, ordered list of avatars
type AvatarCatalog struct {
	avatars []Avatar
	byID    map[int]int
}

// NewAvatarCatalog builds a catalog, rejecting empty catalogs and duplicate ids
func NewAvatarCatalog(avatars []Avatar) (*AvatarCatalog, error) {
	if len(avatars) == 0 {
		return nil, fmt.Errorf("%w: empty avatar catalog", ErrInvalidAvatar)
	}
	c := &AvatarCatalog{
		avatars: make([]Avatar, len(avatars)),
		byID:    make(map[int]int, len(avatars)),
	}
	for i, a := range avatars {
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate avatar id %d", ErrInvalidAvatar, a.ID)
		}
		c.avatars[i] = a
		c.byID[a.ID] = i
	}
	return c, nil
}

// Lookup returns the avatar with the given id
func (c *AvatarCatalog) Lookup(id int) (Avatar, error) {
	i, ok := c.byID[id]
	if !ok {
		return Avatar{}, ErrInvalidAvatar
	}
	return c.avatars[i], nil
}

// LookupOrDefault returns the avatar with the given id, or the first avatar
func (c *AvatarCatalog) LookupOrDefault(id int) Avatar {
	if a, err := c.Lookup(id); err == nil {
		return a
	}
	return c.Default()
}

// Default returns the first avatar in the catalog
func (c *AvatarCatalog) Default() Avatar {
	return c.avatars[0]
}

// All returns a copy of the catalog in order
func (c *AvatarCatalog) All() []Avatar {
	result := make([]Avatar, len(c.avatars))
	copy(result, c.avatars)
	return result
}

// DefaultAvatars is the catalog shipped with the game
func DefaultAvatars() []Avatar {
	return []Avatar{
		{ID: 0, Glyph: "🐿️", Name: "Squirrel"},
		{ID: 1, Glyph: "🦆", Name: "Duck"},
		{ID: 2, Glyph: "🦢", Name: "Swan"},
		{ID: 3, Glyph: "🐸", Name: "Frog"},
		{ID: 4, Glyph: "🦉", Name: "Owl"},
		{ID: 5, Glyph: "🦊", Name: "Fox"},
		{ID: 6, Glyph: "🦝", Name: "Raccoon"},
		{ID: 7, Glyph: "🦡", Name: "Badger"},
		{ID: 8, Glyph: "🦫", Name: "Beaver"},
		{ID: 9, Glyph: "🦦", Name: "Otter"},
		{ID: 10, Glyph: "🦥", Name: "Sloth"},
		{ID: 11, Glyph: "🦨", Name: "Skunk"},
		{ID: 12, Glyph: "🦘", Name: "Kangaroo"},
		{ID: 13, Glyph: "🦙", Name: "Llama"},
		{ID: 14, Glyph: "🦒", Name: "Giraffe"},
	}
}
