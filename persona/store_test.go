package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *Profile {
	return &Profile{
		Name:         "Alina",
		Age:          23,
		Country:      "Russia",
		City:         "Moscow",
		Language:     "ru",
		Interests:    []string{"music", "travel"},
		Mood:         "playful",
		MessageCount: 5,
		SemiMessage:  "Почти всё...",
		FinalMessage: "Пока! Пиши мне на сайте",
		UseEmoji:     true,
		Triggers:     []string{"telegram"},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("alina", validProfile()))

	p, err := s.Load("alina")
	require.NoError(t, err)
	assert.Equal(t, "Alina", p.Name)
	assert.Equal(t, 5, p.MessageCount)
	assert.Equal(t, []string{"telegram"}, p.Triggers)
}

func TestStore_LoadUnknownReturnsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadCachesProfile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("alina", validProfile()))

	first, err := s.Load("alina")
	require.NoError(t, err)

	// Deleting the backing file must not matter once cached.
	require.NoError(t, os.Remove(filepath.Join(dir, "alina.json")))

	second, err := s.Load("alina")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStore_SaveReplacesCacheEntry(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("alina", validProfile()))
	_, err := s.Load("alina")
	require.NoError(t, err)

	updated := validProfile()
	updated.Mood = "tired"
	updated.MessageCount = 8
	require.NoError(t, s.Save("alina", updated))

	p, err := s.Load("alina")
	require.NoError(t, err)
	assert.Equal(t, "tired", p.Mood)
	assert.Equal(t, 8, p.MessageCount)
}

func TestStore_SaveRejectsInvalidProfile(t *testing.T) {
	s := newTestStore(t)

	p := validProfile()
	p.MessageCount = 0
	assert.Error(t, s.Save("alina", p))

	p = validProfile()
	p.Language = "fr"
	assert.Error(t, s.Save("alina", p))

	p = validProfile()
	p.FinalMessage = ""
	assert.Error(t, s.Save("alina", p))
}

func TestStore_List(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("alina", validProfile()))

	eng := validProfile()
	eng.Name = "Emma"
	eng.Language = "en"
	eng.Country = "USA"
	eng.FinalMessage = "Bye! Find me on the site"
	require.NoError(t, s.Save("emma", eng))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alina", list[0].ID)
	assert.Equal(t, "Alina", list[0].DisplayName)
	assert.Equal(t, "emma", list[1].ID)
	assert.Equal(t, "en", list[1].Language)
}
