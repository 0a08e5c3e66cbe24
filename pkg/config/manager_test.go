package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSection records what the manager does with it.
type stubSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
	resets      int
}

func (s *stubSection) ID() string { return s.id }
func (s *stubSection) Title() string { return s.id }
func (s *stubSection) Description() string { return "stub" }
func (s *stubSection) Data() map[string]interface{} { return s.data }
func (s *stubSection) Validate() error { return s.validateErr }
func (s *stubSection) Reset() { s.resets++; s.data = map[string]interface{}{} }
func (s *stubSection) SetData(d map[string]interface{}) error {
	s.data = d
	return nil
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return store
}

func TestManagerRegister(t *testing.T) {
	m := NewManager(newTestStore(t))

	require.NoError(t, m.RegisterSection(&stubSection{id: "b"}))
	require.NoError(t, m.RegisterSection(&stubSection{id: "a"}))
	assert.Error(t, m.RegisterSection(&stubSection{id: "a"}), "duplicate ids are rejected")

	sections := m.GetSections()
	require.Len(t, sections, 2)
	assert.Equal(t, "b", sections[0].ID())
	assert.Equal(t, "a", sections[1].ID())

	_, ok := m.GetSection("a")
	assert.True(t, ok)
	_, ok = m.GetSection("missing")
	assert.False(t, ok)
	assert.NotNil(t, m.Store())
}

func TestManagerSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)
	section := &stubSection{id: "stub", data: map[string]interface{}{"key": "value"}}
	require.NoError(t, m.RegisterSection(section))
	require.NoError(t, m.SaveAll())

	reloaded, err := NewFileStore(store.Path())
	require.NoError(t, err)
	m2 := NewManager(reloaded)
	fresh := &stubSection{id: "stub"}
	require.NoError(t, m2.RegisterSection(fresh))
	require.NoError(t, m2.LoadAll())
	assert.Equal(t, "value", fresh.data["key"])
}

func TestManagerValidation(t *testing.T) {
	m := NewManager(newTestStore(t))
	bad := &stubSection{id: "bad", data: map[string]interface{}{"x": 1}, validateErr: errors.New("nope")}
	require.NoError(t, m.RegisterSection(bad))

	err := m.SaveAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid section bad")

	require.NoError(t, m.Store().SetSection("bad", map[string]interface{}{"x": 2}))
	require.NoError(t, m.Store().Save())
	assert.Error(t, m.LoadAll())
}

func TestManagerSkipsEmptySections(t *testing.T) {
	m := NewManager(newTestStore(t))
	section := &stubSection{id: "untouched", validateErr: errors.New("never called")}
	require.NoError(t, m.RegisterSection(section))
	assert.NoError(t, m.LoadAll())
	assert.Nil(t, section.data)
}

func TestManagerResetAll(t *testing.T) {
	m := NewManager(newTestStore(t))
	a := &stubSection{id: "a"}
	b := &stubSection{id: "b"}
	require.NoError(t, m.RegisterSection(a))
	require.NoError(t, m.RegisterSection(b))

	m.ResetAll()
	assert.Equal(t, 1, a.resets)
	assert.Equal(t, 1, b.resets)
}
