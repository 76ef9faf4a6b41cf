package registry_test

import (
	"testing"

	"github.com/arthur-debert/partforge/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	reg := registry.New[int]()

	require.NoError(t, reg.Register("one", 1))

	got, err := reg.Get("one")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestRegisterDuplicate(t *testing.T) {
	reg := registry.New[string]()

	require.NoError(t, reg.Register("a", "x"))
	assert.Error(t, reg.Register("a", "y"))
}

func TestRegisterEmptyName(t *testing.T) {
	reg := registry.New[string]()
	assert.Error(t, reg.Register("", "x"))
}

func TestGetMissing(t *testing.T) {
	reg := registry.New[string]()

	_, err := reg.Get("absent")
	assert.Error(t, err)
}

func TestListSorted(t *testing.T) {
	reg := registry.New[int]()
	require.NoError(t, reg.Register("b", 2))
	require.NoError(t, reg.Register("a", 1))

	assert.Equal(t, []string{"a", "b"}, reg.List())
}

func TestHas(t *testing.T) {
	reg := registry.New[int]()
	require.NoError(t, reg.Register("x", 1))

	assert.True(t, reg.Has("x"))
	assert.False(t, reg.Has("y"))
}

func TestMustRegisterPanics(t *testing.T) {
	reg := registry.New[int]()
	registry.MustRegister(reg, "x", 1)

	assert.Panics(t, func() {
		registry.MustRegister(reg, "x", 2)
	})
}
