package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoDescriptor(name, command string) Descriptor {
	return Descriptor{
		Name:        name,
		Command:     command,
		Description: name + " assistant",
		HandleMessage: func(ctx context.Context, text string, tc TurnContext) (string, error) {
			return command + ": " + text, nil
		},
	}
}

func TestRegistryOrderPreserved(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(echoDescriptor("Health", "health"))
	r.Register(echoDescriptor("Ops", "ops"))

	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, "health", all[0].Command)
	assert.Equal(t, "ops", all[1].Command)
}

func TestRegistryOverwriteKeepsPosition(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(echoDescriptor("Health", "health"))
	r.Register(echoDescriptor("Ops", "ops"))
	r.Register(echoDescriptor("Health v2", "health"))

	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, "health", all[0].Command)
	assert.Equal(t, "Health v2", all[0].Name)

	got, ok := r.Get("health")
	require.True(t, ok)
	assert.Equal(t, "Health v2", got.Name)
}

func TestRegistryGetIsCaseSensitive(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(echoDescriptor("Health", "health"))

	_, ok := r.Get("Health")
	assert.False(t, ok)
	_, ok = r.Get("health")
	assert.True(t, ok)
}

func TestRegistryPanicsOnInvalidDescriptor(t *testing.T) {
	r := NewRegistry(nil)
	assert.Panics(t, func() { r.Register(Descriptor{Name: "x"}) })
	assert.Panics(t, func() {
		r.Register(Descriptor{Name: "x", Command: "x"})
	})
}
