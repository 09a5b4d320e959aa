// internal/di/container_test.go
package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerRegisterAndGet(t *testing.T) {
	c := NewContainer()

	type svc struct{ name string }
	c.Register("llm", &svc{name: "llm"})

	got, ok := c.Get("llm").(*svc)
	assert.True(t, ok)
	assert.Equal(t, "llm", got.name)
}

func TestContainerMissingService(t *testing.T) {
	c := NewContainer()
	assert.Nil(t, c.Get("absent"))
	assert.False(t, c.Has("absent"))
}

func TestContainerOverwrite(t *testing.T) {
	c := NewContainer()
	c.Register("k", 1)
	c.Register("k", 2)
	assert.Equal(t, 2, c.Get("k"))
}

func TestContainerGetNames(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	c.Register("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, c.GetNames())
}
