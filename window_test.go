package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowState_Accessors(t *testing.T) {
	s := &WindowState{WindowWidth: 1600, WindowHeight: 800, windowTitle: "Corridor"}
	assert.Equal(t, "Corridor", s.Title())
	assert.Equal(t, float32(2), s.AspectRatio())

	s.WindowHeight = 0
	assert.Equal(t, float32(1), s.AspectRatio())

	// no native window: nothing to destroy
	s.Destroy()
	assert.Nil(t, s.Glfw())
}
