package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput_Press(t *testing.T) {
	var input Input

	input.press(KeyW, true)
	assert.True(t, input.Pressed[KeyW])
	assert.True(t, input.JustPressed[KeyW])

	input.press(KeyW, true)
	assert.True(t, input.Pressed[KeyW])
	assert.False(t, input.JustPressed[KeyW])

	input.press(KeyW, false)
	assert.False(t, input.Pressed[KeyW])
	assert.True(t, input.JustReleased[KeyW])
}

func TestInput_MoveCursor(t *testing.T) {
	var input Input
	input.moveCursor(10, 10)
	input.moveCursor(15, 20)
	assert.Zero(t, input.MouseDeltaX, "no delta while released")

	input.MouseCaptured = true
	input.moveCursor(18, 16)
	assert.Equal(t, 3.0, input.MouseDeltaX)
	assert.Equal(t, -4.0, input.MouseDeltaY)
}

func TestEscapeSystem_Quits(t *testing.T) {
	app := NewAppBuilder().Build()
	input := &Input{}
	input.press(KeyEscape, true)

	escapeSystem(input, app.Commands())
	assert.True(t, app.Step())
}
