package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadDefaultsToAllReleased(t *testing.T) {
	j := New()
	j.Write(0x00) // select both groups
	assert.Equal(t, uint8(0x0F), j.Read()&0x0F)
}

func TestPressSelectedDpad(t *testing.T) {
	j := New()
	j.Write(0b00100000) // select dpad (bit 4 low)
	j.Press(Down)
	assert.False(t, j.Read()&(1<<3) != 0, "Down bit should be clear (pressed)")
}

func TestPressSelectedButtons(t *testing.T) {
	j := New()
	j.Write(0b00010000) // select buttons (bit 5 low)
	j.Press(A)
	assert.Equal(t, uint8(0), j.Read()&1)
}

func TestPressRequestsInterruptOnTransition(t *testing.T) {
	j := New()
	fired := 0
	j.RequestInterrupt = func() { fired++ }

	j.Press(A)
	assert.Equal(t, 1, fired)

	j.Press(A) // already pressed: no new transition
	assert.Equal(t, 1, fired)

	j.Release(A)
	j.Press(A)
	assert.Equal(t, 2, fired)
}

func TestNoSelectionReadsHigh(t *testing.T) {
	j := New()
	j.Write(0b00110000) // neither group selected
	assert.Equal(t, uint8(0x0F), j.Read()&0x0F)
}
