package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptVectors(t *testing.T) {
	tests := []struct {
		source Interrupt
		vector uint16
	}{
		{VBlank, 0x40},
		{LCD, 0x48},
		{Timer, 0x50},
		{Joypad, 0x60},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.vector, tt.source.Vector())
	}
}

func TestInterruptBitsMatchIFLayout(t *testing.T) {
	// Bit 3 is reserved on hardware; Joypad lives at bit 4.
	assert.Equal(t, uint8(0), VBlank.Bit())
	assert.Equal(t, uint8(1), LCD.Bit())
	assert.Equal(t, uint8(2), Timer.Bit())
	assert.Equal(t, uint8(4), Joypad.Bit())
}
