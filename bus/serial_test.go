package bus

import (
	"testing"

	"github.com/dmgcore/coregb/addr"
	"github.com/stretchr/testify/assert"
)

func TestSerialTransferCompletesImmediately(t *testing.T) {
	s := NewSystem()
	s.Write(addr.SB, 'P')
	s.Write(addr.SC, 0x81) // start transfer, internal clock

	assert.Equal(t, uint8(0xFF), s.Read(addr.SB), "SB reads back all ones once the byte has been shifted out")
	assert.Equal(t, uint8(0x01), s.Read(addr.SC), "the transfer-in-progress bit clears when the loopback completes")
}

func TestSerialAccumulatesLineUntilNewline(t *testing.T) {
	s := NewSystem()
	for _, b := range []byte("Passed") {
		s.Write(addr.SB, b)
		s.Write(addr.SC, 0x81)
	}
	assert.Equal(t, []byte("Passed"), s.serial.line)

	s.Write(addr.SB, '\n')
	s.Write(addr.SC, 0x81)
	assert.Empty(t, s.serial.line, "a newline flushes the accumulated line to the log")
}

func TestSerialWriteWithoutStartBitIsInert(t *testing.T) {
	s := NewSystem()
	s.Write(addr.SB, 'x')
	s.Write(addr.SC, 0x01) // clock select only, bit 7 clear

	assert.Equal(t, uint8('x'), s.Read(addr.SB), "SB holds its value until a transfer starts")
	assert.Empty(t, s.serial.line)
}
