package timer

import (
	"testing"

	"github.com/dmgcore/coregb/addr"
	"github.com/stretchr/testify/assert"
)

func TestDivIncrementsAndWrapsAt256(t *testing.T) {
	var tm Timer
	tm.Tick(64 * 256)
	assert.Equal(t, uint8(0), tm.Read(addr.DIV), "DIV must wrap at 256")
}

func TestDivWriteResets(t *testing.T) {
	var tm Timer
	tm.Tick(64 * 10)
	assert.NotEqual(t, uint8(0), tm.Read(addr.DIV))
	tm.Write(addr.DIV, 0xFF) // any write resets, value is ignored
	assert.Equal(t, uint8(0), tm.Read(addr.DIV))
}

func TestTimerOverflowReloadsAndRequestsInterrupt(t *testing.T) {
	var tm Timer
	fired := 0
	tm.RequestInterrupt = func() { fired++ }

	tm.Write(addr.TAC, 0b110) // enabled, period 16 m-cycles
	tm.Write(addr.TMA, 0xFE)
	tm.Write(addr.TIMA, 0xFE)

	tm.Tick(16)
	assert.Equal(t, uint8(0xFF), tm.Read(addr.TIMA))
	assert.Equal(t, 0, fired)

	tm.Tick(16)
	assert.Equal(t, uint8(0xFE), tm.Read(addr.TIMA), "TIMA reloads from TMA on overflow")
	assert.Equal(t, 1, fired)
}

func TestTimerDisabledDoesNotCountTIMA(t *testing.T) {
	var tm Timer
	tm.Write(addr.TAC, 0b001) // period selected but not enabled
	tm.Tick(1000)
	assert.Equal(t, uint8(0), tm.Read(addr.TIMA))
}

func TestMultipleOverflowsInOneTick(t *testing.T) {
	var tm Timer
	fired := 0
	tm.RequestInterrupt = func() { fired++ }
	tm.Write(addr.TAC, 0b110) // period 16
	tm.Write(addr.TMA, 0xFE)
	tm.Write(addr.TIMA, 0xFE)

	tm.Tick(16 * 4) // two overflows: FE->FF->00(reload FE), then FE->FF->00(reload FE)
	assert.Equal(t, 2, fired)
	assert.Equal(t, uint8(0xFE), tm.Read(addr.TIMA))
}
