package cpu

import (
	"testing"

	"github.com/dmgcore/coregb/addr"
	"github.com/dmgcore/coregb/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdcBoundaryCarry(t *testing.T) {
	c := New()
	c.a = 0xFF
	c.setFlag(flagC)
	c.adcToA(0x00)
	assert.Equal(t, uint8(0x00), c.a)
	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagC))
	assert.True(t, c.flag(flagH))
}

func TestSubSelfYieldsZero(t *testing.T) {
	c := New()
	c.a = 0x42
	c.subFromA(c.a)
	assert.Equal(t, uint8(0), c.a)
	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagN))
	assert.False(t, c.flag(flagH))
	assert.False(t, c.flag(flagC))
}

func TestDAAAfterBCDAdd(t *testing.T) {
	c := New()
	c.a = 0x09
	c.addToA(0x08) // 0x11, H set
	c.daa()
	assert.Equal(t, uint8(0x17), c.a, "9 + 8 = 17 in BCD")
}

func TestIncHLWrapsAndSetsHalfCarry(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	c.setHL(0xC100)
	sys.Write(0xC100, 0xFF)

	sys.Write(0xC000, 0x34) // INC (HL), placed in writable WRAM
	c.pc = 0xC000
	c.execInstruction(sys)

	assert.Equal(t, uint8(0x00), sys.Read(0xC100))
	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagH))
}

func TestRLCAOnZero(t *testing.T) {
	c := New()
	c.a = 0
	c.a = c.rlc(c.a, true)
	assert.Equal(t, uint8(0), c.a)
	assert.False(t, c.flag(flagZ), "RLCA always clears Z even on a zero result")
	assert.False(t, c.flag(flagC))
}

func TestRegisterPairRoundTrip(t *testing.T) {
	c := New()
	c.setBC(0x1234)
	assert.Equal(t, uint8(0x12), c.b)
	assert.Equal(t, uint8(0x34), c.c)
	assert.Equal(t, uint16(0x1234), c.bc())
}

func TestAFLowNibbleAlwaysZero(t *testing.T) {
	c := New()
	c.setAF(0xABCD)
	assert.Equal(t, uint8(0xC0), c.f, "low nibble of F must read back zero")
	assert.Equal(t, uint16(0xABC0), c.af())
}

func TestInterruptDispatchTiming(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	c.ime = true
	sys.Interrupts.SetIE(0x01)
	sys.Interrupts.SetIF(0x01)
	c.pc = 0x1234
	c.sp = 0xFFFE

	cycles := c.Step(sys)

	require.Equal(t, 5, cycles)
	assert.Equal(t, uint16(0xFFFC), c.sp)
	assert.Equal(t, uint8(0x34), sys.Read(0xFFFC))
	assert.Equal(t, uint8(0x12), sys.Read(0xFFFD))
	assert.Equal(t, uint16(addr.VBlank.Vector()), c.pc)
	assert.False(t, c.ime)
	assert.Equal(t, uint8(0), sys.Interrupts.IF())
}

func TestHaltUnhaltsOnPendingInterrupt(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	c.halted = true
	c.ime = false
	sys.Interrupts.SetIE(0x01)

	cycles := c.Step(sys)
	assert.Equal(t, 1, cycles, "halt-idle step with IME off just spends one cycle")
	assert.True(t, c.halted, "still halted: nothing requested yet")

	sys.Interrupts.SetIF(0x01)
	c.Step(sys)
	assert.False(t, c.halted)
}

func TestEIEnablesInterruptsOneInstructionLate(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	sys.Interrupts.SetIE(0x01)
	sys.Interrupts.SetIF(0x01)
	sys.Write(0xC000, 0xFB) // EI
	sys.Write(0xC001, 0x00) // NOP
	c.pc = 0xC000
	c.sp = 0xFFFE

	c.Step(sys)
	assert.False(t, c.ime, "IME still off right after EI")

	c.Step(sys)
	assert.Equal(t, uint16(0xC002), c.pc, "the instruction after EI runs before any dispatch")
	assert.True(t, c.ime)

	c.Step(sys)
	assert.Equal(t, addr.VBlank.Vector(), c.pc, "dispatch diverts the second step after EI")
}

func TestDICancelsPendingEI(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	sys.Write(0xC000, 0xFB) // EI
	sys.Write(0xC001, 0xF3) // DI
	c.pc = 0xC000

	c.Step(sys)
	c.Step(sys)
	assert.False(t, c.ime, "DI in EI's shadow leaves IME off")
	assert.False(t, c.imePending)
}

func TestIllegalOpcodeFaultsAndLatches(t *testing.T) {
	sys := bus.NewSystem()
	c := New()
	sys.Write(0xC000, 0xD3) // illegal
	c.pc = 0xC000

	c.Step(sys)
	require.Error(t, c.Fault)

	before := c.pc
	cycles := c.Step(sys)
	assert.Equal(t, 0, cycles)
	assert.Equal(t, before, c.pc, "Step is a no-op once faulted")
}
