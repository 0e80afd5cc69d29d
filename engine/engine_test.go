package engine

import (
	"bytes"
	"testing"

	"github.com/dmgcore/coregb/joypad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootROMAndROMReportBytesRead(t *testing.T) {
	e := New()

	n, err := e.LoadBootROM(bytes.NewReader(make([]byte, 100)))
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = e.LoadROM(bytes.NewReader(make([]byte, 0x4000)))
	require.NoError(t, err)
	assert.Equal(t, 0x4000, n)
}

func TestResetStateIsAllZero(t *testing.T) {
	e := New()
	assert.Equal(t, uint16(0), e.PC())
}

func TestStepAdvancesPCPastABootROMJump(t *testing.T) {
	e := New()
	// A single JP 0x0150 (0xC3 0x50 0x01) at address 0x0000, in lieu of
	// a real boot ROM image, exercises the same boot-to-cartridge
	// handoff the end-to-end scenario describes.
	e.LoadBootROM(bytes.NewReader([]byte{0xC3, 0x50, 0x01}))

	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0150), e.PC())
}

func TestIllegalOpcodeSurfacesAsEngineFault(t *testing.T) {
	e := New()
	e.LoadBootROM(bytes.NewReader([]byte{0xD3})) // illegal

	_, err := e.Step()
	require.Error(t, err)

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, uint8(0xD3), fault.Opcode)
	assert.Equal(t, uint16(0x0001), fault.PC, "PC has already advanced past the fetched opcode byte")
}

func TestStepIsANoOpAfterFault(t *testing.T) {
	e := New()
	e.LoadBootROM(bytes.NewReader([]byte{0xD3}))

	_, err := e.Step()
	require.Error(t, err)

	spent, err2 := e.Step()
	assert.Equal(t, 0, spent)
	require.Error(t, err2)
}

func TestJoypadPressIsForwarded(t *testing.T) {
	e := New()
	e.JoypadPress(joypad.A)
	e.JoypadRelease(joypad.A)
	assert.Equal(t, uint8(0x10), e.system.Interrupts.IF()&0x10, "the press reached the joypad and raised its interrupt")
}

func TestFramebufferHasExpectedSize(t *testing.T) {
	e := New()
	fb := e.Framebuffer()
	assert.Len(t, fb, 160*144*3)
}
