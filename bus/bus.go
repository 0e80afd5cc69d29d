// Package bus implements the memory-mapped address space tying the
// CPU to cartridge ROM, work RAM, the PPU, the timer, the interrupt
// queue, and the joypad. It is the single aggregate the cyclic
// CPU<->PPU/timer/interrupt reference resolves through: everything is
// reached by mutable reference from here, nothing holds a back-pointer.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/dmgcore/coregb/addr"
	"github.com/dmgcore/coregb/interrupt"
	"github.com/dmgcore/coregb/joypad"
	"github.com/dmgcore/coregb/timer"
	"github.com/dmgcore/coregb/video"
)

const bootROMSize = 0x100

// System is the memory-mapped bus plus every component it owns. The
// CPU is handed a *System and never keeps its own references to PPU,
// timer, or interrupts.
type System struct {
	bootROM       [bootROMSize]byte
	bootROMLoaded bool
	bootROMMapped bool

	cart *Cartridge
	wram [0x2000]byte
	hram [0x7F]byte

	PPU        *video.PPU
	Timer      *timer.Timer
	Interrupts *interrupt.Queue
	Joypad     *joypad.Joypad
	serial     *serialSink
	dmaReg     uint8

	pendingCycles int
}

// NewSystem builds an empty System: no boot ROM, no cartridge,
// everything zeroed, matching a Game Boy with nothing plugged in yet.
func NewSystem() *System {
	s := &System{
		PPU:        video.NewPPU(),
		Timer:      &timer.Timer{},
		Interrupts: &interrupt.Queue{},
		Joypad:     joypad.New(),
		serial:     newSerialSink(),
	}
	s.PPU.RequestVBlank = func() { s.Interrupts.Request(addr.VBlank) }
	s.PPU.RequestLCD = func() { s.Interrupts.Request(addr.LCD) }
	s.Timer.RequestInterrupt = func() { s.Interrupts.Request(addr.Timer) }
	s.Joypad.RequestInterrupt = func() { s.Interrupts.Request(addr.Joypad) }
	return s
}

// LoadBootROM reads up to 256 bytes into the boot ROM overlay and
// remaps it in at 0x0000-0x00FF.
func (s *System) LoadBootROM(data []byte) int {
	n := copy(s.bootROM[:], data)
	s.bootROMLoaded = true
	s.bootROMMapped = true
	return n
}

// LoadROM reads up to 32 KiB into cartridge ROM.
func (s *System) LoadROM(data []byte) int {
	truncated := len(data) > 0x8000
	if truncated {
		data = data[:0x8000]
	}
	s.cart = NewCartridge(data)
	if truncated || s.cart.CartType != 0x00 || s.cart.ROMSize != 0x00 {
		slog.Warn("cartridge header describes more than a plain 32 KiB ROM; only the first 32 KiB are mapped",
			"cart_type", fmt.Sprintf("0x%02X", s.cart.CartType), "rom_size", fmt.Sprintf("0x%02X", s.cart.ROMSize))
	}
	return len(data)
}

// Tick schedules mCycles worth of PPU/timer advancement, drained on
// the next CatchUp.
func (s *System) Tick(mCycles int) {
	s.pendingCycles += mCycles
}

// PendingCycles returns the m-cycles accumulated since the last
// CatchUp. The cpu package uses the delta across a Step call to report
// how many m-cycles that step spent.
func (s *System) PendingCycles() int {
	return s.pendingCycles
}

// CatchUp drains accumulated m-cycles into the PPU and timer, which
// may raise interrupts observed by the next step's dispatch check.
// Returns the number of cycles drained.
func (s *System) CatchUp() int {
	cycles := s.pendingCycles
	s.pendingCycles = 0
	if cycles == 0 {
		return 0
	}
	s.PPU.Step(cycles)
	s.Timer.Tick(cycles)
	return cycles
}

// ReadCycle reads a byte and spends one m-cycle, the unit every CPU
// memory access counts as.
func (s *System) ReadCycle(address uint16) uint8 {
	v := s.Read(address)
	s.Tick(1)
	return v
}

// WriteCycle writes a byte and spends one m-cycle.
func (s *System) WriteCycle(address uint16, value uint8) {
	s.Write(address, value)
	s.Tick(1)
}

// CartridgeTitle returns the loaded cartridge's header title, or "" if
// no cartridge is loaded.
func (s *System) CartridgeTitle() string {
	if s.cart == nil {
		return ""
	}
	return s.cart.Title
}

// Framebuffer returns the current RGB24 frame, borrowed read-only.
func (s *System) Framebuffer() []byte {
	return s.PPU.Framebuffer()
}

// JoypadPress/JoypadRelease forward to the joypad component.
func (s *System) JoypadPress(b joypad.Button)   { s.Joypad.Press(b) }
func (s *System) JoypadRelease(b joypad.Button) { s.Joypad.Release(b) }

// Read performs a direct, non-cycle-counted memory access. Used for
// DMA's instantaneous copy and by ReadCycle.
func (s *System) Read(address uint16) uint8 {
	switch {
	case address <= addr.BootROMEnd && s.bootROMMapped:
		return s.bootROM[address]
	case address <= addr.CartROMEnd:
		if s.cart == nil {
			return 0xFF
		}
		return s.cart.ReadByte(address)
	case address <= addr.VRAMEnd:
		return s.PPU.ReadVRAM(address - addr.VRAMStart)
	case address <= addr.CartRAMEnd: // 0xA000-0xBFFF, no RAM backing
		return 0xFF
	case address <= addr.WRAMEnd:
		return s.wram[address-addr.WRAMStart]
	case address <= addr.EchoEnd:
		return s.wram[address-addr.EchoStart]
	case address <= addr.OAMEnd:
		return s.PPU.ReadOAM(address - addr.OAMStart)
	case address <= addr.UnusedEnd:
		return 0xFF
	case address <= addr.IOEnd:
		return s.readIO(address)
	case address <= addr.HRAMEnd:
		return s.hram[address-addr.HRAMStart]
	case address == addr.IE:
		return s.Interrupts.IE()
	}
	return 0xFF
}

// Write performs a direct, non-cycle-counted memory write.
func (s *System) Write(address uint16, value uint8) {
	switch {
	case address <= addr.CartROMEnd:
		slog.Debug("write to cartridge ROM ignored", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case address <= addr.VRAMEnd:
		s.PPU.WriteVRAM(address-addr.VRAMStart, value)
	case address <= addr.CartRAMEnd:
		// no RAM backing, write dropped
	case address <= addr.WRAMEnd:
		s.wram[address-addr.WRAMStart] = value
	case address <= addr.EchoEnd:
		s.wram[address-addr.EchoStart] = value
	case address <= addr.OAMEnd:
		s.PPU.WriteOAM(address-addr.OAMStart, value)
	case address <= addr.UnusedEnd:
		// unusable region, write ignored
	case address <= addr.IOEnd:
		s.writeIO(address, value)
	case address <= addr.HRAMEnd:
		s.hram[address-addr.HRAMStart] = value
	case address == addr.IE:
		s.Interrupts.SetIE(value)
	}
}

func (s *System) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return s.Joypad.Read()
	case address == addr.SB || address == addr.SC:
		return s.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return s.Timer.Read(address)
	case address == addr.IF:
		return s.Interrupts.IF()
	case address == addr.DMA:
		return s.dmaReg
	case address >= addr.LCDC && address <= addr.WX:
		return s.PPU.ReadRegister(address)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return 0xFF
	case address == addr.BootROMUnmap:
		if s.bootROMMapped {
			return 0
		}
		return 1
	default:
		slog.Debug("read from unmapped I/O register", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

func (s *System) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		s.Joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		s.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		s.Timer.Write(address, value)
	case address == addr.IF:
		s.Interrupts.SetIF(value)
	case address == addr.DMA:
		s.dmaReg = value
		s.doDMA(value)
	case address >= addr.LCDC && address <= addr.WX:
		s.PPU.WriteRegister(address, value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		// inert: no channel synthesis is modeled
	case address == addr.BootROMUnmap:
		if value != 0 {
			s.bootROMMapped = false
		}
	default:
		slog.Debug("write to unmapped I/O register", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	}
}

// doDMA copies 160 bytes from (value<<8)..+0xA0 into OAM. Permitted to
// be instantaneous; CPU access restrictions during the transfer are
// not modeled.
func (s *System) doDMA(value uint8) {
	src := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		s.PPU.DMAWriteOAM(i, s.Read(src+i))
	}
}
