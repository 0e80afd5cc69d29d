// Package video implements the PPU scanline state machine (OAM scan,
// pixel transfer, HBlank, VBlank) and the background/window/sprite
// scanline renderer that writes into an RGB24 framebuffer.
package video

import "github.com/dmgcore/coregb/addr"

// Mode identifies one of the four PPU states.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMScan
	PixelTransfer
)

// Mode durations in m-cycles, per scanline.
const (
	oamScanDuration       = 20
	pixelTransferDuration = 43
	hblankDuration        = 51
	lineDuration          = oamScanDuration + pixelTransferDuration + hblankDuration // 114
	lastVisibleLine       = 143
	lastLine              = 153
)

const (
	vramSize = 0x2000
	oamSize  = 0xA0
)

// LCDC bit positions.
const (
	lcdcBGOn         = 1 << 0
	lcdcObjOn        = 1 << 1
	lcdcObjSize      = 1 << 2
	lcdcBGMapSelect  = 1 << 3
	lcdcTileAddrMode = 1 << 4
	lcdcWindowOn     = 1 << 5
	lcdcWindowMap    = 1 << 6
	lcdcEnable       = 1 << 7
)

// STAT bit positions.
const (
	statLYCEnable    = 1 << 6
	statMode2Enable  = 1 << 5
	statMode1Enable  = 1 << 4
	statMode0Enable  = 1 << 3
	statLYCEqualFlag = 1 << 2
)

// PPU owns VRAM, OAM, the LCD control/status registers, and the
// framebuffer. Stepping it by m-cycles advances the scanline state
// machine and renders into the framebuffer at the end of each line.
type PPU struct {
	vram [vramSize]byte
	oam  [oamSize]byte

	fb FrameBuffer

	mode   Mode
	cycles int

	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	// windowLine is the window's own internal row counter: it advances
	// only on scanlines where the window actually draws, so toggling
	// LCDC.5 off and back on mid-frame resumes the window partway
	// through its tile map instead of re-syncing to ly-wy.
	windowLine uint8

	RequestVBlank func()
	RequestLCD    func()
}

// NewPPU returns a PPU with the LCD on and registers at their post-boot
// defaults.
func NewPPU() *PPU {
	p := &PPU{
		lcdc: lcdcEnable | lcdcBGOn,
		mode: OAMScan,
		bgp:  0xFC,
	}
	return p
}

// Framebuffer returns the RGB24 pixel data last rendered.
func (p *PPU) Framebuffer() []byte {
	return p.fb.Bytes()
}

func (p *PPU) lcdOn() bool {
	return p.lcdc&lcdcEnable != 0
}

// Step advances the PPU by the given number of m-cycles.
func (p *PPU) Step(mCycles int) {
	if !p.lcdOn() {
		p.ly = 0
		p.cycles = 0
		p.mode = HBlank
		p.windowLine = 0
		p.fb.Blank()
		return
	}

	p.cycles += mCycles

	for {
		advanced := p.stepMode()
		if !advanced {
			break
		}
	}
}

// stepMode checks whether the current mode has run its course and, if
// so, performs the transition. Returns true if a transition happened
// (so the caller should re-check, since multiple lines can elapse in
// one Step call).
func (p *PPU) stepMode() bool {
	switch p.mode {
	case OAMScan:
		if p.cycles < oamScanDuration {
			return false
		}
		p.cycles -= oamScanDuration
		p.mode = PixelTransfer
		if p.stat&statMode2Enable != 0 && p.RequestLCD != nil {
			p.RequestLCD()
		}
		return true

	case PixelTransfer:
		if p.cycles < pixelTransferDuration {
			return false
		}
		p.cycles -= pixelTransferDuration
		p.renderScanline()
		p.mode = HBlank
		if p.stat&statMode0Enable != 0 && p.RequestLCD != nil {
			p.RequestLCD()
		}
		return true

	case HBlank:
		if p.cycles < hblankDuration {
			return false
		}
		p.cycles -= hblankDuration
		p.ly++
		p.checkLYC()
		if p.ly > lastVisibleLine {
			p.mode = VBlank
			if p.RequestVBlank != nil {
				p.RequestVBlank()
			}
			if p.stat&statMode1Enable != 0 && p.RequestLCD != nil {
				p.RequestLCD()
			}
		} else {
			p.mode = OAMScan
		}
		return true

	case VBlank:
		if p.cycles < lineDuration {
			return false
		}
		p.cycles -= lineDuration
		p.ly++
		if p.ly > lastLine {
			p.ly = 0
			p.windowLine = 0
			p.mode = OAMScan
		}
		p.checkLYC()
		return true
	}
	return false
}

func (p *PPU) checkLYC() {
	if p.ly == p.lyc {
		p.stat |= statLYCEqualFlag
		if p.stat&statLYCEnable != 0 && p.RequestLCD != nil {
			p.RequestLCD()
		}
	} else {
		p.stat &^= statLYCEqualFlag
	}
}

// vramAccessible reports whether the CPU may currently read/write VRAM.
func (p *PPU) vramAccessible() bool {
	return !p.lcdOn() || p.mode != PixelTransfer
}

// oamAccessible reports whether the CPU may currently read/write OAM.
func (p *PPU) oamAccessible() bool {
	return !p.lcdOn() || (p.mode != OAMScan && p.mode != PixelTransfer)
}

// ReadVRAM returns 0xFF during pixel-transfer, when the PPU itself is
// reading VRAM every cycle; otherwise returns the stored byte.
func (p *PPU) ReadVRAM(offset uint16) uint8 {
	if !p.vramAccessible() {
		return 0xFF
	}
	return p.vram[offset]
}

// WriteVRAM drops the write during pixel-transfer.
func (p *PPU) WriteVRAM(offset uint16, value uint8) {
	if !p.vramAccessible() {
		return
	}
	p.vram[offset] = value
}

// ReadOAM returns 0xFF during OAM-scan and pixel-transfer.
func (p *PPU) ReadOAM(offset uint16) uint8 {
	if !p.oamAccessible() {
		return 0xFF
	}
	return p.oam[offset]
}

// WriteOAM drops the write during OAM-scan and pixel-transfer.
func (p *PPU) WriteOAM(offset uint16, value uint8) {
	if !p.oamAccessible() {
		return
	}
	p.oam[offset] = value
}

// DMAWriteOAM bypasses the mode-based access restriction; the bus uses
// this for the DMA transfer, which is treated as instantaneous
// regardless of PPU mode.
func (p *PPU) DMAWriteOAM(offset uint16, value uint8) {
	p.oam[offset] = value
}

// ReadRegister reads one of the LCD registers by absolute bus address.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return 0x80 | p.stat | uint8(p.mode)
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	}
	return 0xFF
}

// WriteRegister writes one of the LCD registers by absolute bus address.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasOn := p.lcdOn()
		p.lcdc = value
		if wasOn && !p.lcdOn() {
			p.ly = 0
			p.cycles = 0
			p.mode = HBlank
			p.windowLine = 0
			p.fb.Blank()
		}
	case addr.STAT:
		p.stat = (p.stat & statLYCEqualFlag) | (value & 0b01111000)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		p.ly = 0
	case addr.LYC:
		p.lyc = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

