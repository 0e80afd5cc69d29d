// Package interrupt implements the DMG interrupt queue: per-source
// request/enable bits and priority resolution, exposed both as an
// imperative API (Request/Peek/Pop) and as the IF/IE byte registers the
// bus maps at 0xFF0F/0xFFFF.
package interrupt

import "github.com/dmgcore/coregb/addr"

// sources in priority order, highest first: VBlank > LCD > Timer > Joypad.
var sources = [4]addr.Interrupt{addr.VBlank, addr.LCD, addr.Timer, addr.Joypad}

// Queue tracks the requested/enabled bit for each of the four interrupt
// sources, packed the same way the hardware IF/IE registers are: bit 0
// VBlank, bit 1 LCD, bit 2 Timer, bit 4 Joypad. Bit 3 is unused and
// always reads back as 0.
type Queue struct {
	requested uint8
	enabled   uint8
}

// Request sets the requested bit for the given source.
func (q *Queue) Request(source addr.Interrupt) {
	q.requested |= 1 << source.Bit()
}

// Peek reports whether any enabled source is currently requested,
// without consuming it.
func (q *Queue) Peek() bool {
	return q.pending() != 0
}

// Pop clears and returns the highest-priority enabled+requested source.
// Pop must only be called when Peek reports true.
func (q *Queue) Pop() addr.Interrupt {
	pending := q.pending()
	for _, s := range sources {
		mask := uint8(1) << s.Bit()
		if pending&mask != 0 {
			q.requested &^= mask
			return s
		}
	}
	// Unreachable if callers check Peek first; VBlank is the safest default.
	return addr.VBlank
}

func (q *Queue) pending() uint8 {
	return q.requested & q.enabled & 0x17 // bits 0,1,2,4 only; bit 3 reserved
}

// IF returns the interrupt-flag register byte. Bit 3 (reserved) and the
// unused upper bits always read back as 0.
func (q *Queue) IF() uint8 {
	return q.requested & 0x17
}

// SetIF writes the interrupt-flag register, masking off the reserved
// and unused bits.
func (q *Queue) SetIF(value uint8) {
	q.requested = value & 0x17
}

// IE returns the interrupt-enable register byte.
func (q *Queue) IE() uint8 {
	return q.enabled
}

// SetIE writes the interrupt-enable register.
func (q *Queue) SetIE(value uint8) {
	q.enabled = value
}
