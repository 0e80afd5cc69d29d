// Package timer implements the DMG free-running divider and
// programmable TIMA counter, tracked as m-cycle accumulators against
// each signal's fixed period.
package timer

import "github.com/dmgcore/coregb/addr"

// periods, in m-cycles, for each of the 4 TAC frequency selectors.
var periods = [4]int{256, 4, 16, 64}

// Timer holds DIV/TIMA/TMA/TAC state and requests the Timer interrupt
// through the callback wired in at construction.
type Timer struct {
	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	divAccum  int // m-cycles accumulated toward the next DIV increment
	timaAccum int // m-cycles accumulated toward the next TIMA increment

	// RequestInterrupt is called whenever TIMA overflows and reloads
	// from TMA. Wired by the bus to the interrupt queue.
	RequestInterrupt func()
}

// divPeriod is the fixed m-cycle prescaler DIV increments at,
// independent of TAC: 64 m-cycles per DIV tick (16384 Hz at an m-cycle
// rate of 4.194304 MHz / 4).
const divPeriod = 64

// Tick advances DIV and, if enabled, TIMA by the given number of
// m-cycles. Multiple TIMA overflows within a single call are each
// processed in turn.
func (t *Timer) Tick(mCycles int) {
	t.divAccum += mCycles
	for t.divAccum >= divPeriod {
		t.divAccum -= divPeriod
		t.div++
	}

	if t.tac&0x04 == 0 {
		return
	}

	period := periods[t.tac&0x03]
	t.timaAccum += mCycles
	for t.timaAccum >= period {
		t.timaAccum -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			if t.RequestInterrupt != nil {
				t.RequestInterrupt()
			}
		}
	}
}

// Read implements the DIV/TIMA/TMA/TAC register reads.
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

// Write implements the DIV/TIMA/TMA/TAC register writes. Any write to
// DIV resets the divider (and its sub-tick accumulator) to zero.
func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.div = 0
		t.divAccum = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
