package cpu

import "github.com/dmgcore/coregb/bus"

// Step does one of three things: if an enabled interrupt is pending
// and IME is set, it dispatches that interrupt (and runs no
// instruction); otherwise it spends one idle m-cycle while halted, or
// runs one instruction. It returns the m-cycles spent. Once a Fault
// has been recorded, Step is a no-op returning 0: illegal opcodes and
// STOP are treated as unrecoverable.
func (c *CPU) Step(sys *bus.System) int {
	if c.Fault != nil {
		return 0
	}

	before := sys.PendingCycles()
	enableIME := c.imePending

	pending := sys.Interrupts.Peek()
	if pending && c.halted {
		c.halted = false
	}

	switch {
	case pending && c.ime:
		c.dispatchInterrupt(sys)
	case c.halted:
		sys.Tick(1)
	default:
		c.execInstruction(sys)
	}

	// EI takes effect one instruction late: the instruction after EI has
	// just run with IME still off, so dispatch can only divert the one
	// after that. A DI in between cancels the pending enable.
	if enableIME && c.imePending {
		c.ime = true
		c.imePending = false
	}

	return sys.PendingCycles() - before
}

// dispatchInterrupt spends 2 idle m-cycles, pushes PC (2 m-cycles),
// clears IME, pops the highest-priority pending source, and jumps to
// its vector (1 more m-cycle) — 5 m-cycles total, matching the
// documented worked example exactly. Called with nothing pending, it
// records a Fault instead.
func (c *CPU) dispatchInterrupt(sys *bus.System) {
	if !sys.Interrupts.Peek() {
		c.Fault = &faultError{msg: "interrupt dispatch with nothing pending"}
		return
	}
	sys.Tick(2)
	c.pushWord(sys, c.pc)
	c.ime = false
	source := sys.Interrupts.Pop()
	c.pc = source.Vector()
	sys.Tick(1)
}

func (c *CPU) pushWord(sys *bus.System, value uint16) {
	c.sp--
	sys.WriteCycle(c.sp, uint8(value>>8))
	c.sp--
	sys.WriteCycle(c.sp, uint8(value))
}

func (c *CPU) popWord(sys *bus.System) uint16 {
	low := sys.ReadCycle(c.sp)
	c.sp++
	high := sys.ReadCycle(c.sp)
	c.sp++
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) fetch8(sys *bus.System) uint8 {
	v := sys.ReadCycle(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16(sys *bus.System) uint16 {
	low := c.fetch8(sys)
	high := c.fetch8(sys)
	return uint16(high)<<8 | uint16(low)
}
