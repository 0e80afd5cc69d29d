package cpu

import "github.com/dmgcore/coregb/bus"

// execInstruction fetches and executes one primary opcode. The
// hardware-regular LD r,r' and ALU A,r8 ranges are decoded directly
// from the opcode's bit fields, collapsing 128 mechanically regular
// cases into two decoders; everything else is handled by an explicit
// case.
func (c *CPU) execInstruction(sys *bus.System) {
	op := c.fetch8(sys)
	c.opcode = op

	switch {
	case op == 0xCB:
		cbOp := c.fetch8(sys)
		execCB(c, sys, cbOp)
		return
	case op == 0x76:
		c.halted = true
		return
	case op >= 0x40 && op <= 0x7F:
		dst := (op >> 3) & 0x07
		src := op & 0x07
		writeReg8(c, sys, dst, readReg8(c, sys, src))
		return
	case op >= 0x80 && op <= 0xBF:
		c.execALU((op>>3)&0x07, readReg8(c, sys, op&0x07))
		return
	case op&0xCF == 0x01: // LD rp, d16
		c.setRP16(op>>4, c.fetch16(sys))
		return
	case op&0xCF == 0x03: // INC rp
		sys.Tick(1)
		c.setRP16(op>>4, c.rp16(op>>4)+1)
		return
	case op&0xCF == 0x0B: // DEC rp
		sys.Tick(1)
		c.setRP16(op>>4, c.rp16(op>>4)-1)
		return
	case op&0xCF == 0x09: // ADD HL, rp
		sys.Tick(1)
		c.addToHL(c.rp16(op >> 4))
		return
	}

	switch op {
	case 0x00: // NOP

	case 0x02:
		sys.WriteCycle(c.bc(), c.a)
	case 0x12:
		sys.WriteCycle(c.de(), c.a)
	case 0x22:
		sys.WriteCycle(c.hl(), c.a)
		c.setHL(c.hl() + 1)
	case 0x32:
		sys.WriteCycle(c.hl(), c.a)
		c.setHL(c.hl() - 1)

	case 0x0A:
		c.a = sys.ReadCycle(c.bc())
	case 0x1A:
		c.a = sys.ReadCycle(c.de())
	case 0x2A:
		c.a = sys.ReadCycle(c.hl())
		c.setHL(c.hl() + 1)
	case 0x3A:
		c.a = sys.ReadCycle(c.hl())
		c.setHL(c.hl() - 1)

	case 0x04:
		c.b = c.incByte(c.b)
	case 0x0C:
		c.c = c.incByte(c.c)
	case 0x14:
		c.d = c.incByte(c.d)
	case 0x1C:
		c.e = c.incByte(c.e)
	case 0x24:
		c.h = c.incByte(c.h)
	case 0x2C:
		c.l = c.incByte(c.l)
	case 0x3C:
		c.a = c.incByte(c.a)
	case 0x34:
		v := sys.ReadCycle(c.hl())
		sys.WriteCycle(c.hl(), c.incByte(v))

	case 0x05:
		c.b = c.decByte(c.b)
	case 0x0D:
		c.c = c.decByte(c.c)
	case 0x15:
		c.d = c.decByte(c.d)
	case 0x1D:
		c.e = c.decByte(c.e)
	case 0x25:
		c.h = c.decByte(c.h)
	case 0x2D:
		c.l = c.decByte(c.l)
	case 0x3D:
		c.a = c.decByte(c.a)
	case 0x35:
		v := sys.ReadCycle(c.hl())
		sys.WriteCycle(c.hl(), c.decByte(v))

	case 0x06:
		c.b = c.fetch8(sys)
	case 0x0E:
		c.c = c.fetch8(sys)
	case 0x16:
		c.d = c.fetch8(sys)
	case 0x1E:
		c.e = c.fetch8(sys)
	case 0x26:
		c.h = c.fetch8(sys)
	case 0x2E:
		c.l = c.fetch8(sys)
	case 0x3E:
		c.a = c.fetch8(sys)
	case 0x36:
		v := c.fetch8(sys)
		sys.WriteCycle(c.hl(), v)

	case 0x07:
		c.a = c.rlc(c.a, true)
	case 0x0F:
		c.a = c.rrc(c.a, true)
	case 0x17:
		c.a = c.rl(c.a, true)
	case 0x1F:
		c.a = c.rr(c.a, true)

	case 0x08:
		addr16 := c.fetch16(sys)
		sys.WriteCycle(addr16, uint8(c.sp))
		sys.WriteCycle(addr16+1, uint8(c.sp>>8))

	case 0x10:
		c.Fault = stopFault()
	case 0x18:
		c.jumpRelative(sys)
	case 0x20:
		c.jumpRelativeIf(sys, !c.flag(flagZ))
	case 0x28:
		c.jumpRelativeIf(sys, c.flag(flagZ))
	case 0x30:
		c.jumpRelativeIf(sys, !c.flag(flagC))
	case 0x38:
		c.jumpRelativeIf(sys, c.flag(flagC))

	case 0x27:
		c.daa()
	case 0x2F:
		c.cpl()
	case 0x37:
		c.scf()
	case 0x3F:
		c.ccf()

	case 0xC6:
		c.addToA(c.fetch8(sys))
	case 0xCE:
		c.adcToA(c.fetch8(sys))
	case 0xD6:
		c.subFromA(c.fetch8(sys))
	case 0xDE:
		c.sbcFromA(c.fetch8(sys))
	case 0xE6:
		c.andWithA(c.fetch8(sys))
	case 0xEE:
		c.xorWithA(c.fetch8(sys))
	case 0xF6:
		c.orWithA(c.fetch8(sys))
	case 0xFE:
		c.cpWithA(c.fetch8(sys))

	case 0xC0:
		c.returnIf(sys, !c.flag(flagZ))
	case 0xC8:
		c.returnIf(sys, c.flag(flagZ))
	case 0xD0:
		c.returnIf(sys, !c.flag(flagC))
	case 0xD8:
		c.returnIf(sys, c.flag(flagC))
	case 0xC9:
		sys.Tick(1)
		c.pc = c.popWord(sys)
	case 0xD9:
		sys.Tick(1)
		c.pc = c.popWord(sys)
		c.ime = true

	case 0xC2:
		c.jumpIf(sys, !c.flag(flagZ))
	case 0xCA:
		c.jumpIf(sys, c.flag(flagZ))
	case 0xD2:
		c.jumpIf(sys, !c.flag(flagC))
	case 0xDA:
		c.jumpIf(sys, c.flag(flagC))
	case 0xC3:
		target := c.fetch16(sys)
		sys.Tick(1)
		c.pc = target
	case 0xE9:
		c.pc = c.hl()

	case 0xC4:
		c.callIf(sys, !c.flag(flagZ))
	case 0xCC:
		c.callIf(sys, c.flag(flagZ))
	case 0xD4:
		c.callIf(sys, !c.flag(flagC))
	case 0xDC:
		c.callIf(sys, c.flag(flagC))
	case 0xCD:
		target := c.fetch16(sys)
		sys.Tick(1)
		c.pushWord(sys, c.pc)
		c.pc = target

	case 0xC1:
		c.setBC(c.popWord(sys))
	case 0xD1:
		c.setDE(c.popWord(sys))
	case 0xE1:
		c.setHL(c.popWord(sys))
	case 0xF1:
		c.setAF(c.popWord(sys))

	case 0xC5:
		sys.Tick(1)
		c.pushWord(sys, c.bc())
	case 0xD5:
		sys.Tick(1)
		c.pushWord(sys, c.de())
	case 0xE5:
		sys.Tick(1)
		c.pushWord(sys, c.hl())
	case 0xF5:
		sys.Tick(1)
		c.pushWord(sys, c.af())

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		sys.Tick(1)
		c.pushWord(sys, c.pc)
		c.pc = uint16(op - 0xC7)

	case 0xE0:
		addr8 := uint16(0xFF00) + uint16(c.fetch8(sys))
		sys.WriteCycle(addr8, c.a)
	case 0xF0:
		addr8 := uint16(0xFF00) + uint16(c.fetch8(sys))
		c.a = sys.ReadCycle(addr8)
	case 0xE2:
		sys.WriteCycle(uint16(0xFF00)+uint16(c.c), c.a)
	case 0xF2:
		c.a = sys.ReadCycle(uint16(0xFF00) + uint16(c.c))

	case 0xEA:
		addr16 := c.fetch16(sys)
		sys.WriteCycle(addr16, c.a)
	case 0xFA:
		addr16 := c.fetch16(sys)
		c.a = sys.ReadCycle(addr16)

	case 0xE8:
		e := int8(c.fetch8(sys))
		sys.Tick(2)
		c.sp = c.addSPSigned(e)
	case 0xF8:
		e := int8(c.fetch8(sys))
		sys.Tick(1)
		c.setHL(c.addSPSigned(e))
	case 0xF9:
		sys.Tick(1)
		c.sp = c.hl()

	case 0xF3:
		c.ime = false
		c.imePending = false
	case 0xFB:
		c.imePending = true

	default:
		c.Fault = illegalOpcodeFault(op)
	}
}

// execALU applies ALU group `group` (0=ADD,1=ADC,2=SUB,3=SBC,4=AND,
// 5=XOR,6=OR,7=CP) to the accumulator, matching the 0x80-0xBF and
// 0xC6-0xFE opcode groups' shared operation table.
func (c *CPU) execALU(group uint8, value uint8) {
	switch group {
	case 0:
		c.addToA(value)
	case 1:
		c.adcToA(value)
	case 2:
		c.subFromA(value)
	case 3:
		c.sbcFromA(value)
	case 4:
		c.andWithA(value)
	case 5:
		c.xorWithA(value)
	case 6:
		c.orWithA(value)
	case 7:
		c.cpWithA(value)
	}
}

func (c *CPU) jumpRelative(sys *bus.System) {
	e := int8(c.fetch8(sys))
	sys.Tick(1)
	c.pc = uint16(int32(c.pc) + int32(e))
}

func (c *CPU) jumpRelativeIf(sys *bus.System, cond bool) {
	e := int8(c.fetch8(sys))
	if cond {
		sys.Tick(1)
		c.pc = uint16(int32(c.pc) + int32(e))
	}
}

func (c *CPU) jumpIf(sys *bus.System, cond bool) {
	target := c.fetch16(sys)
	if cond {
		sys.Tick(1)
		c.pc = target
	}
}

func (c *CPU) callIf(sys *bus.System, cond bool) {
	target := c.fetch16(sys)
	if cond {
		sys.Tick(1)
		c.pushWord(sys, c.pc)
		c.pc = target
	}
}

func (c *CPU) returnIf(sys *bus.System, cond bool) {
	sys.Tick(1)
	if cond {
		sys.Tick(1)
		c.pc = c.popWord(sys)
	}
}
