package cpu

import "github.com/dmgcore/coregb/bus"

// execCB dispatches a CB-prefixed opcode by decoding its bit fields
// directly, exploiting the fully regular CB-prefixed encoding: bits
// 7-6 select the operation class, the next 3 bits select a bit index
// (BIT/RES/SET) or a shift/rotate variant, and the low 3 bits always
// select the r8 operand (0=B..5=L,6=(HL),7=A).
func execCB(c *CPU, sys *bus.System, op uint8) {
	group := op >> 6
	regIndex := op & 0x07
	bitIndex := (op >> 3) & 0x07

	value := readReg8(c, sys, regIndex)

	switch group {
	case 0: // rotate/shift/swap, selected by bitIndex (0..7)
		var result uint8
		switch bitIndex {
		case 0:
			result = c.rlc(value, false)
		case 1:
			result = c.rrc(value, false)
		case 2:
			result = c.rl(value, false)
		case 3:
			result = c.rr(value, false)
		case 4:
			result = c.sla(value)
		case 5:
			result = c.sra(value)
		case 6:
			result = c.swap(value)
		case 7:
			result = c.srl(value)
		}
		writeReg8(c, sys, regIndex, result)
	case 1: // BIT b, r8
		c.bit(bitIndex, value)
	case 2: // RES b, r8
		writeReg8(c, sys, regIndex, res(bitIndex, value))
	case 3: // SET b, r8
		writeReg8(c, sys, regIndex, set(bitIndex, value))
	}
}
