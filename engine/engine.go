// Package engine wires the CPU, bus, PPU, timer, interrupt queue, and
// joypad into a single aggregate and exposes the boundary operations an
// embedder drives: loading ROM images, stepping the system, draining
// elapsed m-cycles, feeding joypad input, and reading the framebuffer.
package engine

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmgcore/coregb/bus"
	"github.com/dmgcore/coregb/cpu"
	"github.com/dmgcore/coregb/joypad"
)

// mCyclesPerFrame is one full frame's worth of PPU advancement: 154
// scanlines at 114 m-cycles each.
const mCyclesPerFrame = 114 * 154

// Fault wraps an unrecoverable CPU-level error (illegal opcode, STOP,
// interrupt dispatch with nothing pending) with the diagnostic context an embedder wants
// to print: the opcode that triggered it and the program counter it
// was fetched from.
type Fault struct {
	Opcode uint8
	PC     uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("engine fault at pc=0x%04X opcode=0x%02X: %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Engine is the root struct embedders construct and drive.
type Engine struct {
	cpu    *cpu.CPU
	system *bus.System
}

// New returns an Engine with no boot ROM or cartridge loaded: every
// component is in its documented zero/reset state.
func New() *Engine {
	return &Engine{
		cpu:    cpu.New(),
		system: bus.NewSystem(),
	}
}

// NewWithFiles builds an Engine and loads a boot ROM and cartridge ROM
// from disk, the convenience constructor a CLI embedder wants.
func NewWithFiles(bootROMPath, cartROMPath string) (*Engine, error) {
	e := New()

	bootData, err := os.ReadFile(bootROMPath)
	if err != nil {
		return nil, fmt.Errorf("reading boot ROM: %w", err)
	}
	if _, err := e.LoadBootROM(bytes.NewReader(bootData)); err != nil {
		return nil, err
	}

	cartData, err := os.ReadFile(cartROMPath)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge ROM: %w", err)
	}
	if _, err := e.LoadROM(bytes.NewReader(cartData)); err != nil {
		return nil, err
	}

	slog.Debug("loaded ROMs", "boot_rom_bytes", len(bootData), "cart_rom_bytes", len(cartData), "cart_title", e.system.CartridgeTitle())
	return e, nil
}

// LoadBootROM reads up to 256 bytes into the boot ROM overlay.
func (e *Engine) LoadBootROM(r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, 256))
	if err != nil {
		return 0, err
	}
	return e.system.LoadBootROM(data), nil
}

// LoadROM reads up to 32 KiB into cartridge ROM.
func (e *Engine) LoadROM(r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, 0x8000))
	if err != nil {
		return 0, err
	}
	return e.system.LoadROM(data), nil
}

// Step runs exactly one CPU step (one instruction, one idle halted
// m-cycle, or one interrupt dispatch), catches up the PPU and timer by
// however many m-cycles it spent, and returns that count. Once the CPU
// has faulted, Step returns the wrapped Fault on every subsequent call.
func (e *Engine) Step() (int, error) {
	if e.cpu.Fault != nil {
		return 0, e.wrapFault()
	}

	spent := e.cpu.Step(e.system)
	e.system.CatchUp()

	if e.cpu.Fault != nil {
		return spent, e.wrapFault()
	}
	return spent, nil
}

func (e *Engine) wrapFault() error {
	return &Fault{Opcode: e.cpu.Opcode(), PC: e.cpu.PC(), Err: e.cpu.Fault}
}

// RunUntilFrame steps the engine until at least one full frame's worth
// of m-cycles (17,556) has elapsed, the reference embedding loop a host
// drives per frame. Returns early with the fault if the CPU faults
// mid-frame.
func (e *Engine) RunUntilFrame() error {
	total := 0
	for total < mCyclesPerFrame {
		spent, err := e.Step()
		total += spent
		if err != nil {
			return err
		}
	}
	return nil
}

// CatchUp drains any m-cycles not yet applied to the PPU and timer and
// returns the count. Step already catches up after every instruction,
// so this only matters to embedders driving the bus directly.
func (e *Engine) CatchUp() int {
	return e.system.CatchUp()
}

// JoypadPress and JoypadRelease forward a button transition to the
// joypad component, which may raise the Joypad interrupt.
func (e *Engine) JoypadPress(b joypad.Button)   { e.system.JoypadPress(b) }
func (e *Engine) JoypadRelease(b joypad.Button) { e.system.JoypadRelease(b) }

// Framebuffer returns the current RGB24 frame, borrowed read-only.
func (e *Engine) Framebuffer() []byte {
	return e.system.Framebuffer()
}

// PC exposes the CPU program counter for diagnostics and the
// boot-ROM-handoff test scenario.
func (e *Engine) PC() uint16 { return e.cpu.PC() }
