// Command coregb is the out-of-core CLI surface: it loads a boot ROM
// and a cartridge ROM, drives the engine, and either renders the
// framebuffer to a terminal or runs headless for a fixed number of
// frames.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"github.com/dmgcore/coregb/engine"
	"github.com/dmgcore/coregb/joypad"
)

const (
	screenWidth  = 160
	screenHeight = 144

	// Terminal character cells are taller than wide; scale width more
	// to keep the on-screen aspect ratio close to correct.
	scaleX = 2
	scaleY = 1

	frameTime = time.Second / 60
)

// shadeChars maps a 2-bit DMG shade to a terminal glyph, darkest last.
var shadeChars = []rune{'█', '▓', '▒', '░'}

func main() {
	app := cli.NewApp()
	app.Name = "coregb"
	app.Usage = "coregb [options] <boot-rom> <cart-rom>"
	app.Description = "A DMG core emulator front-end"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "headless",
			Usage: "run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "number of frames to run in headless mode (0 = run forever)",
			Value: 60,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("coregb exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowAppHelp(c)
		return errors.New("boot-rom and cart-rom paths are required")
	}

	bootROMPath := c.Args().Get(0)
	cartROMPath := c.Args().Get(1)

	eng, err := engine.NewWithFiles(bootROMPath, cartROMPath)
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		return runHeadless(eng, c.Int("frames"))
	}
	return runTerminal(eng)
}

func runHeadless(eng *engine.Engine, maxFrames int) error {
	frame := 0
	for maxFrames == 0 || frame < maxFrames {
		if err := eng.RunUntilFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		frame++
	}
	slog.Info("headless run complete", "frames", frame)
	return nil
}

type terminalRenderer struct {
	screen  tcell.Screen
	engine  *engine.Engine
	running bool
}

func newTerminalRenderer(eng *engine.Engine) (*terminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}

	return &terminalRenderer{screen: screen, engine: eng, running: true}, nil
}

func runTerminal(eng *engine.Engine) error {
	r, err := newTerminalRenderer(eng)
	if err != nil {
		return err
	}
	return r.run()
}

func (t *terminalRenderer) run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for t.running {
		select {
		case <-ticker.C:
			if err := t.engine.RunUntilFrame(); err != nil {
				slog.Error("engine fault", "error", err)
				return err
			}
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
		}
	}
	return nil
}

func (t *terminalRenderer) handleInput() {
	for t.running {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.handleKey(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *terminalRenderer) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		t.running = false
		return
	}

	if b, ok := buttonFor(ev); ok {
		t.engine.JoypadPress(b)
		t.engine.JoypadRelease(b)
	}
}

func (t *terminalRenderer) render() {
	fb := t.engine.Framebuffer()
	t.screen.Clear()

	for y := 0; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			offset := (y*screenWidth + x) * 3
			r, g, b := fb[offset], fb[offset+1], fb[offset+2]
			shade := shadeIndex(r, g, b)

			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			char := shadeChars[shade]
			screenX, screenY := x*scaleX, y*scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}

// buttonFor maps a subset of terminal keys onto the 8 joypad buttons;
// the demo front-end presses and immediately releases on each
// keystroke rather than tracking key-up events.
func buttonFor(ev *tcell.EventKey) (joypad.Button, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return joypad.Up, true
	case tcell.KeyDown:
		return joypad.Down, true
	case tcell.KeyLeft:
		return joypad.Left, true
	case tcell.KeyRight:
		return joypad.Right, true
	case tcell.KeyEnter:
		return joypad.Start, true
	}

	switch ev.Rune() {
	case 'z':
		return joypad.A, true
	case 'x':
		return joypad.B, true
	case ' ':
		return joypad.Select, true
	}
	return 0, false
}

// shadeIndex maps an RGB24 triple back to one of the 4 fixed DMG
// shades, darkest last, by luminance.
func shadeIndex(r, g, b byte) int {
	lum := (int(r) + int(g) + int(b)) / 3
	switch {
	case lum >= 0xC0:
		return 0
	case lum >= 0x80:
		return 1
	case lum >= 0x40:
		return 2
	default:
		return 3
	}
}
