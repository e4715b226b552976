// Package emu wires CPU, Bus, and peripherals into the outer SystemClock
// loop: step the CPU, propagate peripheral interrupts into IF, poll the
// joypad, repeat until told to quit.
package emu

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sago35/dmgcore/internal/bus"
	"github.com/sago35/dmgcore/internal/cart"
	"github.com/sago35/dmgcore/internal/cpu"
	"github.com/sago35/dmgcore/internal/debug"
	"github.com/sago35/dmgcore/internal/joypad"
)

// traceRingCapacity bounds how many recent instruction traces are kept for
// diagnostics when a run ends in a CPU fault.
const traceRingCapacity = 256

// Machine owns the CPU, Bus, and the quit flag the joypad collaborator
// (or a host UI) sets to end the run loop.
type Machine struct {
	cfg Config
	log *slog.Logger

	bus *bus.Bus
	cpu *cpu.CPU
	dbg *debug.Debugger

	quit bool
}

// New constructs a Machine around a pre-loaded cartridge image. It does not
// start executing; call Step or Run.
func New(cfg Config, rom []byte) (*Machine, error) {
	log := slog.Default()

	c, err := cart.NewCartridge(rom)
	if err != nil {
		log.Error("cartridge load failed", "error", err)
		return nil, err
	}

	b := bus.New(c)
	if cfg.BootROM != "" {
		data, readErr := os.ReadFile(cfg.BootROM)
		if readErr != nil {
			ioErr := &IOFailureError{Path: cfg.BootROM, Err: readErr}
			log.Error("boot ROM load failed", "error", ioErr)
			return nil, ioErr
		}
		b.SetBootROM(data)
	}
	b.SetSerialSink(os.Stdout)

	dbgCapacity := 0
	if cfg.Trace {
		dbgCapacity = traceRingCapacity
	}

	m := &Machine{
		cfg: cfg,
		log: log,
		bus: b,
		cpu: cpu.New(b),
		dbg: debug.New(dbgCapacity),
	}

	if h, hdrErr := cart.ParseHeader(rom); hdrErr == nil {
		log.Info("cartridge loaded", "title", h.Title, "type", h.CartTypeStr,
			"rom_banks", h.NumROMBanks, "ram_banks", h.NumRAMBanks)
	}

	return m, nil
}

// SetSerialSink overrides where completed serial transfers are written.
func (m *Machine) SetSerialSink(w io.Writer) { m.bus.SetSerialSink(w) }

// Press forwards a button-press edge to the joypad.
func (m *Machine) Press(b joypad.Button) { m.bus.Joypad().Press(b) }

// Release forwards a button-release edge to the joypad.
func (m *Machine) Release(b joypad.Button) { m.bus.Joypad().Release(b) }

// RequestQuit sets the flag the run loop checks after each instruction.
func (m *Machine) RequestQuit() { m.quit = true }

// CPU exposes the underlying core for tools (cmd/monitor, cmd/cpurunner).
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the underlying bus for tools.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// Debugger exposes the trace ring and breakpoint set for tools (cmd/monitor
// shares the same type but constructs its own instance around a bare
// CPU/Bus pair rather than a Machine).
func (m *Machine) Debugger() *debug.Debugger { return m.dbg }

// Step runs exactly one SystemClock iteration: cpu.step(), peripheral
// advance, IF propagation. It returns the T-cycles consumed and any fault
// the CPU recorded (an illegal opcode).
func (m *Machine) Step() (int, error) {
	pc := m.cpu.PC
	var op byte
	if m.cfg.Trace {
		op = m.bus.Read(pc)
	}

	t := m.cpu.Step()
	if err := m.cpu.Err(); err != nil {
		return t, err
	}

	m.bus.SetIF(m.bus.Serial().TakePending())
	m.bus.Timer().Advance(t)
	m.bus.SetIF(m.bus.Timer().TakePending())
	m.bus.SetIF(m.bus.Joypad().TakePending())

	if m.cfg.Trace {
		m.dbg.RecordTrace(debug.TraceEntry{
			PC: pc, Opcode: op, Cycles: t,
			A: m.cpu.A, F: m.cpu.F, B: m.cpu.B, C: m.cpu.C,
			D: m.cpu.D, E: m.cpu.E, H: m.cpu.H, L: m.cpu.L,
			SP: m.cpu.SP, IME: m.cpu.IME,
		})
		m.log.Debug("step", "pc", fmt.Sprintf("0x%04X", pc), "op", fmt.Sprintf("0x%02X", op), "cycles", t)
	}

	return t, nil
}

// Run executes Step in a loop until the CPU faults, RequestQuit is called,
// or maxSteps is reached (0 means unbounded). It returns the CPU's fault,
// if any.
func (m *Machine) Run(maxSteps int) error {
	for i := 0; maxSteps == 0 || i < maxSteps; i++ {
		if m.quit {
			return nil
		}
		if _, err := m.Step(); err != nil {
			if m.cfg.Trace {
				for _, te := range m.dbg.RecentTrace() {
					m.log.Debug("trace", "pc", fmt.Sprintf("0x%04X", te.PC), "op", fmt.Sprintf("0x%02X", te.Opcode))
				}
			}
			return err
		}
	}
	return nil
}
