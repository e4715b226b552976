// Command monitor is an interactive terminal UI for single-stepping the DMG
// core: registers, flags, a memory hex view, and PC breakpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sago35/dmgcore/internal/bus"
	"github.com/sago35/dmgcore/internal/cart"
	"github.com/sago35/dmgcore/internal/cpu"
	"github.com/sago35/dmgcore/internal/debug"
)

type stepTick struct{}

func doStep() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return stepTick{}
	})
}

// regState is a snapshot used to highlight changed fields between steps.
type regState struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	IME                    bool
}

func snapshot(c *cpu.CPU) regState {
	return regState{A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L, SP: c.SP, PC: c.PC, IME: c.IME}
}

// Monitor is the bubbletea model wrapping a running Machine-equivalent
// CPU/Bus pair.
type Monitor struct {
	cpu *cpu.CPU
	bus *bus.Bus
	dbg *debug.Debugger

	paused bool
	fault  error

	last regState

	memAddr    uint16
	gotoInput  textinput.Model
	showGoto   bool
	width      int
	height     int
}

var (
	highlight    = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special      = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	changedColor = lipgloss.Color("#FF6B6B")

	infoStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(1).
			Width(32)

	memStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(special).
			Padding(1).
			Width(56)

	changedStyle = lipgloss.NewStyle().Foreground(changedColor).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}).Padding(0, 1)
	breakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

func newMonitor(c *cpu.CPU, b *bus.Bus) *Monitor {
	ti := textinput.New()
	ti.Placeholder = "hex address (e.g. FF80)"
	ti.CharLimit = 4
	ti.Width = 8

	m := &Monitor{
		cpu:       c,
		bus:       b,
		dbg:       debug.New(256),
		paused:    true,
		last:      snapshot(c),
		memAddr:   c.PC,
		gotoInput: ti,
	}
	return m
}

func (m *Monitor) doStep() {
	m.last = snapshot(m.cpu)
	cyc := m.cpu.Step()
	if err := m.cpu.Err(); err != nil {
		m.fault = err
		m.paused = true
		return
	}
	m.bus.Timer().Advance(cyc)
	m.bus.SetIF(m.bus.Serial().TakePending())
	m.bus.SetIF(m.bus.Timer().TakePending())
	m.bus.SetIF(m.bus.Joypad().TakePending())
}

func (m Monitor) Init() tea.Cmd { return nil }

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepTick:
		if m.paused || m.fault != nil {
			return m, nil
		}
		if m.dbg.ShouldBreak(m.cpu.PC) {
			m.paused = true
			return m, nil
		}
		m.doStep()
		return m, doStep()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if m.showGoto {
			switch msg.Type {
			case tea.KeyEnter:
				if addr, err := strconv.ParseUint(m.gotoInput.Value(), 16, 16); err == nil {
					m.memAddr = uint16(addr)
				}
				m.showGoto = false
				return m, nil
			case tea.KeyEsc:
				m.showGoto = false
				return m, nil
			}
			var cmd tea.Cmd
			m.gotoInput, cmd = m.gotoInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.showGoto = true
			m.gotoInput.Focus()
			return m, textinput.Blink
		case "s":
			if m.paused && m.fault == nil {
				m.doStep()
			}
		case "b":
			pc := m.cpu.PC
			if _, armed := m.dbg.Breakpoints()[pc]; armed {
				m.dbg.RemoveBreakpoint(pc)
			} else {
				m.dbg.SetBreakpoint(pc)
			}
		case "n":
			if m.paused && m.fault == nil && len(m.dbg.Breakpoints()) > 0 {
				m.paused = false
				return m, doStep()
			}
		case "p":
			if m.fault == nil {
				m.paused = !m.paused
				if !m.paused {
					return m, doStep()
				}
			}
		case "up":
			if m.memAddr >= 8 {
				m.memAddr -= 8
			}
		case "down":
			if m.memAddr <= 0xFFF7 {
				m.memAddr += 8
			}
		}
	}
	return m, nil
}

func fmtReg8(name string, cur, prev byte) string {
	s := fmt.Sprintf("%s:%02X", name, cur)
	if cur != prev {
		return changedStyle.Render(s)
	}
	return s
}

func fmtReg16(name string, cur, prev uint16) string {
	s := fmt.Sprintf("%s:%04X", name, cur)
	if cur != prev {
		return changedStyle.Render(s)
	}
	return s
}

func (m Monitor) formatFlags() string {
	f := m.cpu.F
	names := []struct {
		name string
		bit  byte
	}{{"Z", 0x80}, {"N", 0x40}, {"H", 0x20}, {"C", 0x10}}
	var sb strings.Builder
	for _, n := range names {
		if f&n.bit != 0 {
			sb.WriteString(n.name + " ")
		} else {
			sb.WriteString("- ")
		}
	}
	return sb.String()
}

func (m Monitor) formatMemory() string {
	var sb strings.Builder
	addr := m.memAddr
	for row := 0; row < 8; row++ {
		sb.WriteString(fmt.Sprintf("%04X: ", addr))
		for col := 0; col < 8; col++ {
			sb.WriteString(fmt.Sprintf("%02X ", m.bus.Read(addr+uint16(col))))
		}
		sb.WriteString(" | ")
		for col := 0; col < 8; col++ {
			v := m.bus.Read(addr + uint16(col))
			if v >= 32 && v < 127 {
				sb.WriteByte(v)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("\n")
		addr += 8
	}
	return sb.String()
}

func (m Monitor) View() string {
	status := "running"
	if m.fault != nil {
		status = "FAULT: " + m.fault.Error()
	} else if m.paused {
		status = "paused"
	}
	bpMark := ""
	if _, armed := m.dbg.Breakpoints()[m.cpu.PC]; armed {
		bpMark = breakStyle.Render(" [BP]")
	}

	regs := infoStyle.Render(fmt.Sprintf(
		"CPU State (%s)%s\n\n%s %s %s %s\n%s %s %s %s\n%s %s\n\nFlags: %s\nIME: %t",
		status, bpMark,
		fmtReg8("A", m.cpu.A, m.last.A), fmtReg8("F", m.cpu.F, m.last.F),
		fmtReg8("B", m.cpu.B, m.last.B), fmtReg8("C", m.cpu.C, m.last.C),
		fmtReg8("D", m.cpu.D, m.last.D), fmtReg8("E", m.cpu.E, m.last.E),
		fmtReg8("H", m.cpu.H, m.last.H), fmtReg8("L", m.cpu.L, m.last.L),
		fmtReg16("PC", m.cpu.PC, m.last.PC), fmtReg16("SP", m.cpu.SP, m.last.SP),
		m.formatFlags(), m.cpu.IME,
	))

	mem := memStyle.Render(fmt.Sprintf("Memory (↑↓ to scroll, g to goto)\n\n%s", m.formatMemory()))

	help := helpStyle.Render("s: step  n: run-to-break  p: pause/resume  b: toggle breakpoint  g: goto  q: quit")

	content := lipgloss.JoinHorizontal(lipgloss.Top, regs, mem)
	if m.showGoto {
		dialog := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1).Width(30).
			Render("Go to address:\n\n" + m.gotoInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, content, help, dialog)
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "-rom is required")
		os.Exit(1)
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read rom: %v\n", err)
		os.Exit(1)
	}

	c8, err := cart.NewCartridge(rom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load cartridge: %v\n", err)
		os.Exit(1)
	}
	b := bus.New(c8)
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read bootrom: %v\n", err)
			os.Exit(1)
		}
		b.SetBootROM(boot)
	}
	c := cpu.New(b)

	p := tea.NewProgram(newMonitor(c, b))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor error: %v\n", err)
		os.Exit(1)
	}
}
