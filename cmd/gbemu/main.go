// Command gbemu runs the DMG core against a cartridge image with no
// rendering or audio output: it drives the CPU/Bus/peripheral loop to
// completion or to a step budget, reporting serial output and any fatal
// core fault.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/sago35/dmgcore/internal/cart"
	"github.com/sago35/dmgcore/internal/cpu"
	"github.com/sago35/dmgcore/internal/emu"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbemu"
	app.Usage = "gbemu [options] <cartridge.gb>"
	app.Description = "DMG CPU/memory/timer core runner"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "trace",
			Usage: "log a debug line per CPU step (PC, cycles consumed)",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "path to a custom 256-byte boot ROM (default: built-in DMG boot ROM)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a TOML config file (trace flag, boot ROM path, key map)",
		},
		cli.IntFlag{
			Name:  "steps",
			Usage: "stop after this many CPU steps (0 = run until quit or fault)",
			Value: 0,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads the configured cartridge and boot ROM, builds a Machine, and
// drives it to completion. Returned errors already carry the
// "[ERROR] <kind>: <context>" form; main prints them and exits with code 1.
func run(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return errors.New("[ERROR] Usage: missing cartridge path")
	}
	romPath := c.Args().Get(0)

	cfg, err := emu.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("[ERROR] IOFailure: reading config %q: %w", c.String("config"), err)
	}
	if c.Bool("trace") {
		cfg.Trace = true
	}
	if boot := c.String("boot"); boot != "" {
		cfg.BootROM = boot
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("[ERROR] IOFailure: reading cartridge %q: %w", romPath, err)
	}

	m, err := emu.New(cfg, rom)
	if err != nil {
		return formatMachineError(err)
	}

	if err := m.Run(c.Int("steps")); err != nil {
		return formatMachineError(err)
	}

	slog.Info("run complete", "cartridge", romPath)
	return nil
}

// formatMachineError classifies an error from emu.New/Machine.Run into the
// "[ERROR] <kind>: <context>" form spec §7 requires for load/fault failures.
func formatMachineError(err error) error {
	var ioErr *emu.IOFailureError
	var shortErr *cart.ErrCartridgeTooShort
	var mbcErr *cart.ErrUnsupportedMBC
	var illegalErr *cpu.IllegalOpcodeError

	switch {
	case errors.As(err, &ioErr):
		return fmt.Errorf("[ERROR] IOFailure: %w", err)
	case errors.As(err, &shortErr):
		return fmt.Errorf("[ERROR] CartridgeTooShort: %w", err)
	case errors.As(err, &mbcErr):
		return fmt.Errorf("[ERROR] UnsupportedMBC: %w", err)
	case errors.As(err, &illegalErr):
		return fmt.Errorf("[ERROR] IllegalOpcode: %w", err)
	default:
		return fmt.Errorf("[ERROR] %s", err.Error())
	}
}
