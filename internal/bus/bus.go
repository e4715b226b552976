// Package bus routes the LR35902's 16-bit address space to cartridge,
// work RAM, high RAM, and the I/O peripherals, per the memory map's fixed
// routing table. It is the single point where the CPU's byte-level reads
// and writes become peripheral-specific behavior.
package bus

import (
	"io"

	"github.com/sago35/dmgcore/internal/apu"
	"github.com/sago35/dmgcore/internal/bootrom"
	"github.com/sago35/dmgcore/internal/cart"
	"github.com/sago35/dmgcore/internal/joypad"
	"github.com/sago35/dmgcore/internal/ppu"
	"github.com/sago35/dmgcore/internal/serial"
	"github.com/sago35/dmgcore/internal/timer"
)

// Bus owns WRAM, HRAM, and the boot ROM overlay, and holds non-owning
// references to the cartridge and the I/O peripherals it delegates to.
type Bus struct {
	cart cart.Cartridge

	wram [0x2000]byte // 0xC000-0xDFFF, mirrored at 0xE000-0xFDFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F
	hram [0x7F]byte   // 0xFF80-0xFFFE

	timer  *timer.Timer
	serial *serial.Serial
	joypad *joypad.Joypad
	ppu    *ppu.PPU
	apu    *apu.APU

	ie    byte
	ifReg byte

	bootROM     [256]byte
	bootEnabled bool
}

// New wires a Bus around a cartridge implementation, with the built-in DMG
// boot ROM overlay enabled and all peripherals in their reset state.
func New(c cart.Cartridge) *Bus {
	return &Bus{
		cart:        c,
		timer:       timer.New(),
		serial:      serial.New(),
		joypad:      joypad.New(),
		ppu:         ppu.New(),
		apu:         apu.New(),
		bootROM:     bootrom.DMG,
		bootEnabled: true,
	}
}

// SetBootROM overrides the 256-byte boot overlay (used by tooling that
// wants to run a non-standard bootstrap). Passing fewer than 256 bytes is a
// caller error; this is not validated since it is a development-only path.
func (b *Bus) SetBootROM(data []byte) {
	copy(b.bootROM[:], data)
}

// Cart returns the underlying cartridge.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Timer returns the timer peripheral.
func (b *Bus) Timer() *timer.Timer { return b.timer }

// Serial returns the serial peripheral.
func (b *Bus) Serial() *serial.Serial { return b.serial }

// Joypad returns the joypad peripheral.
func (b *Bus) Joypad() *joypad.Joypad { return b.joypad }

// SetSerialSink configures the serial port's output sink.
func (b *Bus) SetSerialSink(w io.Writer) { b.serial.SetSink(w) }

// Read dispatches a CPU byte read per the fixed routing table.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootEnabled:
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr <= 0x9FFF:
		return b.ppu.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr <= 0xDFFF:
		return b.wram[addr&0x1FFF]
	case addr <= 0xFDFF:
		return b.wram[addr&0x1FFF]
	case addr <= 0xFE9F:
		return b.oam[addr-0xFE00]
	case addr <= 0xFEFF:
		return 0xFF
	case addr == 0xFF00:
		return b.joypad.Read()
	case addr == 0xFF01:
		return b.serial.ReadSB()
	case addr == 0xFF02:
		return b.serial.ReadSC()
	case addr == 0xFF04:
		return b.timer.ReadDIV()
	case addr == 0xFF05:
		return b.timer.ReadTIMA()
	case addr == 0xFF06:
		return b.timer.ReadTMA()
	case addr == 0xFF07:
		return b.timer.ReadTAC()
	case addr == 0xFF0F:
		return b.ifReg | 0xE0
	case addr <= 0xFF3F:
		return b.apu.Read(addr)
	case addr <= 0xFF4B:
		return b.ppu.ReadReg(addr)
	case addr == 0xFF50:
		return 0xFF
	case addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

// Write dispatches a CPU byte write per the fixed routing table.
func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, v)
	case addr <= 0x9FFF:
		b.ppu.WriteVRAM(addr, v)
	case addr <= 0xBFFF:
		b.cart.Write(addr, v)
	case addr <= 0xDFFF:
		b.wram[addr&0x1FFF] = v
	case addr <= 0xFDFF:
		b.wram[addr&0x1FFF] = v
	case addr <= 0xFE9F:
		b.oam[addr-0xFE00] = v
	case addr <= 0xFEFF:
		// prohibited region: writes discarded
	case addr == 0xFF00:
		b.joypad.Write(v)
	case addr == 0xFF01:
		b.serial.WriteSB(v)
	case addr == 0xFF02:
		b.serial.WriteSC(v)
	case addr == 0xFF04:
		b.timer.WriteDIV(v)
	case addr == 0xFF05:
		b.timer.WriteTIMA(v)
	case addr == 0xFF06:
		b.timer.WriteTMA(v)
	case addr == 0xFF07:
		b.timer.WriteTAC(v)
	case addr == 0xFF0F:
		b.ifReg = v & 0x1F
	case addr <= 0xFF3F:
		b.apu.Write(addr, v)
	case addr <= 0xFF4B:
		b.ppu.WriteReg(addr, v)
	case addr == 0xFF50:
		b.bootEnabled = false
	case addr <= 0xFFFE:
		b.hram[addr-0xFF80] = v
	case addr == 0xFFFF:
		b.ie = v
	}
}

// Read16 reads a little-endian word.
func (b *Bus) Read16(addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

// Write16 writes a little-endian word.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

// IE returns the interrupt-enable register.
func (b *Bus) IE() byte { return b.ie }

// IF returns the raw interrupt-flag byte (lower 5 bits only; callers
// wanting the CPU-visible value should use Read(0xFF0F)).
func (b *Bus) IF() byte { return b.ifReg }

// SetIF ORs pending into the interrupt-flag register. Per the system
// clock's ownership rule, peripheral pending bits must always be OR'd in,
// never assigned, so a source raised earlier in the same step isn't
// clobbered.
func (b *Bus) SetIF(pending byte) { b.ifReg |= pending & 0x1F }

// ClearIFBit clears a single IF bit, used by the CPU when it services an
// interrupt.
func (b *Bus) ClearIFBit(bit uint) { b.ifReg &^= 1 << bit }
