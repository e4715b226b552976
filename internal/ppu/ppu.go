// Package ppu stubs out pixel rendering: it models VRAM and the LCD
// register bank as plain memory, with no mode scheduling, no dot counter,
// and no STAT/LYC interrupt logic. Real rendering is outside this core's
// scope; the registers exist only so a ROM's writes to them land somewhere
// sane instead of aborting. OAM is owned by Bus, not the PPU: it is plain
// memory with no PPU-side access restrictions to emulate.
package ppu

// PPU holds VRAM and the raw bytes of the LCD register block
// (0xFF40-0xFF4B) as an inert memory region.
type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	regs [0xFF4C - 0xFF40]byte
}

// New returns a PPU stub with every register, LY included, zeroed. Nothing
// advances LY; it changes only when written.
func New() *PPU {
	return &PPU{}
}

// ReadVRAM returns a VRAM byte at a CPU address in 0x8000-0x9FFF.
func (p *PPU) ReadVRAM(addr uint16) byte { return p.vram[addr-0x8000] }

// WriteVRAM stores a VRAM byte at a CPU address in 0x8000-0x9FFF.
func (p *PPU) WriteVRAM(addr uint16, v byte) { p.vram[addr-0x8000] = v }

// ReadReg returns an LCD register byte at a CPU address in 0xFF40-0xFF4B.
func (p *PPU) ReadReg(addr uint16) byte { return p.regs[addr-0xFF40] }

// WriteReg stores an LCD register byte at a CPU address in 0xFF40-0xFF4B.
func (p *PPU) WriteReg(addr uint16, v byte) { p.regs[addr-0xFF40] = v }
