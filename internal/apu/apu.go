// Package apu stubs out audio synthesis: it models the NR1x-NR5x register
// bank (0xFF10-0xFF3F) as plain memory seeded with the documented DMG
// power-on values, with no channel generators, envelopes, or frame
// sequencer. No audio is produced; writes are accepted silently.
package apu

// regOffset converts a CPU address in 0xFF10-0xFF3F to a regs index.
const regOffset = 0xFF10

// powerOnValues holds the documented DMG post-boot contents of
// 0xFF10-0xFF26; the wave RAM at 0xFF30-0xFF3F has no defined reset pattern
// and is left zeroed.
var powerOnValues = map[uint16]byte{
	0xFF10: 0x80,
	0xFF11: 0xBF,
	0xFF12: 0xF3,
	0xFF14: 0xBF,
	0xFF16: 0x3F,
	0xFF17: 0x00,
	0xFF19: 0xBF,
	0xFF1A: 0x7F,
	0xFF1B: 0xFF,
	0xFF1C: 0x9F,
	0xFF1E: 0xBF,
	0xFF20: 0xFF,
	0xFF21: 0x00,
	0xFF22: 0x00,
	0xFF23: 0xBF,
	0xFF24: 0x77,
	0xFF25: 0xF3,
	0xFF26: 0xF1,
}

// APU is an inert register bank covering 0xFF10-0xFF3F.
type APU struct {
	regs [0xFF40 - regOffset]byte
}

// New returns an APU stub seeded with the DMG power-on register values.
func New() *APU {
	a := &APU{}
	for addr, v := range powerOnValues {
		a.regs[addr-regOffset] = v
	}
	return a
}

// Read returns a register byte at a CPU address in 0xFF10-0xFF3F.
func (a *APU) Read(addr uint16) byte { return a.regs[addr-regOffset] }

// Write stores a register byte at a CPU address in 0xFF10-0xFF3F. No sound
// is generated; the byte is retained only so reads see what was last written.
func (a *APU) Write(addr uint16, v byte) { a.regs[addr-regOffset] = v }
