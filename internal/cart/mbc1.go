package cart

// MBC1 implements the MBC1 ROM/RAM banking scheme: a 5-bit ROM bank select
// (0 remapped to 1), a 2-bit register shared between RAM bank and the high
// bits of the 0x0000-0x3FFF window in mode 1, and a mode flag choosing
// between the two.
type MBC1 struct {
	rom []byte
	ram []byte

	nbrROMBanks int
	nbrRAMBanks int

	ramEnabled      bool
	currentROMBank  byte // 1..0x1F, 0 remapped to 1
	currentRAMBank  byte // 0..3
	modeFlag        byte // 0: ROM banking mode, 1: RAM banking mode
}

// NewMBC1 builds an MBC1 cartridge. nbrROMBanks/nbrRAMBanks come from the
// header's derived bank counts (see header.go); ram is sized to
// nbrRAMBanks*0x2000 bytes, zero-initialised.
func NewMBC1(rom []byte, nbrROMBanks, nbrRAMBanks int) *MBC1 {
	m := &MBC1{
		rom:            rom,
		nbrROMBanks:    nbrROMBanks,
		nbrRAMBanks:    nbrRAMBanks,
		currentROMBank: 1,
	}
	if nbrRAMBanks > 0 {
		m.ram = make([]byte, nbrRAMBanks*0x2000)
	}
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if m.modeFlag == 0 {
			return m.romByte(int(addr))
		}
		bank := m.bankMod(int(m.currentRAMBank) << 5)
		return m.romByte(bank*0x4000 + int(addr))
	case addr < 0x8000:
		bank := m.bankMod(int(m.currentROMBank))
		return m.romByte(bank*0x4000 + int(addr-0x4000))
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.currentRAMBank)*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.currentROMBank = bank
	case addr < 0x6000:
		m.currentRAMBank = value & 0x03
	case addr < 0x8000:
		m.modeFlag = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := int(m.currentRAMBank)*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// bankMod reduces a bank index modulo the ROM's bank count, matching the
// "mod nbr_rom_banks" rule used by both banked-read formulas.
func (m *MBC1) bankMod(bank int) int {
	if m.nbrROMBanks <= 0 {
		return bank
	}
	return bank % m.nbrROMBanks
}

func (m *MBC1) romByte(off int) byte {
	if off >= 0 && off < len(m.rom) {
		return m.rom[off]
	}
	return 0xFF
}
