package cart

// Cartridge defines the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses in both Read and Write.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000-0x7FFF) and external RAM (0xA000-0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000-0x7FFF) and external RAM writes (0xA000-0xBFFF).
	Write(addr uint16, value byte)
}

// NewCartridge picks an implementation based on the ROM header's cartridge
// type byte. Only no-MBC (0x00) and MBC1 (0x01-0x03) are supported; any
// other type is a fatal load error per the core's error-handling contract.
func NewCartridge(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.NumROMBanks, h.NumRAMBanks), nil
	default:
		return nil, &ErrUnsupportedMBC{Type: h.CartType}
	}
}
