package cart

import (
	"encoding/binary"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x014F
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header holds the decoded fields of a DMG cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string // trimmed ASCII, 0x0134-0x0143
	CGBFlag        byte   // 0x0143
	SGBFlag        byte   // 0x0146
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	OldLicensee    byte   // 0x014B
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F

	// NumROMBanks and NumRAMBanks are derived from ROMSizeCode/RAMSizeCode
	// per the bank-count rules the core's Cartridge/MBC1 implementation uses.
	NumROMBanks int
	NumRAMBanks int
	CartTypeStr string
}

// ParseHeader reads the DMG cartridge header out of rom. It returns
// *ErrCartridgeTooShort if rom is shorter than the minimum header-bearing
// length.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, &ErrCartridgeTooShort{Length: len(rom)}
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	h.NumROMBanks = numROMBanks(h.ROMSizeCode)
	h.NumRAMBanks = numRAMBanks(h.RAMSizeCode)
	h.CartTypeStr = cartTypeString(h.CartType)

	return h, nil
}

// HeaderChecksumOK recomputes the Pan Docs header checksum over 0x0134-0x014C
// and compares it against the stored value at 0x014D. Not enforced as a load
// error; used for startup diagnostics only.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// LogoPresent reports whether the Nintendo logo bytes at 0x0104-0x0133 match
// the standard bitmap. Not enforced as a load error; useful for diagnostics.
func LogoPresent(rom []byte) bool {
	if len(rom) < 0x0104+48 {
		return false
	}
	for i := range nintendoLogo {
		if rom[0x0104+i] != nintendoLogo[i] {
			return false
		}
	}
	return true
}

// numROMBanks derives the ROM bank count from header byte 0x148: for
// codes 0..8, 2<<code; otherwise 1.
func numROMBanks(code byte) int {
	if code <= 8 {
		return 2 << code
	}
	return 1
}

// numRAMBanks derives the external RAM bank count from header byte 0x149.
func numRAMBanks(code byte) int {
	switch code {
	case 0:
		return 0
	case 1, 2:
		return 1
	case 3:
		return 4
	case 4:
		return 16
	case 5:
		return 8
	default:
		return 0
	}
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (variants)"
	default:
		return "unsupported"
	}
}
