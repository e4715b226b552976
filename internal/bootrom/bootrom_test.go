package bootrom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDMG_Is256Bytes(t *testing.T) {
	assert.Len(t, DMG, 256)
}

func TestDMG_EndsWithBootDisableWrite(t *testing.T) {
	// The final instructions are LD A,1 ; LDH (0x50),A, which disables the
	// boot overlay and falls through to the cartridge at 0x0100.
	assert.Equal(t, byte(0x3E), DMG[252])
	assert.Equal(t, byte(0x01), DMG[253])
	assert.Equal(t, byte(0xE0), DMG[254])
	assert.Equal(t, byte(0x50), DMG[255])
}
