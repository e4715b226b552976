package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypad_NoSelection_ReadsAllOnes(t *testing.T) {
	j := New()
	assert.Equal(t, byte(0xFF), j.Read())
}

func TestJoypad_DPadSelected_PressedBitReadsZero(t *testing.T) {
	j := New()
	j.Write(0x20) // bit4=0 selects D-pad, bit5=1 deselects buttons
	j.Press(Up)

	assert.Equal(t, byte(0xEB), j.Read(), "Up is bit 2 of the low nibble")
}

func TestJoypad_ButtonsSelected_PressedBitReadsZero(t *testing.T) {
	j := New()
	j.Write(0x10) // bit5=0 selects buttons
	j.Press(A)

	assert.Equal(t, byte(0xDE), j.Read(), "A is bit 0 via buttons>>4")
}

func TestJoypad_BothGroupsSelected_ANDsLines(t *testing.T) {
	j := New()
	j.Write(0x00) // both groups selected
	j.Press(Right)
	j.Press(Start)

	// Right (dpad bit 0) is pressed; Start (buttons bit 3) is also pressed;
	// with both groups selected both lines read 0 in the combined low nibble.
	assert.Equal(t, byte(0xC6), j.Read())
}

func TestJoypad_EdgeTriggersInterruptOnlyOnTransition(t *testing.T) {
	j := New()
	j.Write(0x20) // select D-pad

	j.Press(Left)
	assert.Equal(t, byte(JoypadBit), j.TakePending())

	// Already pressed: no new edge.
	j.Press(Left)
	assert.Equal(t, byte(0), j.TakePending())

	j.Release(Left)
	assert.Equal(t, byte(0), j.TakePending(), "release is a 0->1 transition, not an interrupt source")
}

func TestJoypad_SelectingAGroupWithButtonAlreadyHeld_RaisesEdge(t *testing.T) {
	j := New()
	j.Write(0x30) // both groups deselected
	j.Press(B)
	assert.Equal(t, byte(0), j.TakePending(), "no selected line, so no edge yet")

	j.Write(0x10) // now select buttons while B is already held
	assert.Equal(t, byte(JoypadBit), j.TakePending())
}

func TestJoypad_UpperTwoBitsAlwaysReadAsOne(t *testing.T) {
	j := New()
	j.Write(0xFF)
	assert.Equal(t, byte(0xC0), j.Read()&0xC0)
}
