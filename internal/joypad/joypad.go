// Package joypad implements the P1 register and the host-facing
// press/release edge API. Button state is active-low at the register level;
// the JOYPAD interrupt latches on any selected line's 1->0 transition.
package joypad

// JoypadBit is the IF/IE bit this peripheral raises on a button edge.
const JoypadBit = 1 << 4

// Button enumerates the eight DMG inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// button bit layout within the active-low buttons byte: bit 7 Start, 6
// Select, 5 B, 4 A, 3 Down, 2 Up, 1 Left, 0 Right.
var buttonBit = [8]byte{
	Right:  1 << 0,
	Left:   1 << 1,
	Up:     1 << 2,
	Down:   1 << 3,
	A:      1 << 4,
	B:      1 << 5,
	Select: 1 << 6,
	Start:  1 << 7,
}

// Joypad holds the button bitmask, the P1 line-select shadow, and the
// edge-triggered interrupt latch.
type Joypad struct {
	buttons byte // active-high internal state; bit set means pressed
	p1      byte // last-written select bits (0x30)

	dpadSelected    bool
	buttonsSelected bool

	lastLowNibble byte // previous computed low nibble, for edge detection

	pendingInterrupt byte
}

// New returns a Joypad with no buttons pressed and both line groups
// deselected (reading back all-1s).
func New() *Joypad {
	j := &Joypad{p1: 0x30}
	j.recompute()
	return j
}

// Press marks button as held and recomputes P1, latching JoypadBit on a
// 1->0 transition of a selected line.
func (j *Joypad) Press(b Button) {
	j.buttons |= buttonBit[b]
	j.recompute()
}

// Release marks button as no longer held.
func (j *Joypad) Release(b Button) {
	j.buttons &^= buttonBit[b]
	j.recompute()
}

// Read returns the P1 register: upper two bits always 1, next two bits
// reflect the last-written selection, low nibble is the AND of selected
// input lines (1 = not pressed / not selected).
func (j *Joypad) Read() byte {
	return 0xC0 | (j.p1 & 0x30) | j.lastLowNibble
}

// Write stores the line-select bits (4 and 5; 0 = selected) and recomputes
// the latch.
func (j *Joypad) Write(data byte) {
	j.p1 = data & 0x30
	j.dpadSelected = j.p1&0x10 == 0
	j.buttonsSelected = j.p1&0x20 == 0
	j.recompute()
}

// TakePending returns and clears the latched interrupt bit.
func (j *Joypad) TakePending() byte {
	p := j.pendingInterrupt
	j.pendingInterrupt = 0
	return p
}

func (j *Joypad) recompute() {
	j.dpadSelected = j.p1&0x10 == 0
	j.buttonsSelected = j.p1&0x20 == 0

	newLow := byte(0x0F)
	if j.buttonsSelected {
		newLow &^= (j.buttons >> 4) & 0x0F
	}
	if j.dpadSelected {
		newLow &^= j.buttons & 0x0F
	}

	falling := j.lastLowNibble &^ newLow
	if falling != 0 {
		j.pendingInterrupt = JoypadBit
	}
	j.lastLowNibble = newLow
}
