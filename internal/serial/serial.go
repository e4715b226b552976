// Package serial implements the SB/SC serial port with the core's instant
// transfer-completion simplification: writing SC with the transfer-start and
// internal-clock bits set emits SB to the sink immediately and latches an
// interrupt, rather than serializing over eight clock periods.
package serial

import "io"

// SerialBit is the IF/IE bit this peripheral raises on transfer completion.
const SerialBit = 1 << 3

// Serial holds SB/SC and writes completed transfers to an output sink.
type Serial struct {
	sb byte
	sc byte

	sink io.Writer

	pendingInterrupt byte
}

// New returns a Serial with no sink attached; writes are discarded until
// SetSink is called.
func New() *Serial {
	return &Serial{}
}

// SetSink configures where completed transfers are written. A nil sink
// discards output.
func (s *Serial) SetSink(w io.Writer) { s.sink = w }

// ReadSB returns the serial data register.
func (s *Serial) ReadSB() byte { return s.sb }

// WriteSB sets the serial data register.
func (s *Serial) WriteSB(v byte) { s.sb = v }

// ReadSC returns SC with its always-1 bits set.
func (s *Serial) ReadSC() byte { return s.sc | 0x7E }

// WriteSC stores data|0x7E into SC; if bits 7 and 0 are both set (transfer
// start with the internal clock), it emits SB to the sink, clears SC bit 7,
// and latches SerialBit.
func (s *Serial) WriteSC(data byte) {
	s.sc = data | 0x7E
	if data&0x81 == 0x81 {
		if s.sink != nil {
			_, _ = s.sink.Write([]byte{s.sb})
		}
		s.sc &^= 0x80
		s.pendingInterrupt = SerialBit
	}
}

// TakePending returns and clears the latched interrupt bit.
func (s *Serial) TakePending() byte {
	p := s.pendingInterrupt
	s.pendingInterrupt = 0
	return p
}
