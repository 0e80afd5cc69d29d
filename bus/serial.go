package bus

import (
	"log/slog"

	"github.com/dmgcore/coregb/addr"
	"github.com/dmgcore/coregb/bit"
)

// serialSink is a loopback-only SB/SC implementation: starting a
// transfer appends the outgoing byte to a text line instead of
// exchanging it with a peer, and a newline, carriage return or NUL
// byte logs the accumulated line. No interrupt is ever requested; Serial is not one of
// the four interrupt sources this design models.
type serialSink struct {
	sb, sc uint8
	logger *slog.Logger
	line   []byte
}

func newSerialSink() *serialSink {
	return &serialSink{logger: slog.Default()}
}

func (s *serialSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	}
	return 0xFF
}

func (s *serialSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

func (s *serialSink) maybeStartTransfer() {
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
}
