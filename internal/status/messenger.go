// Package status provides the human-readable status-message channel with
// client-side rate limiting.
package status

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindow is the suppression window for repeated message keys.
const DefaultWindow = time.Second

// Sink receives status text. The harness core never talks to the transport
// directly.
type Sink interface {
	Send(text string)
}

// LogSink reports status messages through a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Send(text string) {
	s.Logger.Info().Str("channel", "status").Msg(text)
}

type entry struct {
	lastSent   time.Time
	suppressed int
}

// Messenger rate-limits status messages per key: a key that was sent within
// the suppression window is swallowed, and the suppressed count is replayed
// as a suffix the next time the key goes out. State is owned here, not
// package-global.
type Messenger struct {
	sink    Sink
	window  time.Duration
	clock   func() time.Time
	entries map[string]*entry
}

// NewMessenger creates a messenger with the default 1 s suppression window.
func NewMessenger(sink Sink) *Messenger {
	return &Messenger{
		sink:    sink,
		window:  DefaultWindow,
		clock:   time.Now,
		entries: make(map[string]*entry),
	}
}

// SetClock overrides the time source, for tests.
func (m *Messenger) SetClock(clock func() time.Time) { m.clock = clock }

// Send emits text on the status channel, keyed for rate limiting. Messages
// with the same key inside the window are counted and suppressed.
func (m *Messenger) Send(key, text string) {
	now := m.clock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	} else if now.Sub(e.lastSent) < m.window {
		e.suppressed++
		return
	}

	if e.suppressed > 0 {
		text = fmt.Sprintf("%s (+%d suppressed)", text, e.suppressed)
	}
	m.sink.Send(text)
	e.lastSent = now
	e.suppressed = 0
}

// Sendf formats and sends a status message.
func (m *Messenger) Sendf(key, format string, args ...interface{}) {
	m.Send(key, fmt.Sprintf(format, args...))
}
