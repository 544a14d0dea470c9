package wsroom

import (
	"bytes"
	"io"
	"sync"
)

// textStream delivers one inbound text stream to a handler incrementally.
// Chunks are pushed by the read loop; Read blocks until data arrives or the
// remote side ends the stream, at which point it returns io.EOF.
type textStream struct {
	mu           sync.Mutex
	buf          bytes.Buffer
	closed       bool
	updateSignal chan struct{}
}

func newTextStream() *textStream {
	return &textStream{updateSignal: make(chan struct{}, 1)}
}

func (s *textStream) push(text string) {
	s.mu.Lock()
	s.buf.WriteString(text)
	s.mu.Unlock()
	s.signalUpdate()
}

func (s *textStream) end() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signalUpdate()
}

func (s *textStream) Read(p []byte) (int, error) {
	for {
		s.mu.Lock()
		if s.buf.Len() > 0 {
			n, _ := s.buf.Read(p)
			s.mu.Unlock()
			return n, nil
		}
		if s.closed {
			s.mu.Unlock()
			return 0, io.EOF
		}
		s.mu.Unlock()

		<-s.updateSignal
	}
}

func (s *textStream) signalUpdate() {
	select {
	case s.updateSignal <- struct{}{}:
	default:
	}
}

var _ io.Reader = (*textStream)(nil)
