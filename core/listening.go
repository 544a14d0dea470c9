package session

import (
	"errors"
	"strings"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/speech"
)

// utteranceBuffer holds one recognition turn: the mutable interim text and
// the finalized segments. It resets after each final emission.
type utteranceBuffer struct {
	interim       string
	finalSegments []string
}

// StartListening opens a continuous, interim-enabled recognition session.
// It is a no-op when no speech engine is configured or the session is not
// connected.
func (s *Session) StartListening() error {
	s.mu.Lock()
	if s.engine == nil || s.state != StateConnected || s.listening {
		s.mu.Unlock()
		return nil
	}
	s.listening = true
	s.utterance = utteranceBuffer{}
	s.mu.Unlock()

	if err := s.startRecognition(); err != nil {
		s.mu.Lock()
		s.listening = false
		s.mu.Unlock()
		return err
	}

	s.emitEvent(events.NewListeningStateChanged(true))
	return nil
}

// StopListening clears the listening flag first, so the termination event
// the abort produces does not trigger a restart, then aborts the active
// recognition session and clears the interim entry.
func (s *Session) StopListening() {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}
	s.listening = false
	s.utterance = utteranceBuffer{}
	s.mu.Unlock()

	if s.engine != nil {
		s.engine.Abort()
	}

	s.transcript.ClearInterim()
	s.emitEvent(events.NewTranscriptInterimUpdated(""))
	s.emitEvent(events.NewListeningStateChanged(false))
}

// startRecognition opens a recognition session. A session already being
// active counts as success, which makes restarts idempotent.
func (s *Session) startRecognition() error {
	err := s.engine.Start(s.baseContext,
		speech.WithResultsCallback(s.handleRecognitionResults),
		speech.WithEndCallback(s.handleRecognitionEnd),
		speech.WithErrorCallback(s.handleRecognitionError),
	)
	if errors.Is(err, speech.ErrAlreadyActive) {
		return nil
	}
	return err
}

// handleRecognitionResults partitions an update into interim and final
// text. Interim text replaces the buffer and is projected to the live
// interim entry; once an update carries any final text, the finalized
// segments are concatenated, trimmed, and emitted as one user message.
func (s *Session) handleRecognitionResults(results []speech.Result) {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return
	}

	var interim []string
	sawFinal := false
	for _, result := range results {
		if result.Final {
			s.utterance.finalSegments = append(s.utterance.finalSegments, result.Text)
			sawFinal = true
		} else if result.Text != "" {
			interim = append(interim, result.Text)
		}
	}

	if sawFinal {
		text := strings.TrimSpace(strings.Join(s.utterance.finalSegments, " "))
		s.utterance = utteranceBuffer{}
		s.mu.Unlock()

		s.transcript.ClearInterim()
		s.emitEvent(events.NewTranscriptInterimUpdated(""))

		if text != "" {
			s.SendUserText(text)
		}
		return
	}

	s.utterance.interim = strings.Join(interim, " ")
	snapshot := s.utterance.interim
	s.mu.Unlock()

	s.transcript.SetInterim(snapshot)
	s.emitEvent(events.NewTranscriptInterimUpdated(snapshot))
}

// handleRecognitionEnd restarts the recognition session after a benign
// termination, as long as listening was not stopped in the meantime.
func (s *Session) handleRecognitionEnd() {
	s.mu.Lock()
	listening := s.listening
	s.mu.Unlock()
	if !listening {
		return
	}

	if err := s.startRecognition(); err != nil {
		logger.Warn("failed to restart recognition session", "error", err)
	}
}

func (s *Session) handleRecognitionError(err speech.Error) {
	if err.Benign() {
		// Expected classes (no speech, deliberate abort); the restart-on-end
		// path covers recovery.
		logger.Debug("recognition session ended", "code", string(err.Code))
		return
	}
	logger.Warn("recognition error", "code", string(err.Code), "error", err.Message)
}
