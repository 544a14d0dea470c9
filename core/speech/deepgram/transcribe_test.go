package deepgram

import (
	"testing"

	"github.com/voxlink-dev/voicelink/core/speech"
)

func TestProcessMessageAccumulatesFinalsUntilSpeechFinal(t *testing.T) {
	client := NewClient()

	results := [][]speech.Result{}
	options := speech.Options{
		ResultsCallback: func(update []speech.Result) {
			results = append(results, update)
		},
	}

	client.processMessage([]byte(`{"type":"SpeechStarted"}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":false,"speech_final":false,"channel":{"alternatives":[{"transcript":"hel"}]}}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":false,"channel":{"alternatives":[{"transcript":"hello"}]}}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":false,"speech_final":false,"channel":{"alternatives":[{"transcript":"wor"}]}}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":"world"}]}}`), options)

	if len(results) != 3 {
		t.Fatalf("expected three updates (two interim, one final), got %d: %v", len(results), results)
	}

	if results[0][0].Final || results[0][0].Text != "hel" {
		t.Fatalf("expected first interim update \"hel\", got %+v", results[0][0])
	}

	if results[1][0].Final || results[1][0].Text != "hello wor" {
		t.Fatalf("expected accumulated interim update \"hello wor\", got %+v", results[1][0])
	}

	if !results[2][0].Final || results[2][0].Text != "hello world" {
		t.Fatalf("expected final update \"hello world\", got %+v", results[2][0])
	}
}

func TestProcessMessageUtteranceEndFinalizesUnendedSegment(t *testing.T) {
	client := NewClient()

	results := [][]speech.Result{}
	options := speech.Options{
		ResultsCallback: func(update []speech.Result) {
			results = append(results, update)
		},
	}

	client.processMessage([]byte(`{"type":"SpeechStarted"}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":false,"channel":{"alternatives":[{"transcript":"still there"}]}}`), options)
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), options)

	if len(results) != 1 {
		t.Fatalf("expected one final update, got %d: %v", len(results), results)
	}
	if !results[0][0].Final || results[0][0].Text != "still there" {
		t.Fatalf("expected final update \"still there\", got %+v", results[0][0])
	}

	// A second utterance-end without new speech must not re-finalize.
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), options)
	if len(results) != 1 {
		t.Fatalf("expected no update for utterance end without unended segment, got %d", len(results))
	}
}

func TestProcessMessageIgnoresEmptyTranscripts(t *testing.T) {
	client := NewClient()

	calls := 0
	options := speech.Options{
		ResultsCallback: func([]speech.Result) { calls++ },
	}

	client.processMessage([]byte(`{"type":"Results","is_final":false,"speech_final":false,"channel":{"alternatives":[{"transcript":"  "}]}}`), options)
	client.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":""}]}}`), options)

	if calls != 0 {
		t.Fatalf("expected no updates for empty transcripts, got %d", calls)
	}
}
