package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/voxlink-dev/voicelink/core/speech"
)

const keepAliveInterval = 5 * time.Second

func (c *Client) Start(ctx context.Context, opts ...speech.Option) error {
	options := &speech.Options{EncodingInfo: defaultEncoding(c.capture)}
	for _, opt := range opts {
		opt(options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.connMu.Unlock()
		return speech.ErrAlreadyActive
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
	})
	if err != nil {
		c.connMu.Unlock()
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	c.conn = conn
	c.aborted = false
	c.accumulatedTranscript = ""
	c.unendedSegment = false
	c.connMu.Unlock()

	if c.capture != nil {
		if err := c.capture.StartCapture(ctx, func(audio []byte) {
			_ = c.SendAudio(audio)
		}); err != nil {
			c.Abort()
			return fmt.Errorf("failed to start audio capture: %w", err)
		}
	}

	go c.readAndProcessMessages(ctx, conn, *options)

	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, err
}

func (c *Client) sendKeepAlive() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	if err := c.conn.WriteJSON(
		struct {
			Type string `json:"type"`
		}{
			Type: "KeepAlive",
		}); err != nil {
		log.Println("Failed to write keep-alive to deepgram socket", "error", err)
	}
}

func (c *Client) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options speech.Options) {
	keepAliveCtx, keepAliveCancel := context.WithCancel(ctx)
	defer keepAliveCancel()

	go c.keepAlive(keepAliveCtx)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			aborted := c.aborted
			c.aborted = false
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()

			if c.capture != nil {
				_ = c.capture.StopCapture()
			}

			if aborted {
				if options.ErrorCallback != nil {
					options.ErrorCallback(speech.Error{Code: speech.ErrorAborted, Message: "session aborted"})
				}
			} else if err.Error() != "websocket: close 1000 (normal)" {
				if options.ErrorCallback != nil {
					options.ErrorCallback(speech.Error{Code: speech.ErrorOther, Message: err.Error()})
				}
			}

			if options.EndCallback != nil {
				options.EndCallback()
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			c.processMessage(msg, options)
		}
	}
}

func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sendKeepAlive()
		}
	}
}

func (c *Client) processMessage(msg []byte, options speech.Options) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	err := json.Unmarshal(msg, &parsedMsg)
	if err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}
		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)

		if msgResp.IsFinal {
			if len(transcript) > 0 {
				c.accumulatedTranscript += " " + transcript
			}
			if msgResp.SpeechFinal {
				c.finalizeUtterance(options)
			}
			return
		}

		if len(transcript) > 0 {
			c.emitResults(options, []speech.Result{{
				Text:  strings.TrimSpace(c.accumulatedTranscript + " " + transcript),
				Final: false,
			}})
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		if c.unendedSegment {
			c.finalizeUtterance(options)
		}

	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		c.unendedSegment = true
	}
}

func (c *Client) finalizeUtterance(options speech.Options) {
	c.unendedSegment = false
	fullTranscript := strings.TrimSpace(c.accumulatedTranscript)
	c.accumulatedTranscript = ""
	if len(fullTranscript) > 0 {
		c.emitResults(options, []speech.Result{{Text: fullTranscript, Final: true}})
	}
}

func (c *Client) emitResults(options speech.Options, results []speech.Result) {
	if options.ResultsCallback != nil {
		options.ResultsCallback(results)
	}
}
