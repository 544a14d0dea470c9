// voicelink is a terminal client for talking to a room-hosted
// conversational agent: it joins the room, pipes microphone speech through
// the recognizer, exchanges text with the agent, plays the agent's audio
// track, and keeps the agent's instruction string in sync.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	session "github.com/voxlink-dev/voicelink/core"
	"github.com/voxlink-dev/voicelink/core/audio/miniaudio"
	"github.com/voxlink-dev/voicelink/core/audio/portaudio"
	"github.com/voxlink-dev/voicelink/core/room"
	"github.com/voxlink-dev/voicelink/core/room/wsroom"
	"github.com/voxlink-dev/voicelink/core/speech"
	"github.com/voxlink-dev/voicelink/core/speech/deepgram"
	"github.com/voxlink-dev/voicelink/core/token"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "voicelink",
		Short:        "Talk to a room-hosted conversational agent from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "voicelink.yaml", "path to the config file")

	return cmd
}

func run(cfg config) error {
	tokens := token.NewClient(cfg.Server.URL)

	var roomOpts []wsroom.ClientOption
	var connectOpts []session.ConnectOption
	var engine speech.Engine

	switch cfg.Audio.Backend {
	case "miniaudio":
		audioClient, err := miniaudio.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize audio: %w", err)
		}
		defer audioClient.Close()

		roomOpts = append(roomOpts, wsroom.WithTrackAudioHandler(func(frame []byte) {
			_ = audioClient.SendAudio(frame)
		}))
		// Playback follows the agent's audio track: open the device on
		// subscribe, drain and close it on unsubscribe.
		connectOpts = append(connectOpts, session.WithAgentTrackCallback(
			func(_ string, track room.Track, subscribed bool) {
				if track.Kind != room.TrackAudio {
					return
				}
				if subscribed {
					_ = audioClient.StartPlayback()
				} else {
					_ = audioClient.StopPlayback()
					audioClient.ClearBuffer()
				}
			}))

		if cfg.Speech.Engine == "deepgram" {
			engine = deepgram.NewClient(deepgram.WithCapture(audioClient))
		}

	case "portaudio":
		audioClient, err := portaudio.NewClient(cfg.Audio.BufferSize)
		if err != nil {
			return fmt.Errorf("failed to initialize audio: %w", err)
		}
		defer audioClient.Close()

		if cfg.Speech.Engine == "deepgram" {
			engine = deepgram.NewClient(deepgram.WithCapture(audioClient))
		}

	case "none":
		// Text-only client: no capture, no playback.
	}

	sessionOpts := []session.SessionOption{
		session.WithRoomClient(wsroom.NewClient(roomOpts...)),
		session.WithTokenClient(tokens),
	}
	if engine != nil {
		sessionOpts = append(sessionOpts, session.WithSpeechEngine(engine))
	}

	sess := session.New(sessionOpts...)

	model := newUIModel(sess, tokens, connectOpts...)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}

	sess.Disconnect()
	return nil
}
