package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lecamarade/wtvoice/internal/config"
	"github.com/lecamarade/wtvoice/internal/log"
	"github.com/lecamarade/wtvoice/pkg/capture"
	"github.com/lecamarade/wtvoice/pkg/chat"
	"github.com/lecamarade/wtvoice/pkg/inject"
	"github.com/lecamarade/wtvoice/pkg/joystick"
	"github.com/lecamarade/wtvoice/pkg/ptt"
	"github.com/lecamarade/wtvoice/pkg/reader"
	"github.com/lecamarade/wtvoice/pkg/speech"
	"github.com/lecamarade/wtvoice/pkg/transcribe"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full voice bridge (push-to-talk and chat reader)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PTT.Button < 0 {
				return fmt.Errorf("ptt.button is not configured; press the desired button while running `wtvoice devices`")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			whisper := transcribe.NewClient(cfg.Whisper.ServerURL)
			injector := inject.NewInjector(
				inject.WithChatKey(cfg.Injection.ChatKey),
				inject.WithDelay(cfg.Injection.Delay()),
			)
			recorder := capture.NewRecorder(capture.WithDevice(cfg.PTT.AudioInput))

			machine := ptt.NewMachine(recorder, whisper, injector, ptt.Config{
				Language:  cfg.Whisper.Language,
				Translate: cfg.Whisper.Translate,
			})
			defer machine.Close()
			machine.SetObserver(func(s ptt.Status) {
				if s.State == ptt.StateSending {
					log.Info("sending to chat", "text", s.LastText)
				}
				if s.Err != nil {
					log.Warn("push-to-talk", "state", s.State, "error", s.Err)
				}
			})

			watcher := joystick.NewWatcher(cfg.PTT.Device, cfg.PTT.Button,
				machine.ButtonDown, machine.ButtonUp)

			reportHealth(ctx, cfg, whisper, injector)

			var wg sync.WaitGroup

			if cfg.Reader.Enabled {
				rd, engine, err := buildReader(cfg)
				if err != nil {
					return err
				}
				defer engine.Close()
				wg.Add(1)
				go func() {
					defer wg.Done()
					rd.Run(ctx)
				}()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = watcher.Run(ctx) // returns ctx.Err on shutdown
			}()

			log.Info("wtvoice running", "version", version,
				"device", cfg.PTT.Device, "button", cfg.PTT.Button,
				"reader", cfg.Reader.Enabled)
			<-ctx.Done()
			log.Info("shutting down")
			wg.Wait()
			return nil
		},
	}
}

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Run only the chat reader (no push-to-talk)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rd, engine, err := buildReader(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			log.Info("chat reader running", "url", cfg.Game.BaseURL,
				"engine", engine.Name(), "channels", cfg.Reader.Channels)
			rd.Run(ctx)
			return nil
		},
	}
}

// buildEngine constructs the configured speech engine with voice and
// rate applied.
func buildEngine(cfg config.ReaderConfig) (speech.Engine, error) {
	var engine speech.Engine
	switch cfg.Engine {
	case "edge":
		engine = speech.NewEdge()
	case "offline", "":
		engine = speech.NewOffline()
	default:
		return nil, fmt.Errorf("unknown speech engine %q (want offline or edge)", cfg.Engine)
	}
	if cfg.VoiceID != "" {
		engine.SetVoice(cfg.VoiceID)
	}
	if cfg.RatePercent > 0 {
		engine.SetRate(cfg.RatePercent)
	}
	return engine, nil
}

// buildReader assembles the chat-to-speech pipeline from config.
func buildReader(cfg *config.Config) (*reader.Reader, speech.Engine, error) {
	engine, err := buildEngine(cfg.Reader)
	if err != nil {
		return nil, nil, err
	}

	capacity := cfg.Reader.QueueCapacity
	if capacity <= 0 {
		capacity = speech.DefaultQueueCapacity
	}
	queue := speech.NewQueue(capacity)
	dispatcher := speech.NewDispatcher(queue, engine)
	filter := chat.NewFilter(cfg.Reader.OwnUsername, cfg.Reader.Channels, cfg.Reader.TruncateLength)

	rd := reader.New(cfg.Game.BaseURL, filter, queue, dispatcher,
		reader.WithPollerOptions(chat.WithInterval(cfg.Game.PollInterval())),
	)
	return rd, engine, nil
}

// reportHealth logs which external pieces are answering so a misstarted
// game or whisper server is visible immediately instead of as silence.
func reportHealth(ctx context.Context, cfg *config.Config, whisper *transcribe.Client, injector *inject.Injector) {
	if !whisper.IsReachable(ctx) {
		log.Warn("whisper server not reachable, transcription will fail",
			"url", cfg.Whisper.ServerURL)
	}
	if !injector.IsAvailable() {
		log.Warn("xdotool not found, chat injection will fail")
	}
}
