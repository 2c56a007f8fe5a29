package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lecamarade/wtvoice/pkg/chat"
	"github.com/lecamarade/wtvoice/pkg/inject"
	"github.com/lecamarade/wtvoice/pkg/joystick"
	"github.com/lecamarade/wtvoice/pkg/transcribe"
)

func speakCmd() *cobra.Command {
	var engineName string
	cmd := &cobra.Command{
		Use:   "speak [text...]",
		Short: "Speak text through the configured engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.Reader.Engine = engineName
			}
			engine, err := buildEngine(cfg.Reader)
			if err != nil {
				return err
			}
			defer engine.Close()
			return engine.Speak(cmd.Context(), strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "engine override (offline or edge)")
	return cmd
}

func voicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List voices for the configured engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg.Reader)
			if err != nil {
				return err
			}
			defer engine.Close()
			for _, v := range engine.Voices() {
				fmt.Printf("%-40s %-10s %s\n", v.ID, v.Language, v.Name)
			}
			return nil
		},
	}
}

func injectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inject [text...]",
		Short: "Type text into the focused window (tests the chat binding)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			injector := inject.NewInjector(
				inject.WithChatKey(cfg.Injection.ChatKey),
				inject.WithDelay(cfg.Injection.Delay()),
			)
			return injector.SendText(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List joystick devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices := joystick.Devices()
			if len(devices) == 0 {
				fmt.Println("no joystick devices found")
				return nil
			}
			for _, d := range devices {
				fmt.Println(d)
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the game server, whisper server and injection tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			poller := chat.NewPoller(cfg.Game.BaseURL, nil)
			whisper := transcribe.NewClient(cfg.Whisper.ServerURL)
			injector := inject.NewInjector()

			fmt.Printf("game server   %s: %s\n", cfg.Game.BaseURL, upDown(poller.IsReachable(ctx)))
			fmt.Printf("whisper       %s: %s\n", cfg.Whisper.ServerURL, upDown(whisper.IsReachable(ctx)))
			fmt.Printf("xdotool       %s\n", upDown(injector.IsAvailable()))
			fmt.Printf("joysticks     %s\n", strings.Join(joystick.Devices(), " "))
			return nil
		},
	}
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
