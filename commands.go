package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"tutor/internal/config"
	"tutor/internal/dispatch"
	"tutor/internal/models"
	"tutor/internal/modes"
	"tutor/internal/provider"
	"tutor/internal/ui"
)

// NewRootCommand returns the top-level CLI command. Without a subcommand it
// starts the chat TUI.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "tutor",
		Usage: "English grammar & learning assistant backed by hosted open models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file holding HF_TOKEN",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Learning mode to start in (see `tutor modes`)",
				Sources: cli.EnvVars("TUTOR_MODE"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			NewAskCommand(),
			NewModesCommand(),
		},
	}
}

func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message and print the reply",
		ArgsUsage: "<message>",
		Action:    runAsk,
	}
}

func NewModesCommand() *cli.Command {
	return &cli.Command{
		Name:  "modes",
		Usage: "List the available learning modes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "prompts",
				Usage: "Also print each mode's system prompt",
			},
		},
		Action: runModes,
	}
}

type app struct {
	cfg        *config.Config
	dispatcher *dispatch.Dispatcher
	mode       models.Mode
	closeLog   func()
}

// setup loads configuration and builds the shared client and dispatcher.
// When tui is set, logs go to a file because the TUI owns the terminal.
func setup(cmd *cli.Command, tui bool) (*app, error) {
	if err := config.LoadDotenv(cmd.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if name := cmd.String("mode"); name != "" {
		cfg.DefaultMode = name
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cmd.Bool("debug"), tui, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	client := provider.New(cfg.Token, cfg.BaseURL)
	d := dispatch.New(client,
		dispatch.WithCandidates(cfg.Models),
		dispatch.WithLogger(logger),
	)
	slog.Debug("dispatcher ready", "base_url", cfg.BaseURL, "candidates", len(cfg.Models), "mode", cfg.DefaultMode)

	return &app{
		cfg:        cfg,
		dispatcher: d,
		mode:       modes.MustLookup(cfg.DefaultMode),
		closeLog:   closeLog,
	}, nil
}

func newLogger(debug, tui bool, logFile string) (*slog.Logger, func(), error) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if !tui {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}
	f, err := tea.LogToFile(logFile, "tutor")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
}

func runTUI(_ context.Context, cmd *cli.Command) error {
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	p := ui.NewProgram(rt.dispatcher, rt.mode)
	finalModel, err := p.Run()
	if m, ok := finalModel.(*ui.Model); ok && m.DB != nil {
		_ = m.DB.Close()
	}
	return err
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("usage: tutor ask <message>")
	}

	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.closeLog()

	_, err = fmt.Fprintln(cmd.Root().Writer, rt.dispatcher.Dispatch(ctx, message, rt.mode.Name))
	return err
}

func runModes(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer
	for _, mode := range modes.All() {
		if _, err := fmt.Fprintln(w, mode.Label()); err != nil {
			return err
		}
		if cmd.Bool("prompts") {
			if _, err := fmt.Fprintf(w, "    %s\n", mode.SystemPrompt); err != nil {
				return err
			}
		}
	}
	return nil
}
