package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/eventlink-api/internal/service"
	"github.com/noah-isme/eventlink-api/pkg/config"
	"github.com/noah-isme/eventlink-api/pkg/export"
	"github.com/noah-isme/eventlink-api/pkg/logger"
	"github.com/noah-isme/eventlink-api/pkg/openai"
)

var (
	errBlankText     = errors.New("please provide text to parse into a calendar event")
	errMissingAPIKey = errors.New("missing API key: set OPENAI_API_KEY or pass --api-key")
)

type completerFactory func(cfg config.OpenAIConfig) service.StructuredCompleter

func main() {
	_ = godotenv.Load()

	app := newApp(os.Stdin, os.Stdout, func(cfg config.OpenAIConfig) service.StructuredCompleter {
		return openai.NewClient(cfg)
	})
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer, newCompleter completerFactory) *cli.App {
	return &cli.App{
		Name:      "eventlink",
		Usage:     "Turn free-text event descriptions into Google Calendar links.",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			parseCommand(stdin, stdout, newCompleter),
		},
	}
}

func parseCommand(stdin io.Reader, stdout io.Writer, newCompleter completerFactory) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract an event from TEXT (or stdin) and print its calendar link.",
		ArgsUsage: "[TEXT...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-key", Usage: "OpenAI API key (defaults to OPENAI_API_KEY)"},
			&cli.StringFlag{Name: "model", Usage: "Model override"},
			&cli.StringFlag{Name: "ics", Usage: "Also write the event as an iCalendar file to `FILE`"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log extraction details to stderr"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c.Args().Slice(), stdin)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if key := strings.TrimSpace(c.String("api-key")); key != "" {
				cfg.OpenAI.APIKey = key
			}
			if model := strings.TrimSpace(c.String("model")); model != "" {
				cfg.OpenAI.Model = model
			}
			if cfg.OpenAI.APIKey == "" {
				return errMissingAPIKey
			}

			logr := zap.NewNop()
			if c.Bool("verbose") {
				cfg.Log.Format = "console"
				cfg.Log.Level = "debug"
				if logr, err = logger.New(cfg); err != nil {
					return err
				}
				defer logr.Sync() //nolint:errcheck
			}

			extractor := service.NewEventExtractor(newCompleter(cfg.OpenAI), nil, logr)
			fields, err := extractor.Extract(c.Context, text, cfg.OpenAI.APIKey)
			if err != nil {
				return fmt.Errorf("failed to create calendar event: %w", err)
			}
			link, err := service.BuildCalendarLink(fields)
			if err != nil {
				return fmt.Errorf("failed to create calendar event: %w", err)
			}

			if path := c.String("ics"); path != "" {
				start, end, err := service.EventWindow(fields)
				if err != nil {
					return fmt.Errorf("failed to create calendar event: %w", err)
				}
				data, err := export.NewICSExporter().Render(export.Event{
					Title:    fields.Title,
					Start:    start,
					End:      end,
					TimeZone: deref(fields.TimeZone),
					Location: deref(fields.Location),
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write ics file: %w", err)
				}
			}
			fmt.Fprintln(stdout, link)
			return nil
		},
	}
}

func readText(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" && stdin != nil {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errBlankText
	}
	return text, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
