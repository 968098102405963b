package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/app"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/flip"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

var configPath string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "slack-tableflip",
		Short:        "Slack /flip slash command service",
		SilenceUsage: true,
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd(), renderCmd(), stylesCmd(), infoCmd())
	return rootCmd
}

// serveCmd runs the HTTP server (and Socket Mode when enabled)
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve slash commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(configPath)
			if err != nil {
				return fmt.Errorf("starting: %w", err)
			}

			runErr := application.Start(ctx)
			if err := application.Shutdown(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}

// renderCmd prints what /flip would answer for the given text
func renderCmd() *cobra.Command {
	var maxText int

	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render a flip locally",
		Long: `Render prints the flip /flip would post for the given text.

A leading style name renders that style; no text renders the classic flip.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), strings.Join(args, " "), maxText)
		},
	}
	cmd.Flags().IntVar(&maxText, "max-length", flip.DefaultMaxTextLength, "Maximum text length in characters")
	return cmd
}

func runRender(out io.Writer, text string, maxText int) error {
	valid, err := entity.SlashCommand{
		Command:   "/flip",
		Text:      text,
		TeamID:    "cli",
		UserID:    "cli",
		ChannelID: "cli",
	}.Validate()
	if err != nil {
		return err
	}

	rendered, err := flip.NewRenderer(maxText).Render(valid)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, rendered.Text)
	return err
}

// stylesCmd lists every style with its art
func stylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List flip styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStyles(cmd.OutOrStdout())
		},
	}
}

func runStyles(out io.Writer) error {
	width := 0
	for _, name := range flip.StyleNames() {
		width = max(width, len(name))
	}
	for _, s := range flip.Styles() {
		if _, err := fmt.Fprintf(out, "%-*s  %s\n", width, s.Name, s.Art); err != nil {
			return err
		}
	}
	return nil
}

// infoCmd prints project information from the config
func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print project information as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runInfo(cmd.OutOrStdout(), cfg.App)
		},
	}
}

func runInfo(out io.Writer, cfg config.AppConfig) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(handler.NewProjectInfo(cfg, entity.AllowedCommands()))
}
