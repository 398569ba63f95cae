package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quill/internal/bootstrap"
	promptdto "quill/internal/modules/prompt/dto"
	"quill/internal/platform/config"
	"quill/internal/platform/logging"
	"quill/internal/platform/loop"
	uiapp "quill/internal/ui/app"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "quill",
		Short:         "Timed writing practice in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "config file (TOML, optional)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	tui := newTUICmd(opts)
	root.RunE = tui.RunE
	root.Args = cobra.NoArgs
	root.AddCommand(tui)
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newPromptsCmd(opts))
	root.AddCommand(newMetricsCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newDevicesCmd())
	return root
}

func loadConfig(opts *rootOptions) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath, true)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log, opts.verbose)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// loadApp wires the modules onto dispatcher. Commands that never start a
// session pass a loop that is never run.
func loadApp(opts *rootOptions, dispatcher loop.Poster) (*bootstrap.App, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.New(cfg, logger, dispatcher)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}

func closeApp(app *bootstrap.App) {
	_ = app.Close()
	_ = app.Logger.Sync()
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the practice terminal UI (the default command)",
		RunE: func(_ *cobra.Command, _ []string) error {
			poster := uiapp.NewProgramPoster()
			app, err := loadApp(opts, poster)
			if err != nil {
				return err
			}
			defer closeApp(app)
			app.Logger.Info("tui starting", zap.String("config", app.Config.Path))
			return bootstrap.RunTUI(app, poster)
		},
	}
}

func newPromptsCmd(opts *rootOptions) *cobra.Command {
	prompts := &cobra.Command{Use: "prompts", Short: "Browse and add practice prompts"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available prompts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, loop.New())
			if err != nil {
				return err
			}
			defer closeApp(app)
			items, err := app.PromptCLI.List(context.Background())
			if err != nil {
				return err
			}
			for _, p := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-8s %s\n", p.ID, p.Origin, p.Title)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, loop.New())
			if err != nil {
				return err
			}
			defer closeApp(app)
			p, err := app.PromptCLI.Show(context.Background(), args[0])
			if err != nil {
				return err
			}
			printPrompt(cmd.OutOrStdout(), p)
			return nil
		},
	}

	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random prompt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, loop.New())
			if err != nil {
				return err
			}
			defer closeApp(app)
			p, err := app.PromptCLI.Random(context.Background())
			if err != nil {
				return err
			}
			printPrompt(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var title string
	var tags []string
	addCmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Save a prompt to the prompts directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, loop.New())
			if err != nil {
				return err
			}
			defer closeApp(app)
			p, err := app.PromptCLI.Add(context.Background(), promptdto.AddPromptInput{
				Title: title,
				Body:  strings.Join(args, " "),
				Tags:  tags,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s note=%s\n", p.ID, p.Path)
			return nil
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "prompt title (optional)")
	addCmd.Flags().StringSliceVar(&tags, "tags", nil, "tags")

	prompts.AddCommand(listCmd, showCmd, randomCmd, addCmd)
	return prompts
}

func printPrompt(w io.Writer, p promptdto.PromptOutput) {
	_, _ = fmt.Fprintf(w, "%s (%s, %s)\n\n%s\n", p.Title, p.ID, p.Origin, p.Body)
	if len(p.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "\ntags: %s\n", strings.Join(p.Tags, ", "))
	}
}

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics [file]",
		Short: "Count words and characters against the session limits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) == 1 && args[0] != "-" {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read text: %w", err)
			}
			app, err := loadApp(opts, loop.New())
			if err != nil {
				return err
			}
			defer closeApp(app)
			m := app.SessionCLI.Measure(context.Background(), string(raw))
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "words:      %d / %d\n", m.Words, m.SoftTarget)
			_, _ = fmt.Fprintf(out, "characters: %d\n", m.Characters)
			if m.OverTarget {
				_, _ = fmt.Fprintf(out, "over the %d-word target\n", m.SoftTarget)
			}
			if m.Clamped {
				_, _ = fmt.Fprintf(out, "a session would stop at %d words (hard cap %d)\n", m.ClampedWords, m.HardCap)
			}
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Path != "" {
				_, _ = fmt.Fprintf(out, "# loaded from %s\n", cfg.Path)
			} else {
				_, _ = fmt.Fprintln(out, "# defaults (no config file found)")
			}
			return toml.NewEncoder(out).Encode(cfg)
		},
	}
}

func newDevicesCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Probe local video capture devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := bootstrap.ProbeDevices(pattern)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no capture devices found")
				return nil
			}
			for _, d := range devices {
				mark := "no "
				if d.Usable {
					mark = "yes"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-16s usable=%s %s\n", d.Path, mark, d.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", bootstrap.DefaultDevicePattern, "device glob")
	return cmd
}
