package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sessioninadapter "quill/internal/modules/session/adapter/in"
	sessiondto "quill/internal/modules/session/dto"
	apperrors "quill/internal/platform/errors"
	"quill/internal/platform/loop"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		promptText  string
		promptID    string
		submitOnEOF bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a practice session on stdin without the terminal UI",
		Long: "Reads the response from stdin line by line. The session ends when time runs out,\n" +
			"on interrupt, or at end of input when --submit-on-eof is set. The stored response\n" +
			"is printed to stdout and the summary to stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := loop.New()
			app, err := loadApp(opts, l)
			if err != nil {
				return err
			}
			defer closeApp(app)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			input := sessiondto.StartInput{Mode: sessiondto.PromptModeRandom}
			switch {
			case promptText != "":
				input = sessiondto.StartInput{Mode: sessiondto.PromptModeCustom, Prompt: promptText}
			case promptID != "":
				input = sessiondto.StartInput{Mode: sessiondto.PromptModeByID, PromptID: promptID}
			}
			r := &headlessRun{
				session:     app.SessionCLI,
				loop:        l,
				logger:      app.Logger.Named("run"),
				input:       input,
				submitOnEOF: submitOnEOF,
				in:          cmd.InOrStdin(),
				out:         cmd.OutOrStdout(),
				errOut:      cmd.ErrOrStderr(),
			}
			return r.run(ctx)
		},
	}
	cmd.Flags().StringVar(&promptText, "prompt", "", "use this text as the prompt")
	cmd.Flags().StringVar(&promptID, "id", "", "use the prompt with this id")
	cmd.Flags().BoolVar(&submitOnEOF, "submit-on-eof", true, "submit when stdin is exhausted")
	return cmd
}

// headlessRun drives one session from a line-oriented reader. Every field
// below the writers is owned by the loop.
type headlessRun struct {
	session     sessioninadapter.CLIHandler
	loop        *loop.Loop
	logger      *zap.Logger
	input       sessiondto.StartInput
	submitOnEOF bool
	in          io.Reader
	out         io.Writer
	errOut      io.Writer

	cancel   context.CancelFunc
	startErr error
	text     string
	eof      bool
	shown    bool
	lastMin  int
	final    sessiondto.Snapshot
}

func (r *headlessRun) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	r.cancel = cancel
	r.lastMin = -1

	r.loop.Post(func() {
		r.session.Subscribe(r.onUpdate)
		if _, err := r.session.Start(ctx, r.input); err != nil {
			r.startErr = err
			cancel()
		}
	})
	go r.readInput()

	if err := r.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	// The loop has stopped, so this goroutine owns the session from here.
	defer r.session.Close(context.Background())

	if r.startErr != nil {
		if errors.Is(r.startErr, apperrors.ErrEmptyPrompt) {
			return fmt.Errorf("please enter a prompt to continue: %w", r.startErr)
		}
		return r.startErr
	}
	if !r.final.Locked {
		_, _ = fmt.Fprintln(r.errOut, "interrupted; nothing was submitted")
		return parent.Err()
	}
	_, _ = fmt.Fprintln(r.out, r.final.Response)
	_, _ = fmt.Fprintf(r.errOut, "\n%s\nwords %d  characters %d  time used %s\n",
		endLine(r.final), r.final.Words, r.final.Characters, r.final.TimeUsedDisplay)
	return nil
}

func (r *headlessRun) readInput() {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var sb strings.Builder
	for scanner.Scan() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(scanner.Text())
		text := sb.String()
		r.loop.Post(func() {
			r.text = text
			r.apply()
		})
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("read response", zap.Error(err))
	}
	r.loop.Post(func() {
		r.eof = true
		r.maybeSubmit()
	})
}

func (r *headlessRun) onUpdate(snap sessiondto.Snapshot) {
	switch {
	case snap.Locked:
		r.final = snap
		r.cancel()
	case snap.Screen == "practice":
		if !r.shown {
			r.shown = true
			if snap.Advisory != "" {
				_, _ = fmt.Fprintln(r.errOut, snap.Advisory)
			}
			_, _ = fmt.Fprintf(r.errOut, "%s\n\n%s\n\n%s remaining, up to %d words\n",
				snap.PromptTitle, snap.Prompt, snap.RemainingDisplay, snap.SoftTarget)
			r.apply()
			r.maybeSubmit()
		}
		if mins := snap.SecondsRemaining / 60; snap.SecondsRemaining%60 == 0 && mins != r.lastMin && mins > 0 {
			r.lastMin = mins
			_, _ = fmt.Fprintf(r.errOut, "%s remaining\n", snap.RemainingDisplay)
		}
	}
}

func (r *headlessRun) apply() {
	snap := r.session.Snapshot(context.Background())
	if snap.Screen != "practice" || snap.Locked || r.text == snap.Response {
		return
	}
	stored, err := r.session.Edit(context.Background(), r.text)
	if err != nil {
		r.logger.Debug("edit rejected", zap.Error(err))
		return
	}
	if stored.Response != r.text {
		r.logger.Info("response clamped", zap.Int("words", stored.Words))
	}
}

func (r *headlessRun) maybeSubmit() {
	if !r.eof || !r.submitOnEOF {
		return
	}
	snap := r.session.Snapshot(context.Background())
	if !snap.Running {
		return
	}
	if _, err := r.session.Submit(context.Background()); err != nil {
		r.logger.Warn("submit", zap.Error(err))
	}
}

func endLine(snap sessiondto.Snapshot) string {
	if snap.EndReason == "timeup" {
		return "Time’s up. Response locked."
	}
	return "Submitted. Response locked."
}
