package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	promptinadapter "quill/internal/modules/prompt/adapter/in"
	promptoutadapter "quill/internal/modules/prompt/adapter/out"
	promptout "quill/internal/modules/prompt/port/out"
	promptservice "quill/internal/modules/prompt/service"
	promptusecase "quill/internal/modules/prompt/usecase"
	sessioninadapter "quill/internal/modules/session/adapter/in"
	sessionoutadapter "quill/internal/modules/session/adapter/out"
	sessiondomain "quill/internal/modules/session/domain"
	sessionout "quill/internal/modules/session/port/out"
	sessionservice "quill/internal/modules/session/service"
	sessionusecase "quill/internal/modules/session/usecase"
	"quill/internal/platform/clock"
	"quill/internal/platform/config"
	"quill/internal/platform/id"
	"quill/internal/platform/loop"
	uiapp "quill/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *zap.Logger
	SessionCLI sessioninadapter.CLIHandler
	PromptCLI  promptinadapter.CLIHandler

	closers []func() error
}

// New wires both modules. dispatcher is the loop every session call and
// callback runs on.
func New(cfg config.Config, logger *zap.Logger, dispatcher loop.Poster) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}
	app := &App{Config: cfg, Logger: logger}

	vault := promptoutadapter.NewVaultPromptStore(cfg.Prompts.Dir, logger.Named("prompts"))
	var (
		userStore  promptout.PromptStore  = vault
		userWriter promptout.PromptWriter = vault
	)
	if cfg.Prompts.Watch {
		watched, err := promptoutadapter.NewWatchedPromptStore(vault, cfg.Prompts.Dir, logger.Named("prompts"))
		if err != nil {
			return nil, fmt.Errorf("watch prompts: %w", err)
		}
		userStore, userWriter = watched, watched
		app.closers = append(app.closers, watched.Close)
	}
	promptUC := promptusecase.NewInteractor(promptservice.NewPromptService(
		nil,
		userWriter,
		promptoutadapter.NewBuiltinPromptStore(),
		userStore,
	))

	var device sessionout.CaptureDevice = sessionoutadapter.DisabledCapture{}
	if cfg.Capture.Enabled {
		device = sessionoutadapter.NewDeviceCapture(cfg.Capture.Device, ids, logger.Named("capture"))
	}
	settings := sessionservice.Settings{
		Duration: cfg.Session.Duration.Duration,
		Tick:     cfg.Session.Tick.Duration,
		Policy:   sessiondomain.Policy{SoftTarget: cfg.Session.SoftTarget, HardCap: cfg.Session.HardCap},
	}
	sessionLogger := logger.Named("session")
	sessionSvc, err := sessionservice.NewSessionService(
		clk,
		ids,
		dispatcher,
		loop.NewTickerScheduler(dispatcher),
		sessionservice.NewCaptureMediator(device, sessionLogger),
		sessionoutadapter.NewSystemClipboard(),
		settings,
		sessionLogger,
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("new session service: %w", err)
	}

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionusecase.NewInteractor(sessionSvc, promptUC))
	app.PromptCLI = promptinadapter.NewCLIHandler(promptUC)
	return app, nil
}

// Close stops background watchers. The session itself is closed by whoever
// drives the loop.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// DefaultDevicePattern matches the video nodes `quill devices` probes.
const DefaultDevicePattern = "/dev/video*"

// ProbeDevices reports which capture nodes could be opened right now.
func ProbeDevices(pattern string) ([]sessionoutadapter.DeviceStatus, error) {
	return sessionoutadapter.ProbeDevices(pattern)
}

// RunTUI runs the Bubble Tea program. poster must be the dispatcher the
// App was built with.
func RunTUI(app *App, poster *uiapp.ProgramPoster) error {
	model := uiapp.NewModel(app.SessionCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		_ = poster.Run(ctx, program)
	}()

	_, err := program.Run()
	cancel()
	<-relayDone
	// The program loop is gone, so this goroutine now owns the session.
	app.SessionCLI.Close(context.Background())
	return err
}
