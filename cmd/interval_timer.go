package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/pflag"

	"github.com/lowaak/interval-timer/internal/config"
	"github.com/lowaak/interval-timer/internal/logging"
	"github.com/lowaak/interval-timer/internal/presets"
	"github.com/lowaak/interval-timer/internal/remote"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/trainer"
	"github.com/lowaak/interval-timer/internal/workout"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "interval-timer: %v\n", err)
		os.Exit(2)
	}

	if cfg.Headless {
		runHeadless(cfg)
		return
	}
	runTUI(cfg)
}

func runTUI(cfg *config.Config) {
	uiLogChan := logging.NewUILogChannel()
	logger, err := logging.New(cfg.Log, uiLogChan)
	must("create logger", err)
	defer logger.Close()
	logger.Println("Interval timer starting")
	if cfg.ConfigFile != "" {
		logger.Printf("Using config file %s", cfg.ConfigFile)
	}

	store, err := presets.New(cfg.PresetsDB)
	must("open preset store", err)
	defer store.Close()

	screen, err := tcell.NewScreen()
	must("create screen", err)
	app := tview.NewApplication().SetScreen(screen)

	uiModel := trainer.NewUIModel(logger.Logger, uiLogChan, filepath.Join(cfg.Dir, trainer.UIStateFileName))
	defer uiModel.Shutdown()

	timerManager := timer.NewTimerManager(uiModel, cfg.Workout, cfg.TickInterval, logger.Logger)
	cuePlayer := trainer.NewCuePlayer(screen, cfg.AudioEnabled, logger.Logger)
	unlistenCues := timerManager.ListenToCues(cuePlayer.Play)
	defer unlistenCues()

	uiController := trainer.NewUIController(trainer.NewUIControllerArg{
		Model:     uiModel,
		Timer:     timerManager,
		Presets:   store,
		CuePlayer: cuePlayer,
		ExportDir: filepath.Join(cfg.Dir, "exports"),
		Logger:    logger.Logger,
	})
	defer uiController.Shutdown()

	switch {
	case cfg.StructureFile != "":
		if err := uiController.ImportPresetFile(cfg.StructureFile); err != nil {
			logger.Printf("Could not import %s: %v", cfg.StructureFile, err)
		}
	case cfg.Preset != "":
		if err := uiController.LoadPreset(cfg.Preset); err != nil {
			logger.Printf("Could not load preset %s: %v", cfg.Preset, err)
		}
	default:
		uiController.RestoreLastPreset()
	}

	server := startRemote(cfg.RemoteAddr, timerManager, logger.Logger)
	if server != nil {
		defer server.Shutdown(context.Background())
	}

	cursesUIView := trainer.NewCursesUIView(logger.Logger, app, uiModel)
	baseView := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   cursesUIView,
		UIModel:      uiModel,
		UIController: uiController,
		Logger:       logger.Logger,
	})
	defer baseView.Shutdown()

	if err := baseView.Run(); err != nil {
		panic(err)
	}
	logger.Println("Interval timer exiting")
}

// runHeadless drives the timer without a screen, printing progress to stdout
// until the cap is reached or the process is interrupted
func runHeadless(cfg *config.Config) {
	logger, err := logging.New(cfg.Log, nil)
	must("create logger", err)
	defer logger.Close()

	store, err := presets.New(cfg.PresetsDB)
	must("open preset store", err)
	defer store.Close()

	structure, err := startupStructure(cfg, store)
	must("load workout", err)

	console := trainer.NewConsoleView(os.Stdout)
	timerManager := timer.NewTimerManager(console, structure, cfg.TickInterval, logger.Logger)
	defer timerManager.Shutdown()

	cuePlayer := trainer.NewCuePlayer(trainer.BellWriter{W: os.Stdout}, cfg.AudioEnabled, logger.Logger)
	defer cuePlayer.Shutdown()
	unlistenCues := timerManager.ListenToCues(cuePlayer.Play)
	defer unlistenCues()

	server := startRemote(cfg.RemoteAddr, timerManager, logger.Logger)
	if server != nil {
		defer server.Shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if timerManager.Plan().Block.IsEmpty() {
		fmt.Fprintln(os.Stderr, "interval-timer: workout has no intervals")
		return
	}
	timerManager.Start()

	select {
	case <-console.Done():
		logger.Println("Time cap reached")
	case <-ctx.Done():
		logger.Println("Interrupted")
	}
}

// startupStructure picks the structure named by --structure or --preset,
// falling back to the configured one
func startupStructure(cfg *config.Config, store *presets.Store) (workout.WorkoutStructure, error) {
	switch {
	case cfg.StructureFile != "":
		p, err := presets.LoadFile(cfg.StructureFile)
		if err != nil {
			return workout.WorkoutStructure{}, err
		}
		return p.Structure, nil
	case cfg.Preset != "":
		p, err := store.Get(cfg.Preset)
		if err != nil {
			return workout.WorkoutStructure{}, err
		}
		return p.Structure, nil
	default:
		return cfg.Workout, nil
	}
}

// startRemote serves the remote control API when addr is set. A listen
// failure is logged and the app carries on without it.
func startRemote(addr string, control remote.TimerControl, logger *log.Logger) *remote.Server {
	if addr == "" {
		return nil
	}
	server := remote.New(control, logger)
	if err := server.Start(addr); err != nil {
		logger.Printf("Remote control disabled: %v", err)
		return nil
	}
	return server
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + err.Error())
	}
}
