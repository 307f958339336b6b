package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/config"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-minimax/transport/console"
)

// RunApp - runs the application on the process stdin and stdout.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	return Run(ctx, logger, conf, os.Stdin, os.Stdout)
}

// Run wires the engine, the game manager and the console and plays until the console stops.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")

	humanMark := entity.Empty
	if conf.Game.HumanMark != "" {
		mark, err := entity.ParseMark(conf.Game.HumanMark)
		if err != nil {
			return fmt.Errorf("invalid game.human-mark: %w", err)
		}
		humanMark = mark
	}

	engine := tictactoe.NewEngine(logger.With("component", "engine"), conf.Search.ParallelRoot)
	gameManager := usecase.NewGameManager(logger.With("component", "game"), engine)
	gameConsole := console.New(logger.With("component", "console"), gameManager, in, out, humanMark)

	// run console loop
	consoleErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting console game", "parallelRoot", conf.Search.ParallelRoot)
		consoleErrCh <- gameConsole.Run(ctx)
	}()

	select {
	case err := <-consoleErrCh:
		if err != nil {
			return fmt.Errorf("console error: %w", err)
		}
		log.Info("Console game finished")
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
