package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// Side says who moves first in a round.
type Side string

const (
	SideHuman    Side = "human"
	SideComputer Side = "computer"
)

func (that Side) Other() Side {
	if that == SideHuman {
		return SideComputer
	}
	return SideHuman
}

type searchEngine interface {
	BestMove(ctx context.Context, board entity.Board, self, opponent entity.Mark) (int, error)
}

type GameManager struct {
	logger *slog.Logger
	engine searchEngine
}

func NewGameManager(logger *slog.Logger, engine searchEngine) *GameManager {
	return &GameManager{
		logger: logger,
		engine: engine,
	}
}

// NewRound creates an empty round where first decides which side makes the opening move.
func (that *GameManager) NewRound(human entity.Mark, first Side) (*entity.Round, error) {
	if !human.IsPlayer() {
		return nil, fmt.Errorf("%w: human mark %q", apperror.ErrInvalidMark, human.String())
	}

	firstMark := human
	if first == SideComputer {
		firstMark = human.Opponent()
	}

	round, err := entity.NewRound(uuid.NewString(), human, firstMark)
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	that.logger.Info("round started",
		"roundID", round.ID,
		"human", round.Human.String(),
		"computer", round.Computer.String(),
		"first", string(first),
	)

	return round, nil
}

func (that *GameManager) HumanTurn(_ context.Context, round *entity.Round, cell int) error {
	if err := round.MakeTurn(round.Human, cell); err != nil {
		return fmt.Errorf("failed to make human turn: %w", err)
	}

	that.logFinished(round)

	return nil
}

// ComputerTurn asks the engine for a move and plays it. It returns the chosen cell.
func (that *GameManager) ComputerTurn(ctx context.Context, round *entity.Round) (int, error) {
	if err := round.ConfirmOngoingState(); err != nil {
		return 0, err
	}

	if round.Turn != round.Computer {
		return 0, apperror.ErrNotYourTurn
	}

	cell, err := that.engine.BestMove(ctx, round.Board, round.Computer, round.Human)
	if err != nil {
		return 0, fmt.Errorf("failed to find best move: %w", err)
	}

	if err = round.MakeTurn(round.Computer, cell); err != nil {
		return 0, fmt.Errorf("failed to make computer turn: %w", err)
	}

	that.logger.Debug("computer moved", "roundID", round.ID, "cell", cell)
	that.logFinished(round)

	return cell, nil
}

func (that *GameManager) logFinished(round *entity.Round) {
	if !round.IsFinished() {
		return
	}

	log := that.logger.With("method", "logFinished", "roundID", round.ID)

	switch round.Winner {
	case round.Human:
		log.Info("round finished", "result", "human won")
	case round.Computer:
		log.Info("round finished", "result", "computer won")
	default:
		log.Info("round finished", "result", "draw")
	}
}
