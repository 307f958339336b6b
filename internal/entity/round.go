package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

// Round is a single game between the human and the computer.
type Round struct {
	ID       string
	Board    Board
	Human    Mark
	Computer Mark
	Turn     Mark
	Status   string
	Winner   Mark
}

// NewRound starts an empty round. first is the mark that moves first.
func NewRound(id string, human, first Mark) (*Round, error) {
	if !human.IsPlayer() {
		return nil, fmt.Errorf("%w: human mark %q", apperror.ErrInvalidMark, human.String())
	}

	if !first.IsPlayer() {
		return nil, fmt.Errorf("%w: first mark %q", apperror.ErrInvalidMark, first.String())
	}

	return &Round{
		ID:       id,
		Board:    NewBoard(),
		Human:    human,
		Computer: human.Opponent(),
		Turn:     first,
		Status:   StatusOngoing,
	}, nil
}

func (that *Round) MakeTurn(mark Mark, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if err := that.Board.ApplyMove(cell, mark); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.Turn = mark.Opponent()
	that.UpdateRoundState()

	return nil
}

func (that *Round) UpdateRoundState() {
	switch outcome := that.Board.Outcome(); outcome.Status {
	case Win:
		that.Winner = outcome.Winner
		that.Status = StatusFinished
		that.Turn = Empty
	case Draw:
		that.Winner = Empty
		that.Status = StatusFinished
		that.Turn = Empty
	default:
		that.Status = StatusOngoing
	}
}

func (that *Round) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Round) IsHumanTurn() bool {
	return that.Turn == that.Human
}

func (that *Round) ConfirmOngoingState() error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	return nil
}
