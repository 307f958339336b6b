package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

type uGame interface {
	NewRound(human entity.Mark, first usecase.Side) (*entity.Round, error)
	HumanTurn(ctx context.Context, round *entity.Round, cell int) error
	ComputerTurn(ctx context.Context, round *entity.Round) (int, error)
}

// Console plays rounds against the computer over a line-based text stream.
type Console struct {
	logger *slog.Logger
	uGame  uGame

	in  *bufio.Scanner
	out io.Writer

	// humanMark skips the symbol prompt when set.
	humanMark entity.Mark
}

func New(logger *slog.Logger, uGame uGame, in io.Reader, out io.Writer, humanMark entity.Mark) *Console {
	return &Console{
		logger:    logger,
		uGame:     uGame,
		in:        bufio.NewScanner(in),
		out:       out,
		humanMark: humanMark,
	}
}

// Run plays until the player declines another game, quits or input ends.
func (that *Console) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	that.println("Tic-Tac-Toe vs Unbeatable AI (Minimax)")
	that.println("Board positions:")
	that.printBoard(entity.NewBoard())

	human, err := that.chooseMark(ctx)
	if errors.Is(err, apperror.ErrQuit) {
		that.println("Exiting game.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to choose mark: %w", err)
	}

	first := usecase.SideComputer
	if human == entity.X {
		first = usecase.SideHuman
	}

	that.printf("You are %s. AI is %s. %s goes first.\n", human, human.Opponent(), sideName(first))

	for {
		err = that.playRound(ctx, human, first)
		if errors.Is(err, apperror.ErrQuit) {
			that.println("Exiting game.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to play round: %w", err)
		}

		again, err := that.ask(ctx, "Play again? (y/n): ")
		if err != nil && !errors.Is(err, apperror.ErrQuit) {
			return err
		}

		if again != "y" && again != "yes" {
			that.println("Thanks for playing.")
			return nil
		}

		answer, err := that.ask(ctx, "Who goes first next game? (you/ai/auto) [auto]: ")
		if errors.Is(err, apperror.ErrQuit) {
			that.println("Thanks for playing.")
			return nil
		}
		if err != nil {
			return err
		}

		switch answer {
		case "you":
			first = usecase.SideHuman
		case "ai":
			first = usecase.SideComputer
		default:
			first = first.Other()
		}

		log.Debug("next round", "first", string(first))
	}
}

func (that *Console) chooseMark(ctx context.Context) (entity.Mark, error) {
	if that.humanMark.IsPlayer() {
		return that.humanMark, nil
	}

	for {
		raw, err := that.ask(ctx, "Choose your symbol (X/O). X goes first: ")
		if err != nil {
			return entity.Empty, err
		}

		if raw == "" {
			return entity.X, nil
		}

		mark, err := entity.ParseMark(raw)
		if err == nil {
			return mark, nil
		}

		that.println("Please type X or O.")
	}
}

func (that *Console) playRound(ctx context.Context, human entity.Mark, first usecase.Side) error {
	round, err := that.uGame.NewRound(human, first)
	if err != nil {
		return fmt.Errorf("failed to start round: %w", err)
	}

	for !round.IsFinished() {
		that.printBoard(round.Board)

		if round.IsHumanTurn() {
			cell, err := that.readMove(ctx, round.Board)
			if err != nil {
				return err
			}

			if err = that.uGame.HumanTurn(ctx, round, cell); err != nil {
				return fmt.Errorf("failed to play human turn: %w", err)
			}

			continue
		}

		that.println("AI is thinking...")
		if _, err = that.uGame.ComputerTurn(ctx, round); err != nil {
			return fmt.Errorf("failed to play computer turn: %w", err)
		}
	}

	that.printBoard(round.Board)

	switch round.Winner {
	case round.Human:
		that.println("You win!")
	case round.Computer:
		that.println("AI wins. Better luck next time.")
	default:
		that.println("It's a draw.")
	}

	return nil
}

// readMove keeps prompting until the player names a free cell; it never returns an unplayable cell.
func (that *Console) readMove(ctx context.Context, board entity.Board) (int, error) {
	for {
		raw, err := that.ask(ctx, "Enter your move (1-9): ")
		if err != nil {
			return 0, err
		}

		switch raw {
		case "q", "quit", "exit":
			return 0, apperror.ErrQuit
		}

		pos, ok := parseDigits(raw)
		if !ok {
			that.println("Please enter a number between 1 and 9.")
			continue
		}

		cell := pos - 1
		if cell < 0 || cell >= entity.BoardSize {
			that.println("Number must be between 1 and 9.")
			continue
		}

		if board[cell] != entity.Empty {
			that.println("That cell is already taken. Choose another.")
			continue
		}

		return cell, nil
	}
}

// ask prints a prompt and returns the trimmed, lower-cased answer.
// End of input is reported as ErrQuit.
func (that *Console) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context done: %w", err)
	}

	that.printf("%s", prompt)

	if !that.in.Scan() {
		if err := that.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", apperror.ErrQuit
	}

	return strings.ToLower(strings.TrimSpace(that.in.Text())), nil
}

func (that *Console) printBoard(board entity.Board) {
	that.printf("\n%s\n", board)
}

func (that *Console) println(line string) {
	that.printf("%s\n", line)
}

func (that *Console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

func sideName(side usecase.Side) string {
	if side == usecase.SideHuman {
		return "You"
	}
	return "AI"
}

// parseDigits accepts only plain decimal digits, so signs and spaces are rejected.
// Numbers too large for an int are reported as out of range.
func parseDigits(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}

	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1, true
	}

	return n, true
}
