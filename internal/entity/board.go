package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

// BoardSize is the number of cells on a 3x3 board.
const BoardSize = 9

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

// Status describes where a board stands in the game.
type Status uint8

const (
	InProgress Status = iota
	Win
	Draw
)

// WinCombos lists the winning triples: rows, then columns, then diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid. It is a value type: copying it copies the game state.
type Board [BoardSize]Mark

// Outcome is the result of inspecting a board. Winner is set only for Win.
type Outcome struct {
	Status Status
	Winner Mark
}

func (that Mark) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

// Opponent returns the other playing mark. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (that Mark) IsPlayer() bool {
	return that == X || that == O
}

// ParseMark accepts "X" or "O" in any case.
func ParseMark(raw string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	default:
		return Empty, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, raw)
	}
}

func (that Status) String() string {
	switch that {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

func NewBoard() Board {
	return Board{}
}

// AvailableMoves returns the empty cells in ascending order.
func (that Board) AvailableMoves() []int {
	moves := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			moves = append(moves, i)
		}
	}

	return moves
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// Outcome checks the winning triples in WinCombos order and reports the first complete one.
func (that Board) Outcome() Outcome {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != Empty && a == b && b == c {
			return Outcome{Status: Win, Winner: a}
		}
	}

	if that.IsFull() {
		return Outcome{Status: Draw}
	}

	return Outcome{Status: InProgress}
}

// ApplyMove places mark on the cell. The board is unchanged when an error is returned.
func (that *Board) ApplyMove(move int, mark Mark) error {
	if move < 0 || move >= BoardSize {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrInvalidMove, move)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: cannot place mark %q", apperror.ErrInvalidMove, mark.String())
	}

	if that[move] != Empty {
		return fmt.Errorf("%w: cell %d is already occupied", apperror.ErrInvalidMove, move)
	}

	that[move] = mark

	return nil
}

// Undo clears a cell played by ApplyMove. It is meant for backtracking only:
// the index is not validated and an out-of-range move panics.
func (that *Board) Undo(move int) {
	that[move] = Empty
}

// String renders the grid, showing empty cells as their 1-based position.
func (that Board) String() string {
	cell := func(i int) string {
		if that[i] == Empty {
			return strconv.Itoa(i + 1)
		}
		return that[i].String()
	}

	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		fmt.Fprintf(&sb, " %s | %s | %s \n", cell(row*3), cell(row*3+1), cell(row*3+2))
	}

	return sb.String()
}
