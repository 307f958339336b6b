package tictactoe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// NoMove is reported for boards where the game is already over.
const NoMove = -1

const (
	winScore   = 10
	worstScore = -999
	bestScore  = 999
)

// SearchResult is the minimax value of a position and the move that reaches it.
type SearchResult struct {
	Score int
	Move  int
}

// Engine picks moves with an exhaustive minimax search.
// Faster wins and slower losses score higher, ties go to the lowest cell index.
type Engine struct {
	logger       *slog.Logger
	parallelRoot bool
}

func NewEngine(logger *slog.Logger, parallelRoot bool) *Engine {
	return &Engine{
		logger:       logger,
		parallelRoot: parallelRoot,
	}
}

// BestMove returns the optimal cell for self. It fails with ErrSearchOnTerminalBoard
// when the board is already won or drawn.
func (that *Engine) BestMove(ctx context.Context, board entity.Board, self, opponent entity.Mark) (int, error) {
	result, err := that.Search(ctx, board, self, opponent)
	if err != nil {
		return NoMove, err
	}

	if result.Move == NoMove {
		return board.AvailableMoves()[0], nil
	}

	return result.Move, nil
}

// Search evaluates the board from self's point of view with self to move.
func (that *Engine) Search(ctx context.Context, board entity.Board, self, opponent entity.Mark) (SearchResult, error) {
	log := that.logger.With("method", "Search")

	if !self.IsPlayer() || !opponent.IsPlayer() || self == opponent {
		return SearchResult{Move: NoMove}, fmt.Errorf("%w: self %q, opponent %q", apperror.ErrInvalidMark, self.String(), opponent.String())
	}

	if outcome := board.Outcome(); outcome.Status != entity.InProgress {
		return SearchResult{Move: NoMove}, fmt.Errorf("%w: board is a %s", apperror.ErrSearchOnTerminalBoard, outcome.Status)
	}

	started := time.Now()

	var (
		result SearchResult
		nodes  int
		err    error
	)

	if that.parallelRoot {
		result, nodes, err = searchParallel(ctx, board, self, opponent)
		if err != nil {
			return SearchResult{Move: NoMove}, fmt.Errorf("parallel search failed: %w", err)
		}
	} else {
		s := &searcher{board: board, self: self, opponent: opponent}
		result = s.evaluate(0, true)
		nodes = s.nodes
	}

	log.Debug("search finished",
		"self", self.String(),
		"move", result.Move,
		"score", result.Score,
		"nodes", nodes,
		"parallel", that.parallelRoot,
		"duration", time.Since(started),
	)

	return result, nil
}

// searcher owns the board it mutates during backtracking; it must not be shared between goroutines.
type searcher struct {
	board    entity.Board
	self     entity.Mark
	opponent entity.Mark
	nodes    int
}

func (that *searcher) evaluate(depth int, maximizing bool) SearchResult {
	that.nodes++

	if score, terminal := that.terminalScore(depth); terminal {
		return SearchResult{Score: score, Move: NoMove}
	}

	mark, best := that.opponent, SearchResult{Score: bestScore, Move: NoMove}
	if maximizing {
		mark, best = that.self, SearchResult{Score: worstScore, Move: NoMove}
	}

	for _, move := range that.board.AvailableMoves() {
		that.board[move] = mark
		result := that.evaluate(depth+1, !maximizing)
		that.board.Undo(move)

		if (maximizing && result.Score > best.Score) || (!maximizing && result.Score < best.Score) {
			best = SearchResult{Score: result.Score, Move: move}
		}
	}

	return best
}

func (that *searcher) terminalScore(depth int) (int, bool) {
	outcome := that.board.Outcome()

	switch outcome.Status {
	case entity.Win:
		if outcome.Winner == that.self {
			return winScore - depth, true
		}
		return depth - winScore, true
	case entity.Draw:
		return 0, true
	default:
		return 0, false
	}
}

// evaluateBranch scores the position after a root move, like evaluate(1, false),
// but stops before the next opponent reply once ctx is done.
func (that *searcher) evaluateBranch(ctx context.Context) (int, error) {
	that.nodes++

	if score, terminal := that.terminalScore(1); terminal {
		return score, nil
	}

	best := bestScore
	for _, reply := range that.board.AvailableMoves() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		that.board[reply] = that.opponent
		result := that.evaluate(2, true)
		that.board.Undo(reply)

		if result.Score < best {
			best = result.Score
		}
	}

	return best, nil
}

// searchParallel evaluates every root move on its own board copy, then picks the
// winner in ascending order so the result matches the sequential search.
func searchParallel(ctx context.Context, board entity.Board, self, opponent entity.Mark) (SearchResult, int, error) {
	moves := board.AvailableMoves()
	scores := make([]int, len(moves))
	nodes := make([]int, len(moves))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, move := range moves {
		group.Go(func() error {
			s := &searcher{board: board, self: self, opponent: opponent}
			s.board[move] = self

			score, err := s.evaluateBranch(groupCtx)
			if err != nil {
				return err
			}

			scores[i] = score
			nodes[i] = s.nodes

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return SearchResult{Move: NoMove}, 0, err
	}

	best := SearchResult{Score: worstScore, Move: NoMove}
	total := 1
	for i, move := range moves {
		total += nodes[i]
		if scores[i] > best.Score {
			best = SearchResult{Score: scores[i], Move: move}
		}
	}

	return best, total, nil
}
