package tictactoe

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = entity.X
	o = entity.O
	e = entity.Empty
)

func TestEngine_BestMove(t *testing.T) {
	tests := []struct {
		name      string
		board     entity.Board
		self      entity.Mark
		wantMove  int
		wantScore int
	}{
		{
			// every opening draws, so the first cell wins the tie
			name:      "Empty board picks the lowest index",
			board:     entity.Board{},
			self:      x,
			wantMove:  0,
			wantScore: 0,
		},
		{
			name: "Completes the row immediately",
			board: entity.Board{
				x, x, e,
				o, o, e,
				e, e, e,
			},
			self:      x,
			wantMove:  2,
			wantScore: 9,
		},
		{
			// X threatens 6 and 8 at once, every defence loses on the next move
			name: "Forced loss against a double threat",
			board: entity.Board{
				x, o, x,
				o, x, o,
				e, e, e,
			},
			self:      o,
			wantMove:  6,
			wantScore: -8,
		},
		{
			// 3 also wins by a triple threat, but only two moves later
			name: "Prefers the immediate win over a slower forced win",
			board: entity.Board{
				x, o, o,
				e, x, e,
				e, e, e,
			},
			self:      x,
			wantMove:  8,
			wantScore: 9,
		},
		{
			// blocking at 8 still loses to a fork, anything else loses at once
			name: "Delays a forced loss",
			board: entity.Board{
				x, o, e,
				e, x, e,
				e, e, e,
			},
			self:      o,
			wantMove:  8,
			wantScore: -6,
		},
		{
			// all four corners draw against a center opening, edges lose
			name: "Equal corners resolve to the lowest index",
			board: entity.Board{
				e, e, e,
				e, x, e,
				e, e, e,
			},
			self:      o,
			wantMove:  0,
			wantScore: 0,
		},
	}

	for _, parallel := range []bool{false, true} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctx, st := suite.New(t)
				engine := NewEngine(st.Logger, parallel)

				// When: searching for the best move
				result, err := engine.Search(ctx, tt.board, tt.self, tt.self.Opponent())
				require.NoError(t, err)

				move, err := engine.BestMove(ctx, tt.board, tt.self, tt.self.Opponent())
				require.NoError(t, err)

				// Then: the expected move and score are found
				assert.Equal(t, tt.wantMove, result.Move, "parallel=%v", parallel)
				assert.Equal(t, tt.wantScore, result.Score, "parallel=%v", parallel)
				assert.Equal(t, tt.wantMove, move, "parallel=%v", parallel)
			})
		}
	}
}

func TestEngine_SlowerWinIsStillAWin(t *testing.T) {
	ctx, st := suite.New(t)
	engine := NewEngine(st.Logger, false)

	// Given: X played 3 instead of the immediate win at 8, creating a triple threat
	board := entity.Board{
		x, o, o,
		x, x, e,
		e, e, e,
	}

	// When: O searches for a defence
	result, err := engine.Search(ctx, board, o, x)
	require.NoError(t, err)

	// Then: O loses on X's next move whatever it does
	assert.Equal(t, -8, result.Score)
}

func TestEngine_NeverLoses(t *testing.T) {
	ctx, st := suite.New(t)
	engine := NewEngine(st.Logger, false)

	var games int

	// play every possible opponent line against the engine
	var play func(t *testing.T, board entity.Board, engineMark, toMove entity.Mark)
	play = func(t *testing.T, board entity.Board, engineMark, toMove entity.Mark) {
		t.Helper()

		outcome := board.Outcome()
		if outcome.Status != entity.InProgress {
			games++
			if outcome.Status == entity.Win && outcome.Winner != engineMark {
				t.Fatalf("engine %s lost on board %v", engineMark, board)
			}
			return
		}

		if toMove == engineMark {
			move, err := engine.BestMove(ctx, board, engineMark, engineMark.Opponent())
			require.NoError(t, err)
			require.NoError(t, board.ApplyMove(move, engineMark))
			play(t, board, engineMark, toMove.Opponent())
			return
		}

		for _, move := range board.AvailableMoves() {
			next := board
			require.NoError(t, next.ApplyMove(move, toMove))
			play(t, next, engineMark, toMove.Opponent())
		}
	}

	t.Run("Engine moves first", func(t *testing.T) {
		play(t, entity.NewBoard(), x, x)
	})

	t.Run("Opponent moves first", func(t *testing.T) {
		play(t, entity.NewBoard(), o, x)
	})

	assert.Positive(t, games)
}

func TestEngine_SelfPlayIsADraw(t *testing.T) {
	ctx, st := suite.New(t)
	engine := NewEngine(st.Logger, false)

	// Given: an empty board
	board := entity.NewBoard()
	toMove := x

	// When: both sides play the engine's move until the game ends
	for board.Outcome().Status == entity.InProgress {
		move, err := engine.BestMove(ctx, board, toMove, toMove.Opponent())
		require.NoError(t, err)
		require.NoError(t, board.ApplyMove(move, toMove))
		toMove = toMove.Opponent()
	}

	// Then: the game is a draw
	assert.Equal(t, entity.Outcome{Status: entity.Draw}, board.Outcome())
}

func TestEngine_BestMoveIsDeterministic(t *testing.T) {
	ctx, st := suite.New(t)
	engine := NewEngine(st.Logger, false)

	board := entity.Board{
		e, e, e,
		e, x, e,
		e, e, e,
	}

	first, err := engine.BestMove(ctx, board, o, x)
	require.NoError(t, err)

	for range 5 {
		move, err := engine.BestMove(ctx, board, o, x)
		require.NoError(t, err)
		assert.Equal(t, first, move)
	}
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	ctx, st := suite.New(t)
	sequential := NewEngine(st.Logger, false)
	parallel := NewEngine(st.Logger, true)

	// Given: every position after the first two plies
	boards := []entity.Board{{}}
	for _, first := range entity.NewBoard().AvailableMoves() {
		one := entity.Board{}
		one[first] = x
		boards = append(boards, one)

		for _, second := range one.AvailableMoves() {
			two := one
			two[second] = o
			boards = append(boards, two)
		}
	}

	for _, board := range boards {
		self := x
		if len(board.AvailableMoves())%2 == 0 {
			self = o
		}

		// When: both engines search the same position
		want, err := sequential.Search(ctx, board, self, self.Opponent())
		require.NoError(t, err)

		got, err := parallel.Search(ctx, board, self, self.Opponent())
		require.NoError(t, err)

		// Then: they agree on move and score
		require.Equal(t, want, got, "board %v", board)
	}
}

func TestEngine_DoesNotMutateCallerBoard(t *testing.T) {
	ctx, st := suite.New(t)

	for _, parallel := range []bool{false, true} {
		engine := NewEngine(st.Logger, parallel)

		// Given: a board owned by the caller
		board := entity.Board{x, e, e, e, o, e, e, e, e}
		before := board

		// When: the engine searches it
		_, err := engine.BestMove(ctx, board, x, o)
		require.NoError(t, err)

		// Then: the caller's board is unchanged
		assert.Equal(t, before, board)
	}
}

func TestEngine_Errors(t *testing.T) {
	t.Run("Search on a won board", func(t *testing.T) {
		ctx, st := suite.New(t)
		engine := NewEngine(st.Logger, false)

		// Given: a board X has already won
		board := entity.Board{
			x, x, x,
			o, o, e,
			e, e, e,
		}

		// When: asking for a move
		move, err := engine.BestMove(ctx, board, o, x)

		// Then: ErrSearchOnTerminalBoard is returned
		require.ErrorIs(t, err, apperror.ErrSearchOnTerminalBoard)
		assert.Equal(t, NoMove, move)
	})

	t.Run("Search on a drawn board", func(t *testing.T) {
		ctx, st := suite.New(t)
		engine := NewEngine(st.Logger, true)

		// Given: a full board without a line
		board := entity.Board{
			o, x, o,
			o, x, x,
			x, o, x,
		}

		// When: searching
		result, err := engine.Search(ctx, board, x, o)

		// Then: ErrSearchOnTerminalBoard is returned with no move
		require.ErrorIs(t, err, apperror.ErrSearchOnTerminalBoard)
		assert.Equal(t, NoMove, result.Move)
	})

	t.Run("Invalid marks", func(t *testing.T) {
		ctx, st := suite.New(t)
		engine := NewEngine(st.Logger, false)

		for _, marks := range [][2]entity.Mark{{x, x}, {e, o}, {x, e}} {
			_, err := engine.BestMove(ctx, entity.NewBoard(), marks[0], marks[1])
			require.ErrorIs(t, err, apperror.ErrInvalidMark)
		}
	})

	t.Run("Cancelled context stops the parallel search", func(t *testing.T) {
		_, st := suite.New(t)
		engine := NewEngine(st.Logger, true)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// When: searching with a cancelled context
		_, err := engine.BestMove(ctx, entity.NewBoard(), x, o)

		// Then: the cancellation is reported
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSearcher_VisitsTheWholeTree(t *testing.T) {
	// Given: an empty board
	s := &searcher{board: entity.NewBoard(), self: x, opponent: o}

	// When: evaluating from the root
	result := s.evaluate(0, true)

	// Then: every node of the game tree is visited and the result is a draw
	assert.Equal(t, 549946, s.nodes)
	assert.Equal(t, SearchResult{Score: 0, Move: 0}, result)
	assert.Equal(t, entity.NewBoard(), s.board)
}

func TestSearcher_TerminalScores(t *testing.T) {
	tests := []struct {
		name  string
		board entity.Board
		depth int
		want  int
	}{
		{name: "Own win at depth 1", board: entity.Board{x, x, x, o, o}, depth: 1, want: 9},
		{name: "Own win at depth 5", board: entity.Board{x, x, x, o, o}, depth: 5, want: 5},
		{name: "Opponent win at depth 2", board: entity.Board{o, o, o, x, x, e, x}, depth: 2, want: -8},
		{name: "Draw", board: entity.Board{o, x, o, o, x, x, x, o, x}, depth: 9, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &searcher{board: tt.board, self: x, opponent: o}

			score, terminal := s.terminalScore(tt.depth)

			assert.True(t, terminal)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestSearcher_EvaluateBranch(t *testing.T) {
	t.Run("Matches the sequential evaluation of every opening", func(t *testing.T) {
		for _, move := range entity.NewBoard().AvailableMoves() {
			// Given: the same opening for both searchers
			branch := &searcher{board: entity.Board{}, self: x, opponent: o}
			branch.board[move] = x
			sequential := &searcher{board: branch.board, self: x, opponent: o}

			// When: scoring it both ways
			score, err := branch.evaluateBranch(context.Background())
			require.NoError(t, err)
			want := sequential.evaluate(1, false)

			// Then: score and node count agree and the board is restored
			assert.Equal(t, want.Score, score, "move %d", move)
			assert.Equal(t, sequential.nodes, branch.nodes, "move %d", move)
			assert.Equal(t, sequential.board, branch.board, "move %d", move)
		}
	})

	t.Run("Stops before the next reply once the context is cancelled", func(t *testing.T) {
		// Given: an opening with eight replies left and a cancelled context
		s := &searcher{board: entity.Board{x}, self: x, opponent: o}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// When: scoring the branch
		_, err := s.evaluateBranch(ctx)

		// Then: no reply is searched
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, s.nodes)
		assert.Equal(t, entity.Board{x}, s.board)
	})

	t.Run("Winning root move is scored without searching replies", func(t *testing.T) {
		s := &searcher{
			board: entity.Board{
				x, x, x,
				o, o, e,
				e, e, e,
			},
			self:     x,
			opponent: o,
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		score, err := s.evaluateBranch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 9, score)
		assert.Equal(t, 1, s.nodes)
	})
}
