package tictactoe

import (
	"testing"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/apperror"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningMatch() *entity.Match {
	match := entity.NewMatch("123")
	match.Start()

	return match
}

// referenceWin scans rows, columns and diagonals by coordinates.
func referenceWin(board entity.Board) bool {
	at := func(row, col int) entity.Mark { return board[row*3+col] }
	same := func(a, b, c entity.Mark) bool { return a != entity.EmptyCell && a == b && b == c }

	for i := 0; i < 3; i++ {
		if same(at(i, 0), at(i, 1), at(i, 2)) || same(at(0, i), at(1, i), at(2, i)) {
			return true
		}
	}

	return same(at(0, 0), at(1, 1), at(2, 2)) || same(at(0, 2), at(1, 1), at(2, 0))
}

func TestIsWin_AllBoards(t *testing.T) {
	marks := [3]entity.Mark{entity.EmptyCell, entity.PlayerX, entity.PlayerO}

	total := 1
	for i := 0; i < entity.BoardSize; i++ {
		total *= 3
	}

	for code := 0; code < total; code++ {
		var board entity.Board
		rest := code
		for i := range board {
			board[i] = marks[rest%3]
			rest /= 3
		}

		require.Equal(t, referenceWin(board), IsWin(board), "board %v", board)
	}
}

func TestIsDraw(t *testing.T) {
	t.Run("Full board without line", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerX,
		}

		assert.True(t, IsDraw(board, 9))
	})

	t.Run("Full board with line is a win", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerO, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
		}

		assert.False(t, IsDraw(board, 9))
	})

	t.Run("Moves left", func(t *testing.T) {
		assert.False(t, IsDraw(entity.Board{}, 4))
	})
}

func TestMakeTurn(t *testing.T) {
	t.Run("MakeTurn", func(t *testing.T) {
		// Given: a running match
		match := newRunningMatch()

		// When: player 0 makes a turn
		err := MakeTurn(match, 0, 0)
		require.NoError(t, err)

		// Then: the mark is placed, the move is counted and the turn passes
		expected := &entity.Match{
			ID:            "123",
			Board:         entity.Board{entity.PlayerX},
			CurrentPlayer: 1,
			Running:       true,
			Moves:         1,
			Winner:        entity.NoPlayer,
		}

		require.Equal(t, expected, match)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a match where player 0 took cell 0
		match := newRunningMatch()
		require.NoError(t, MakeTurn(match, 0, 0))
		before := *match

		// When: player 1 tries the same cell
		err := MakeTurn(match, 1, 0)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.Equal(t, before, *match)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new match where player 0 is active
		match := newRunningMatch()
		before := *match

		// When: player 1 tries to move
		err := MakeTurn(match, 1, 4)

		// Then: ErrNotYourTurn is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		require.Equal(t, before, *match)
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		match := newRunningMatch()

		assert.ErrorIs(t, MakeTurn(match, 0, 9), apperror.ErrInvalidCell)
		assert.ErrorIs(t, MakeTurn(match, 0, -1), apperror.ErrInvalidCell)
		assert.Zero(t, match.Moves)
	})

	t.Run("Move before start", func(t *testing.T) {
		match := entity.NewMatch("123")

		assert.ErrorIs(t, MakeTurn(match, 0, 0), apperror.ErrMatchIsNotStarted)
	})

	t.Run("Move after match finished", func(t *testing.T) {
		// Given: a match that player 0 has already won
		match := newRunningMatch()
		for _, cell := range []int{0, 3, 1, 4, 2} {
			require.NoError(t, MakeTurn(match, match.CurrentPlayer, cell))
		}

		// When: player 1 tries to move
		err := MakeTurn(match, 1, 5)

		// Then: ErrMatchFinished is returned
		assert.ErrorIs(t, err, apperror.ErrMatchFinished)
	})
}

func TestMakeTurn_Scenarios(t *testing.T) {
	t.Run("Top row win", func(t *testing.T) {
		// Given: a running match
		match := newRunningMatch()

		// When: the players fill 0, 3, 1, 4, 2
		for _, cell := range []int{0, 3, 1, 4, 2} {
			require.NoError(t, MakeTurn(match, match.CurrentPlayer, cell))
		}

		// Then: player 0 wins with X X X / O O _
		expectedBoard := entity.Board{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerO, entity.PlayerO, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.EmptyCell,
		}
		assert.Equal(t, expectedBoard, match.Board)
		assert.True(t, match.IsFinished())
		assert.False(t, match.Running)
		assert.Equal(t, 0, match.Winner)
		assert.Equal(t, entity.OutcomeWin, match.OutcomeFor(0))
		assert.Equal(t, entity.OutcomeLose, match.OutcomeFor(1))
	})

	t.Run("Draw", func(t *testing.T) {
		// Given: a running match
		match := newRunningMatch()

		// When: all nine cells are filled without a line
		for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			require.NoError(t, MakeTurn(match, match.CurrentPlayer, cell))
		}

		// Then: the match is a draw
		assert.True(t, match.IsFinished())
		assert.Equal(t, entity.NoPlayer, match.Winner)
		assert.Equal(t, entity.OutcomeDraw, match.OutcomeFor(0))
		assert.Equal(t, entity.OutcomeDraw, match.OutcomeFor(1))
	})
}

func TestMakeTurn_Invariants(t *testing.T) {
	// Given: a full move order that ends in a draw, with rejected moves mixed in
	match := newRunningMatch()
	order := []int{0, 1, 2, 4, 3, 5, 7, 6, 8}

	for n, cell := range order {
		// Then: the turn alternates starting with player 0
		require.Equal(t, n%2, match.CurrentPlayer)

		if n > 0 {
			before := *match
			err := MakeTurn(match, match.CurrentPlayer, order[n-1])
			require.ErrorIs(t, err, apperror.ErrCellOccupied)
			require.Equal(t, before, *match)
		}

		require.NoError(t, MakeTurn(match, match.CurrentPlayer, cell))

		// Then: moves equals the number of filled cells
		require.Equal(t, match.FilledCells(), match.Moves)
		require.Equal(t, n+1, match.Moves)
	}

	assert.Equal(t, len(order)%2, match.CurrentPlayer)
}

func TestWinner(t *testing.T) {
	t.Run("Winner O on diagonal", func(t *testing.T) {
		board := entity.Board{
			entity.EmptyCell, entity.PlayerX, entity.PlayerO,
			entity.PlayerX, entity.PlayerO, entity.EmptyCell,
			entity.PlayerO, entity.EmptyCell, entity.PlayerX,
		}

		require.Equal(t, entity.PlayerO, Winner(board))
	})

	t.Run("Ongoing", func(t *testing.T) {
		board := entity.Board{entity.PlayerX, entity.PlayerO, entity.PlayerX}

		require.Equal(t, entity.EmptyCell, Winner(board))
	})
}
