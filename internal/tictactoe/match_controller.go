package tictactoe

import (
	"fmt"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/apperror"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// MakeTurn - applies a move of the player to the match and updates its status.
// A rejected move leaves the match untouched.
func MakeTurn(match *entity.Match, player, cell int) error {
	if match.IsFinished() {
		return apperror.ErrMatchFinished
	}

	if match.IsWaiting() {
		return apperror.ErrMatchIsNotStarted
	}

	if err := ValidateMove(match, player, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	match.Board[cell] = entity.MarkOf(player)
	match.Moves++
	match.CurrentPlayer = entity.Opponent(player)

	updateMatchStatus(match, player)

	return nil
}

// ValidateMove - checks if the move is valid.
func ValidateMove(match *entity.Match, player, cell int) error {
	if cell < 0 || cell >= len(match.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if match.CurrentPlayer != player {
		return apperror.ErrNotYourTurn
	}

	if match.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateMatchStatus - finishes the match if the last move won or filled the board.
func updateMatchStatus(match *entity.Match, mover int) {
	switch {
	case IsWin(match.Board):
		match.Finish(mover, "")
	case IsDraw(match.Board, match.Moves):
		match.Finish(entity.NoPlayer, "")
	}
}

// Winner - returns the mark that owns a full line, or EmptyCell.
func Winner(board entity.Board) entity.Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}

func IsWin(board entity.Board) bool {
	return Winner(board) != entity.EmptyCell
}

func IsDraw(board entity.Board, moves int) bool {
	return moves == entity.BoardSize && !IsWin(board)
}
