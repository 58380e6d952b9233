package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
)

var (
	ErrInputClosed      = errors.New("input closed")
	ErrNoAvailableMoves = errors.New("no available moves")
)

// Prompt asks a human for moves.
type Prompt struct {
	input  *bufio.Scanner
	output io.Writer
}

func NewPrompt(input io.Reader, output io.Writer) *Prompt {
	return &Prompt{
		input:  bufio.NewScanner(input),
		output: output,
	}
}

// Pick - prompts until a cell index in range is entered.
func (that *Prompt) Pick(_ entity.Board) (int, error) {
	fmt.Fprintf(that.output, "Your turn! Pick a cell [0-%d]: ", entity.BoardSize-1)

	for that.input.Scan() {
		cell, err := strconv.Atoi(strings.TrimSpace(that.input.Text()))
		if err == nil && cell >= 0 && cell < entity.BoardSize {
			return cell, nil
		}

		fmt.Fprintf(that.output, "Enter a number from 0 to %d: ", entity.BoardSize-1)
	}

	if err := that.input.Err(); err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}

	return 0, ErrInputClosed
}

// Bot plays a random free cell.
type Bot struct {
	rand *rand.Rand
}

func NewBot(seed int64) *Bot {
	return &Bot{
		rand: rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *Bot) Pick(board entity.Board) (int, error) {
	availableCells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return availableCells[that.rand.Intn(len(availableCells))], nil
}
