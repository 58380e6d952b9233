package client

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/protocol"
)

const separator = "+---+---+---+"

var outcomeText = map[entity.Outcome]string{
	entity.OutcomeWin:  "You win!",
	entity.OutcomeLose: "You lose!",
	entity.OutcomeDraw: "Draw!",
}

// Picker chooses the next cell from the last known board.
type Picker interface {
	Pick(board entity.Board) (int, error)
}

// Client plays one match, asking picker for every move.
type Client struct {
	logger  *slog.Logger
	channel *protocol.ClientChannel

	picker Picker
	output io.Writer

	// board is the last board the server reported
	board entity.Board
}

func New(logger *slog.Logger, conn io.ReadWriter, picker Picker, output io.Writer) *Client {
	return &Client{
		logger:  logger,
		channel: protocol.NewClientChannel(conn, 0),
		picker:  picker,
		output:  output,
	}
}

// Play - answers server messages until the match ends and returns the outcome.
func (that *Client) Play() (entity.Outcome, error) {
	log := that.logger.With("method", "Play")

	for {
		message, err := that.channel.Receive()
		if err != nil {
			return "", fmt.Errorf("failed to receive message: %w", err)
		}

		log.Debug("message received", "type", message.Type)

		switch message.Type {
		case protocol.TypeInput:
			cell, err := that.picker.Pick(that.board)
			if err != nil {
				return "", fmt.Errorf("failed to pick a cell: %w", err)
			}

			if err = that.channel.Send(protocol.NewMoveMessage(cell).WithTurn(message.Turn)); err != nil {
				return "", fmt.Errorf("failed to send move: %w", err)
			}
		case protocol.TypeBoard:
			that.board = *message.Board
			that.printf("%s", Render(that.board))
		case protocol.TypeRejected:
			that.printf("Move rejected: %s\n", message.Reason)
		case protocol.TypeEnd:
			that.printf("%s\n", outcomeText[message.Outcome])
			return message.Outcome, nil
		}
	}
}

func (that *Client) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.output, format, args...); err != nil {
		that.logger.Debug("failed to write output", "error", err)
	}
}

// Render - draws the board as a 3x3 grid. Empty cells show their index.
func Render(board entity.Board) string {
	var builder strings.Builder

	builder.WriteString(separator + "\n")

	for row := 0; row < 3; row++ {
		builder.WriteString("|")

		for col := 0; col < 3; col++ {
			cell := row*3 + col

			mark := string(board[cell])
			if board[cell] == entity.EmptyCell {
				mark = strconv.Itoa(cell)
			}

			builder.WriteString(" " + mark + " |")
		}

		builder.WriteString("\n" + separator + "\n")
	}

	return builder.String()
}
