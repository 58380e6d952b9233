package protocol

import (
	"errors"
	"fmt"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
)

const (
	TypeInput    = "input"
	TypeBoard    = "board"
	TypeEnd      = "end"
	TypeRejected = "rejected"

	TypeMove = "move"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrMissingPayload = errors.New("message payload is missing")
)

// ServerMessage is sent by the coordinator to a player.
type ServerMessage struct {
	Type    string         `json:"type"`
	Board   *entity.Board  `json:"board,omitempty"`
	Outcome entity.Outcome `json:"outcome,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	// Turn is the number of moves played when input was requested.
	Turn int `json:"turn,omitempty"`
}

// ClientMessage is sent by a player to the coordinator.
type ClientMessage struct {
	Type string `json:"type"`
	Cell *int   `json:"cell,omitempty"`
	// Turn echoes the input it answers; moves without it are taken as current.
	Turn *int `json:"turn,omitempty"`
}

func NewInputMessage(turn int) ServerMessage {
	return ServerMessage{Type: TypeInput, Turn: turn}
}

func NewBoardMessage(board entity.Board) ServerMessage {
	return ServerMessage{Type: TypeBoard, Board: &board}
}

func NewEndMessage(outcome entity.Outcome) ServerMessage {
	return ServerMessage{Type: TypeEnd, Outcome: outcome}
}

func NewRejectedMessage(reason string) ServerMessage {
	return ServerMessage{Type: TypeRejected, Reason: reason}
}

func NewMoveMessage(cell int) ClientMessage {
	return ClientMessage{Type: TypeMove, Cell: &cell}
}

// WithTurn - binds the move to the input of the given turn.
func (that ClientMessage) WithTurn(turn int) ClientMessage {
	that.Turn = &turn
	return that
}

func (that *ServerMessage) Validate() error {
	switch that.Type {
	case TypeInput, TypeRejected:
		return nil
	case TypeBoard:
		if that.Board == nil {
			return fmt.Errorf("%w: %s", ErrMissingPayload, that.Type)
		}
		return nil
	case TypeEnd:
		switch that.Outcome {
		case entity.OutcomeWin, entity.OutcomeLose, entity.OutcomeDraw:
			return nil
		default:
			return fmt.Errorf("%w: %s outcome %q", ErrMissingPayload, that.Type, that.Outcome)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, that.Type)
	}
}

func (that *ClientMessage) Validate() error {
	if that.Type != TypeMove {
		return fmt.Errorf("%w: %q", ErrUnknownType, that.Type)
	}

	if that.Cell == nil {
		return fmt.Errorf("%w: %s", ErrMissingPayload, that.Type)
	}

	return nil
}
