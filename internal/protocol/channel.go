package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/apperror"
)

type validator interface {
	Validate() error
}

// Channel carries typed messages over a byte stream, one message per frame.
// R is the type received, S the type sent.
type Channel[R any, S any] struct {
	reader       *bufio.Reader
	writer       io.Writer
	maxFrameSize int

	writeMutex sync.Mutex
}

// ServerChannel is the coordinator end of a player connection.
type ServerChannel = Channel[ClientMessage, ServerMessage]

// ClientChannel is the player end of the connection.
type ClientChannel = Channel[ServerMessage, ClientMessage]

func NewChannel[R any, S any](conn io.ReadWriter, maxFrameSize int) *Channel[R, S] {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	return &Channel[R, S]{
		reader:       bufio.NewReader(conn),
		writer:       conn,
		maxFrameSize: maxFrameSize,
	}
}

func NewServerChannel(conn io.ReadWriter, maxFrameSize int) *ServerChannel {
	return NewChannel[ClientMessage, ServerMessage](conn, maxFrameSize)
}

func NewClientChannel(conn io.ReadWriter, maxFrameSize int) *ClientChannel {
	return NewChannel[ServerMessage, ClientMessage](conn, maxFrameSize)
}

// Send - encodes the message and writes it as one frame. Safe for concurrent use.
func (that *Channel[R, S]) Send(message S) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if len(payload) > that.maxFrameSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, len(payload), that.maxFrameSize)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	return WriteFrame(that.writer, payload)
}

// Receive - blocks until one complete message arrives.
// It must not be called from more than one goroutine at a time.
func (that *Channel[R, S]) Receive() (R, error) {
	var message R

	payload, err := ReadFrame(that.reader, that.maxFrameSize)
	if err != nil {
		return message, err
	}

	if err = json.Unmarshal(payload, &message); err != nil {
		return message, fmt.Errorf("%w: failed to unmarshal message: %w", apperror.ErrDecode, err)
	}

	if v, ok := any(&message).(validator); ok {
		if err = v.Validate(); err != nil {
			return message, fmt.Errorf("%w: %w", apperror.ErrDecode, err)
		}
	}

	return message, nil
}
