package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/apperror"
)

// headerSize is the length of the big-endian uint32 payload size that starts every frame.
const headerSize = 4

const DefaultMaxFrameSize = 4096

var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// WriteFrame - writes the payload as one length-prefixed frame with a single Write call.
func WriteFrame(writer io.Writer, payload []byte) error {
	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload))) //nolint: gosec // payload size is bounded by the caller
	copy(buf[headerSize:], payload)

	if _, err := writer.Write(buf); err != nil {
		return fmt.Errorf("%w: failed to write frame: %w", apperror.ErrTransportClosed, err)
	}

	return nil
}

// ReadFrame - reads one frame and returns its payload. Frames that are empty
// or larger than maxSize are decode errors; read failures close the transport.
func ReadFrame(reader io.Reader, maxSize int) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", apperror.ErrTransportClosed, err)
	}

	size := binary.BigEndian.Uint32(header)
	if size == 0 {
		return nil, fmt.Errorf("%w: empty frame", apperror.ErrDecode)
	}

	if uint64(size) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %w: %d > %d bytes", apperror.ErrDecode, ErrFrameTooLarge, size, maxSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("%w: failed to read payload: %w", apperror.ErrTransportClosed, err)
	}

	return payload, nil
}
