package apperror

import "errors"

var (
	ErrMatchFinished     = errors.New("match is already finished")
	ErrMatchIsNotStarted = errors.New("match is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")

	ErrTransportClosed = errors.New("transport closed")
	ErrDecode          = errors.New("failed to decode frame")
	ErrMoveTimeout     = errors.New("move timed out")
)
