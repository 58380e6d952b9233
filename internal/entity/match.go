package entity

type (
	Mark    string
	Outcome string
)

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

const (
	ForfeitDisconnect = "disconnect"
	ForfeitTimeout    = "timeout"
)

const (
	BoardSize   = 9
	PlayerCount = 2

	// NoPlayer is the Winner of a match that is still going or ended in a draw.
	NoPlayer = -1
)

type Board [BoardSize]Mark

// Match is the state of one game between player 0 (X) and player 1 (O).
// Moves always equals the number of non-empty cells on Board.
type Match struct {
	ID            string `json:"id"`
	Board         Board  `json:"board"`
	CurrentPlayer int    `json:"current_player"`
	Running       bool   `json:"running"`
	Finished      bool   `json:"finished"`
	Moves         int    `json:"moves"`
	Winner        int    `json:"winner"`
	Forfeit       string `json:"forfeit,omitempty"`
}

func NewMatch(id string) *Match {
	return &Match{
		ID:            id,
		CurrentPlayer: 0,
		Winner:        NoPlayer,
	}
}

// MarkOf - returns the mark placed by the given player.
func MarkOf(player int) Mark {
	if player == 0 {
		return PlayerX
	}
	return PlayerO
}

func Opponent(player int) int {
	return (player + 1) % PlayerCount
}

func (that *Match) IsWaiting() bool {
	return !that.Running && !that.Finished
}

func (that *Match) IsOngoing() bool {
	return that.Running
}

func (that *Match) IsFinished() bool {
	return that.Finished
}

// Start - moves a waiting match to running. It reports whether the transition happened.
func (that *Match) Start() bool {
	if !that.IsWaiting() {
		return false
	}

	that.Running = true

	return true
}

// Finish - ends the match. winner is NoPlayer for a draw, forfeit is empty
// unless the match ended off the board.
func (that *Match) Finish(winner int, forfeit string) {
	that.Running = false
	that.Finished = true
	that.Winner = winner
	that.Forfeit = forfeit
}

// OutcomeFor - returns the personalized result of a finished match, or an empty outcome while it is not finished.
func (that *Match) OutcomeFor(player int) Outcome {
	switch {
	case !that.Finished:
		return ""
	case that.Winner == NoPlayer:
		return OutcomeDraw
	case that.Winner == player:
		return OutcomeWin
	default:
		return OutcomeLose
	}
}

func (that *Match) FilledCells() int {
	filled := 0
	for _, cell := range that.Board {
		if cell != EmptyCell {
			filled++
		}
	}

	return filled
}
