// Package morpx implements the rules of ultimate tic-tac-toe: a 9x9 board made
// of nine 3x3 sub-boards whose outcomes form a 3x3 meta-board (the grid).
//
// Coordinates are (x1, y1) for the sub-board and (x2, y2) for the cell inside
// it, each in [0, 2]. Accessors and Play do not check bounds: passing a
// coordinate outside that range is a precondition violation.
package morpx

// Value is the content of a cell, a grid entry, the player to move or the game status.
type Value int8

const (
	Unreachable Value = -1
	None        Value = 0
	PlayerOne   Value = 1
	PlayerTwo   Value = 2
)

// Opponent returns the player moving after v. Anything but PlayerOne yields PlayerOne.
func (v Value) Opponent() Value {
	if v == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (v Value) String() string {
	switch v {
	case Unreachable:
		return "unreachable"
	case None:
		return "none"
	case PlayerOne:
		return "player1"
	case PlayerTwo:
		return "player2"
	default:
		return "invalid"
	}
}

// ChangeSet reports what a single Play changed besides the written cell.
type ChangeSet uint8

const (
	NoChanges    ChangeSet = 0x0
	CellChange   ChangeSet = 0x1 // a grid entry was decided
	StatusChange ChangeSet = 0x2 // the game status was decided
)

func (c ChangeSet) Has(flag ChangeSet) bool {
	return c&flag == flag
}

const (
	boardSize = 81
	gridSize  = 9
)

// BoardIndex maps sub-board (x1, y1) and cell (x2, y2) to an offset into State.Board.
func BoardIndex(x1, y1, x2, y2 int) int {
	return x1*27 + y1*9 + x2*3 + y2
}

// GridIndex maps (x, y) to an offset into State.Grid or into a sub-board.
func GridIndex(x, y int) int {
	return x*3 + y
}

// State is one ultimate tic-tac-toe position.
type State struct {
	Board  [boardSize]Value `json:"board"`
	Grid   [gridSize]Value  `json:"grid"`
	Player Value            `json:"player"`
	Status Value            `json:"status"`
	LastX  int              `json:"last_x"`
	LastY  int              `json:"last_y"`
}

// New returns an initialised state with PlayerOne to move.
func New() *State {
	state := &State{}
	state.Init()
	state.Player = PlayerOne

	return state
}

// Init clears the board, the grid, the status and the last move. Player is left as is.
func (that *State) Init() {
	for i := range that.Board {
		that.Board[i] = None
	}
	for i := range that.Grid {
		that.Grid[i] = None
	}
	that.LastX = -1
	that.LastY = -1
	that.Status = None
}

// CopyTo copies board, grid, last move and status into target.
// The player to move is not copied: target keeps its own.
func (that *State) CopyTo(target *State) {
	target.Board = that.Board
	target.Grid = that.Grid
	target.LastX = that.LastX
	target.LastY = that.LastY
	target.Status = that.Status
}

// Clone returns a full copy of the state, player included.
func (that *State) Clone() State {
	return *that
}

func (that *State) GetBoard(x1, y1, x2, y2 int) Value {
	return that.Board[BoardIndex(x1, y1, x2, y2)]
}

func (that *State) SetBoard(x1, y1, x2, y2 int, value Value) {
	that.Board[BoardIndex(x1, y1, x2, y2)] = value
}

func (that *State) GetGrid(x, y int) Value {
	return that.Grid[GridIndex(x, y)]
}

func (that *State) SetGrid(x, y int, value Value) {
	that.Grid[GridIndex(x, y)] = value
}

// SubBoard returns the nine cells of sub-board (x1, y1), indexed by GridIndex(x2, y2).
func (that *State) SubBoard(x1, y1 int) *[gridSize]Value {
	start := BoardIndex(x1, y1, 0, 0)
	return (*[gridSize]Value)(that.Board[start : start+gridSize])
}

// Play writes the current player's mark at (x1, y1, x2, y2), derives the
// sub-board and game outcomes, hands the turn over and reports the changes.
//
// The caller must only play empty cells while Status is None; Play itself
// does not check either.
func (that *State) Play(x1, y1, x2, y2 int) ChangeSet {
	changes := NoChanges
	player := that.Player

	that.LastX = x2
	that.LastY = y2
	that.SetBoard(x1, y1, x2, y2, player)

	if lineThrough(that.SubBoard(x1, y1), x2, y2, player) {
		that.SetGrid(x1, y1, player)
		changes |= CellChange

		if lineThrough(&that.Grid, x1, y1, player) {
			that.Status = player
			changes |= StatusChange
		}
	}

	if !changes.Has(CellChange) && full(that.SubBoard(x1, y1)) {
		that.SetGrid(x1, y1, Unreachable)
		changes |= CellChange
	}

	// a winning line already settled the status
	if changes == CellChange && full(&that.Grid) {
		that.Status = Unreachable
		changes |= StatusChange
	}

	that.Player = player.Opponent()

	return changes
}

// CopyAndPlay copies the state into target and plays the move there.
// The receiver is not modified; target plays with its own Player.
func (that *State) CopyAndPlay(target *State, x1, y1, x2, y2 int) ChangeSet {
	that.CopyTo(target)
	return target.Play(x1, y1, x2, y2)
}

// lineThrough reports whether any line of the 3x3 cells passing through (x, y) holds only value.
func lineThrough(cells *[gridSize]Value, x, y int, value Value) bool {
	at := func(i, j int) bool {
		return cells[GridIndex(i, j)] == value
	}

	switch {
	case at(x, 0) && at(x, 1) && at(x, 2):
		return true
	case at(0, y) && at(1, y) && at(2, y):
		return true
	case x == y && at(0, 0) && at(1, 1) && at(2, 2):
		return true
	case x == 2-y && at(2, 0) && at(1, 1) && at(0, 2):
		return true
	}

	return false
}

func full(cells *[gridSize]Value) bool {
	for _, cell := range cells {
		if cell == None {
			return false
		}
	}

	return true
}
