package engine

// Color represents one of the selectable color labels
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

// colorSet is the fixed ordered set of labels used for both the target and the buttons.
var colorSet = [...]Color{Red, Blue, Green, Yellow}

// Phase represents the macro-state of the game screen
type Phase string

const (
	// PhaseInstructions is the initial screen, shown until the player presses start.
	PhaseInstructions Phase = "instructions"
	// PhasePlaying is entered by Start and never left.
	PhasePlaying Phase = "playing"
)

const (
	// HighScoreKey is the only key ever read from or written to the score store.
	HighScoreKey = "highestScore"

	// Defaults reproduce the classic game
	DefaultStartTimer     = 3
	DefaultLevelUpEvery   = 5
	DefaultTimerPenalty   = 1
	DefaultMinTimer       = 1
	DefaultTickIntervalMs = 1000

	// Validation constants
	MinTickIntervalMs = 50
	MaxTickIntervalMs = 60000
	MaxStartTimer     = 60
)

// EventType identifies an observational note emitted by a transition
type EventType string

const (
	EventStart     EventType = "start"
	EventCorrect   EventType = "correct"
	EventPulse     EventType = "pulse"
	EventLevelUp   EventType = "level_up"
	EventHighScore EventType = "high_score"
	EventReset     EventType = "reset"
	EventTick      EventType = "tick"
)

// ResetReason explains why a reset happened
type ResetReason string

const (
	ResetMismatch ResetReason = "mismatch"
	ResetTimeout  ResetReason = "timeout"
	ResetStart    ResetReason = "start"
	ResetManual   ResetReason = "manual"
)

// Event is emitted by a transition. Events never feed back into the state.
type Event struct {
	Type    EventType   `json:"type"`
	Reason  ResetReason `json:"reason,omitempty"`
	Score   int         `json:"score"`
	Level   int         `json:"level"`
	Timer   int         `json:"timer"`
	Color   Color       `json:"color,omitempty"`
	Message string      `json:"message,omitempty"`
}

// GameState represents the complete game state of the session
type GameState struct {
	Score         int   `json:"score"`
	Level         int   `json:"level"`
	Timer         int   `json:"timer"`
	CurrentTarget Color `json:"current_target"`
	HighScore     int   `json:"high_score"`
	Started       bool  `json:"started"`
	Phase         Phase `json:"phase"`

	Message    string `json:"message"`
	ConfigName string `json:"config_name"`

	// Session statistics; they survive resets like the high score.
	Rounds       int `json:"rounds"`
	BestLevel    int `json:"best_level"`
	TotalCorrect int `json:"total_correct"`
}

// Clone returns an independent copy of the state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	return &c
}
