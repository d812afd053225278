package game

// TimerKind names a machine-scheduled timer requested by a phase entry.
// Durations are the machine's concern so tests can shrink them.
type TimerKind int

const (
	TimerNone TimerKind = iota
	TimerRoundStart
	TimerAnimation
)

// EntryResult is the outcome of a phase's on_enter.
type EntryResult struct {
	Events []Event
	Next   Phase // synchronous chain, "" to stay
	Timer  TimerKind
}

// HandleResult is the outcome of a phase handling one action.
type HandleResult struct {
	Accepted bool
	Reason   RejectReason
	Events   []Event
	Next     Phase
}

func accepted(events ...Event) HandleResult {
	return HandleResult{Accepted: true, Events: events}
}

func rejected(reason RejectReason) HandleResult {
	return HandleResult{Reason: reason}
}

// phaseDesc is the capability table entry for one phase. The machine is
// polymorphic only over this set.
type phaseDesc struct {
	enter   func(*Game) EntryResult
	exit    func(*Game)
	allowed func(*Game, string) []ActionType
	handle  func(*Game, Action) HandleResult
}

var phaseTable map[Phase]phaseDesc

func init() {
	phaseTable = map[Phase]phaseDesc{
		PhaseWaiting:     waitingPhase,
		PhasePreparation: preparationPhase,
		PhaseRoundStart:  roundStartPhase,
		PhaseDeclaration: declarationPhase,
		PhaseTurn:        turnPhase,
		PhaseTurnResults: turnResultsPhase,
		PhaseScoring:     scoringPhase,
		PhaseGameOver:    gameOverPhase,
	}
}

// AllowedActions lists the action types the named player may send right now.
func (g *Game) AllowedActions(player string) []ActionType {
	desc, ok := phaseTable[g.Phase]
	if !ok || desc.allowed == nil {
		return nil
	}
	return desc.allowed(g, player)
}

func noExit(*Game) {}

func noEntry(*Game) EntryResult { return EntryResult{} }

func noneAllowed(*Game, string) []ActionType { return nil }
