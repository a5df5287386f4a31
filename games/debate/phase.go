/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

// PhaseKind names the stage a room is in. Phases proceed in the order listed,
// with StanceTaking and PublicDiscussion repeating once per round.
type PhaseKind string

const (
	// PhaseAwaitingPlayers is the lobby. Players may join, and the host may
	// start the game once enough of them have.
	PhaseAwaitingPlayers PhaseKind = "awaiting_players"
	// PhaseStanceTaking is the first half of a debate round: two debaters
	// write their positions on the round's question.
	PhaseStanceTaking PhaseKind = "stance_taking"
	// PhasePublicDiscussion is the second half of a debate round: everyone
	// else picks a side while the debaters argue out loud.
	PhasePublicDiscussion PhaseKind = "public_discussion"
	// PhaseResultsDisplay is terminal. The leaderboard is frozen on entry.
	PhaseResultsDisplay PhaseKind = "results_display"
	// PhaseClosed is reported for rooms that have been torn down.
	PhaseClosed PhaseKind = "closed"
)

// Snapshot phase tags as sent on the wire.
const (
	tagWaitingRoom     = "waitingRoom"
	tagHostWaitingRoom = "hostWaitingRoom"
	tagStanceTaking    = "stanceTaking"
	tagDiscussion      = "discussion"
	tagGameEnd         = "gameEnd"
)

// phase is implemented only by the variants in this package:
// *awaitingPlayers, *debateRound and *resultsDisplay. All methods run on the
// room goroutine.
type phase interface {
	kind() PhaseKind

	// enter runs once when the phase becomes current. Returning a non-nil
	// phase redirects the room to it immediately.
	enter(r *Room) phase
	exit(r *Room)

	// snapshot projects the phase for viewer, or for the host when viewer
	// is nil.
	snapshot(r *Room, viewer *Player) any
	receive(r *Room, sender *Player, msg Inbound) error

	// timeout is closed when the phase's countdown resolves. Untimed phases
	// return nil.
	timeout() <-chan struct{}
	expire(r *Room)
}

var (
	_ phase = (*awaitingPlayers)(nil)
	_ phase = (*debateRound)(nil)
	_ phase = (*resultsDisplay)(nil)
)
