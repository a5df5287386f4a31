/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

type awaitingPlayers struct{}

func newAwaitingPlayers() *awaitingPlayers {
	return &awaitingPlayers{}
}

func (w *awaitingPlayers) kind() PhaseKind {
	return PhaseAwaitingPlayers
}

func (w *awaitingPlayers) enter(*Room) phase {
	return nil
}

func (w *awaitingPlayers) exit(*Room) {}

func (w *awaitingPlayers) timeout() <-chan struct{} {
	return nil
}

func (w *awaitingPlayers) expire(*Room) {}

func (w *awaitingPlayers) snapshot(r *Room, viewer *Player) any {
	if viewer == nil {
		return HostWaitingView{
			Phase:        tagHostWaitingRoom,
			Code:         r.code,
			PlayerAmount: len(r.players),
		}
	}

	return PlayerWaitingView{
		Phase:        tagWaitingRoom,
		Code:         r.code,
		PlayerNumber: viewer.Slot,
	}
}

func (w *awaitingPlayers) receive(r *Room, sender *Player, msg Inbound) error {
	switch action := msg.Get("action"); action {
	case ActionStartGame:
		if sender != nil {
			return stateError("Only the host can start the game")
		}
		if len(r.players) < r.settings.MinPlayers {
			return stateError("Not enough players!")
		}

		r.advance(newDebateRound(1))

		return nil
	default:
		return unknownAction(action)
	}
}

func unknownAction(action string) error {
	if action == "" {
		return stateError("Missing action")
	}

	return stateError("Action %q is not available right now", action)
}
