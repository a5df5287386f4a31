/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

type resultsDisplay struct {
	standings []LeaderboardEntry
}

func newResultsDisplay() *resultsDisplay {
	return &resultsDisplay{}
}

func (d *resultsDisplay) kind() PhaseKind {
	return PhaseResultsDisplay
}

func (d *resultsDisplay) enter(r *Room) phase {
	d.standings = leaderboard(r.players)

	return nil
}

func (d *resultsDisplay) exit(*Room) {}

func (d *resultsDisplay) timeout() <-chan struct{} {
	return nil
}

func (d *resultsDisplay) expire(*Room) {}

func (d *resultsDisplay) snapshot(r *Room, viewer *Player) any {
	if viewer == nil {
		return HostResultsView{
			Phase:       tagGameEnd,
			Type:        viewHost,
			Leaderboard: d.standings,
		}
	}

	return PlayerResultsView{
		Phase:         tagGameEnd,
		Type:          viewPlayer,
		PlayersPoints: viewer.Score,
	}
}

func (d *resultsDisplay) receive(r *Room, sender *Player, msg Inbound) error {
	if sender != nil {
		r.log.Debug().Str("username", sender.Username).Str("action", msg.Get("action")).Msg("ignoring action after game end")

		return nil
	}

	switch action := msg.Get("action"); action {
	case ActionPlayAgain:
		for _, p := range r.players {
			p.Score = 0
		}
		r.round = 0
		r.advance(newAwaitingPlayers())

		return nil
	default:
		return stateError("The game is over")
	}
}
