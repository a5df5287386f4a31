/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxStanceLength = 280
	abstainChoice   = -1
	debaterMessage  = "Don't look at your phone, convince people!"
)

// roundStage is one half of a debate round: *stanceTaking or
// *publicDiscussion.
type roundStage interface {
	kind() PhaseKind
	snapshot(r *Room, round int, viewer *Player) any
	receive(r *Room, sender *Player, msg Inbound) error
	countdown() *Countdown
}

// debateRound runs stance taking followed by public discussion, then hands
// off to the next round or to the results.
type debateRound struct {
	number  int
	current roundStage
}

func newDebateRound(number int) *debateRound {
	return &debateRound{number: number}
}

func (d *debateRound) kind() PhaseKind {
	if d.current == nil {
		return PhaseStanceTaking
	}

	return d.current.kind()
}

func (d *debateRound) enter(r *Room) phase {
	if len(r.players) < 2 {
		r.log.Warn().Int("players", len(r.players)).Msg("not enough players left for a debate, ending game")

		return newResultsDisplay()
	}

	r.round = d.number
	d.current = newStanceTaking(r)

	return nil
}

func (d *debateRound) exit(*Room) {
	if d.current != nil {
		d.current.countdown().Cancel()
	}
}

func (d *debateRound) timeout() <-chan struct{} {
	if d.current == nil {
		return nil
	}

	return d.current.countdown().Done()
}

func (d *debateRound) expire(r *Room) {
	switch stage := d.current.(type) {
	case *stanceTaking:
		d.current = newPublicDiscussion(r, stage)
		r.log.Info().Str("phase", string(PhasePublicDiscussion)).Int("round", d.number).Msg("entering phase")
		r.broadcastSnapshot()

	case *publicDiscussion:
		stage.tally(r)

		if d.number >= r.settings.Rounds {
			r.advance(newResultsDisplay())
		} else {
			r.advance(newDebateRound(d.number + 1))
		}
	}
}

func (d *debateRound) snapshot(r *Room, viewer *Player) any {
	return d.current.snapshot(r, d.number, viewer)
}

func (d *debateRound) receive(r *Room, sender *Player, msg Inbound) error {
	return d.current.receive(r, sender, msg)
}

type stanceTaking struct {
	topic     string
	debaters  [2]*Player
	positions [2]string
	clock     *Countdown
}

// newStanceTaking picks two distinct debaters uniformly at random and arms
// the stance countdown. The room must hold at least two players.
func newStanceTaking(r *Room) *stanceTaking {
	picks := r.rng.Perm(len(r.players))

	s := &stanceTaking{
		topic:    r.settings.Topics.RandomTopic(r.rng),
		debaters: [2]*Player{r.players[picks[0]], r.players[picks[1]]},
		clock:    NewCountdown(),
	}
	s.clock.Start(r.settings.StanceDuration)

	r.log.Info().
		Int("debater1", s.debaters[0].Slot).
		Int("debater2", s.debaters[1].Slot).
		Str("topic", s.topic).
		Msg("debaters selected")

	return s
}

func (s *stanceTaking) kind() PhaseKind {
	return PhaseStanceTaking
}

func (s *stanceTaking) countdown() *Countdown {
	return s.clock
}

func (s *stanceTaking) debaterIndex(p *Player) int {
	return slices.Index(s.debaters[:], p)
}

func (s *stanceTaking) receive(r *Room, sender *Player, msg Inbound) error {
	switch action := msg.Get("action"); action {
	case ActionInputStance:
		if sender == nil {
			return stateError("The host cannot input a stance")
		}

		idx := s.debaterIndex(sender)
		if idx < 0 {
			return stateError("Only debaters can input a stance")
		}

		stance := strings.TrimSpace(msg.Get("stance"))
		if stance == "" {
			return stateError("Stance cannot be empty")
		}
		if utf8.RuneCountInString(stance) > maxStanceLength {
			return stateError("Stance is too long")
		}

		s.positions[idx] = stance
		r.log.Info().Int("slot", sender.Slot).Msg("stance received")
		r.sendSnapshot(sender)

		if s.positions[0] != "" && s.positions[1] != "" {
			s.clock.Cancel()
		}

		return nil
	default:
		return unknownAction(action)
	}
}

func (s *stanceTaking) snapshot(r *Room, round int, viewer *Player) any {
	secondsLeft := s.clock.RemainingSeconds()

	if viewer == nil {
		named := make([]DebaterInfo, 0, len(s.debaters))
		for _, d := range s.debaters {
			named = append(named, DebaterInfo{PlayerNumber: d.Slot, Username: d.Username})
		}

		return StanceHostView{
			Phase:             tagStanceTaking,
			Type:              viewHost,
			Round:             round,
			SecondsLeft:       secondsLeft,
			Question:          s.topic,
			DebatersWithNames: named,
		}
	}

	if idx := s.debaterIndex(viewer); idx >= 0 {
		if s.positions[idx] == "" {
			return StanceDebaterView{
				Phase:       tagStanceTaking,
				Type:        viewStanceMissing,
				SecondsLeft: secondsLeft,
				Question:    s.topic,
			}
		}

		return StanceDebaterView{
			Phase:       tagStanceTaking,
			Type:        viewStanceGiven,
			SecondsLeft: secondsLeft,
			Position:    s.positions[idx],
		}
	}

	return StancePickingView{
		Phase:       tagStanceTaking,
		Type:        viewPickingPlayer,
		SecondsLeft: secondsLeft,
		Debaters:    []int{s.debaters[0].Slot, s.debaters[1].Slot},
	}
}

type publicDiscussion struct {
	topic     string
	debaters  [2]*Player
	positions [2]string

	// supports holds each voter's latest choice. A nil value is an explicit
	// abstention; a missing key means the voter never chose. Both count for
	// nobody.
	supports map[*Player]*Player
	clock    *Countdown
}

func newPublicDiscussion(r *Room, stance *stanceTaking) *publicDiscussion {
	d := &publicDiscussion{
		topic:     stance.topic,
		debaters:  stance.debaters,
		positions: stance.positions,
		supports:  make(map[*Player]*Player),
		clock:     NewCountdown(),
	}
	d.clock.Start(r.settings.DiscussionDuration)

	return d
}

func (d *publicDiscussion) kind() PhaseKind {
	return PhasePublicDiscussion
}

func (d *publicDiscussion) countdown() *Countdown {
	return d.clock
}

func (d *publicDiscussion) debaterIndex(p *Player) int {
	return slices.Index(d.debaters[:], p)
}

func (d *publicDiscussion) debaterBySlot(slot int) *Player {
	for _, p := range d.debaters {
		if p.Slot == slot {
			return p
		}
	}

	return nil
}

func (d *publicDiscussion) receive(r *Room, sender *Player, msg Inbound) error {
	switch action := msg.Get("action"); action {
	case ActionInputSupport:
		if sender == nil {
			return stateError("The host cannot pick a side")
		}
		if d.debaterIndex(sender) >= 0 {
			return stateError("Debaters cannot pick a side")
		}

		choice, err := strconv.Atoi(strings.TrimSpace(msg.Get("debater")))
		if err != nil {
			return stateError("Invalid debater")
		}

		target := undecidedPodium
		if choice == abstainChoice {
			d.supports[sender] = nil
		} else {
			debater := d.debaterBySlot(choice)
			if debater == nil {
				return stateError("Invalid debater")
			}
			d.supports[sender] = debater
			target = podiumFor(debater.Slot)
		}

		r.send(r.host, Outbound{Type: GameUpdate, Content: PodiumUpdate{
			Event:        EventMovePlayerToPodium,
			PlayerToMove: sender.Slot,
			TargetPodium: target,
		}})
		r.sendSnapshot(sender)

		return nil
	default:
		return unknownAction(action)
	}
}

// tally credits each debater with one point per supporter still in the room.
func (d *publicDiscussion) tally(r *Room) {
	var counts [2]int

	for _, p := range r.players {
		if d.debaterIndex(p) >= 0 {
			continue
		}

		target, ok := d.supports[p]
		if !ok || target == nil {
			continue
		}

		if idx := d.debaterIndex(target); idx >= 0 {
			counts[idx]++
		}
	}

	for i, debater := range d.debaters {
		debater.Score += counts[i]
	}

	r.log.Info().
		Int("debater1", d.debaters[0].Slot).Int("votes1", counts[0]).
		Int("debater2", d.debaters[1].Slot).Int("votes2", counts[1]).
		Msg("discussion tallied")
}

func (d *publicDiscussion) undecided(r *Room) []int {
	slots := []int{}

	for _, p := range r.players {
		if d.debaterIndex(p) >= 0 {
			continue
		}
		if target, ok := d.supports[p]; ok && target != nil {
			continue
		}
		slots = append(slots, p.Slot)
	}
	slices.Sort(slots)

	return slots
}

func (d *publicDiscussion) positionsBySlot() map[int]string {
	return map[int]string{
		d.debaters[0].Slot: d.positions[0],
		d.debaters[1].Slot: d.positions[1],
	}
}

func (d *publicDiscussion) snapshot(r *Room, round int, viewer *Player) any {
	secondsLeft := d.clock.RemainingSeconds()
	debaters := []int{d.debaters[0].Slot, d.debaters[1].Slot}

	if viewer == nil {
		return DiscussionHostView{
			Phase:            tagDiscussion,
			Type:             viewHost,
			Round:            round,
			Question:         d.topic,
			SecondsLeft:      secondsLeft,
			Debaters:         debaters,
			Positions:        d.positionsBySlot(),
			UndecidedPlayers: d.undecided(r),
		}
	}

	if idx := d.debaterIndex(viewer); idx >= 0 {
		return DiscussionDebaterView{
			Phase:       tagDiscussion,
			Type:        viewDebater,
			Question:    d.topic,
			SecondsLeft: secondsLeft,
			Message:     debaterMessage,
			Position:    d.positions[idx],
		}
	}

	view := DiscussionPickingView{
		Phase:       tagDiscussion,
		Type:        viewPickingPlayer,
		Question:    d.topic,
		SecondsLeft: secondsLeft,
		Debaters:    debaters,
		Positions:   d.positionsBySlot(),
	}
	if target, ok := d.supports[viewer]; ok {
		choice := abstainChoice
		if target != nil {
			choice = target.Slot
		}
		view.Supporting = &choice
	}

	return view
}
