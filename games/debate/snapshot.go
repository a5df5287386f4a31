/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"encoding/json"
	"strconv"
)

// Values of the "type" field distinguishing views within a phase.
const (
	viewHost          = "host"
	viewPlayer        = "player"
	viewDebater       = "debater"
	viewStanceMissing = "debaterStanceMissing"
	viewStanceGiven   = "debaterStanceGiven"
	viewPickingPlayer = "pickingPlayer"
)

type HostWaitingView struct {
	Phase        string `json:"phase"`
	Code         string `json:"code"`
	PlayerAmount int    `json:"playerAmount"`
}

type PlayerWaitingView struct {
	Phase        string `json:"phase"`
	Code         string `json:"code"`
	PlayerNumber int    `json:"playerNumber"`
}

type DebaterInfo struct {
	PlayerNumber int    `json:"playerNumber"`
	Username     string `json:"username"`
}

type StanceHostView struct {
	Phase             string        `json:"phase"`
	Type              string        `json:"type"`
	Round             int           `json:"round"`
	SecondsLeft       int           `json:"secondsLeft"`
	Question          string        `json:"question"`
	DebatersWithNames []DebaterInfo `json:"debatersWithNames"`
}

// StanceDebaterView carries the question until the debater has answered,
// and their own position afterwards.
type StanceDebaterView struct {
	Phase       string `json:"phase"`
	Type        string `json:"type"`
	SecondsLeft int    `json:"secondsLeft"`
	Question    string `json:"question,omitempty"`
	Position    string `json:"position,omitempty"`
}

type StancePickingView struct {
	Phase       string `json:"phase"`
	Type        string `json:"type"`
	SecondsLeft int    `json:"secondsLeft"`
	Debaters    []int  `json:"debaters"`
}

// DiscussionHostView is encoded with one "position<N>" key per debater slot.
type DiscussionHostView struct {
	Phase            string         `json:"phase"`
	Type             string         `json:"type"`
	Round            int            `json:"round"`
	Question         string         `json:"question"`
	SecondsLeft      int            `json:"secondsLeft"`
	Debaters         []int          `json:"debaters"`
	Positions        map[int]string `json:"-"`
	UndecidedPlayers []int          `json:"undecidedPlayers"`
}

func (v DiscussionHostView) MarshalJSON() ([]byte, error) {
	type plain DiscussionHostView

	return marshalWithPositions(plain(v), v.Positions)
}

type DiscussionDebaterView struct {
	Phase       string `json:"phase"`
	Type        string `json:"type"`
	Question    string `json:"question"`
	SecondsLeft int    `json:"secondsLeft"`
	Message     string `json:"message"`
	Position    string `json:"position"`
}

// DiscussionPickingView is encoded like DiscussionHostView. Supporting is
// the viewer's current choice: a slot, -1 for an abstention, or absent if
// they have not picked yet.
type DiscussionPickingView struct {
	Phase       string         `json:"phase"`
	Type        string         `json:"type"`
	Question    string         `json:"question"`
	SecondsLeft int            `json:"secondsLeft"`
	Debaters    []int          `json:"debaters"`
	Positions   map[int]string `json:"-"`
	Supporting  *int           `json:"supporting,omitempty"`
}

func (v DiscussionPickingView) MarshalJSON() ([]byte, error) {
	type plain DiscussionPickingView

	return marshalWithPositions(plain(v), v.Positions)
}

type HostResultsView struct {
	Phase       string             `json:"phase"`
	Type        string             `json:"type"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type PlayerResultsView struct {
	Phase         string `json:"phase"`
	Type          string `json:"type"`
	PlayersPoints int    `json:"playersPoints"`
}

func marshalWithPositions(v any, positions map[int]string) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}

	for slot, position := range positions {
		value, err := json.Marshal(position)
		if err != nil {
			return nil, err
		}

		fields["position"+strconv.Itoa(slot)] = value
	}

	return json.Marshal(fields)
}
