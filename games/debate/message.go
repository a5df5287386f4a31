/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Handshake frames, exchanged as plain text before any JSON.
const (
	HandshakeHello   = "HELLO GAME"
	HandshakeWelcome = "WELCOME"
	HandshakeInvalid = "INVALID HANDSHAKE"
)

// InboundType is the "type" field of a client request.
type InboundType string

const (
	// CreateGame opens a new room with the sender as host.
	CreateGame InboundType = "CreateGame"
	// ConnectToGame joins an existing room as a player.
	ConnectToGame InboundType = "ConnectToGame"
	// GameAction is the catch-all for in-game input, keyed by content["action"].
	GameAction InboundType = "GameAction"
	// RequestStateInfo asks for a fresh snapshot of the sender's view.
	RequestStateInfo InboundType = "RequestStateInfo"
)

func (t InboundType) valid() bool {
	switch t {
	case CreateGame, ConnectToGame, GameAction, RequestStateInfo:
		return true
	}

	return false
}

// OutboundType is the "type" field of a server message.
type OutboundType string

const (
	InvalidRequest  OutboundType = "InvalidRequest"
	ConnectedAsHost OutboundType = "ConnectedAsHost"
	ConnectedToGame OutboundType = "ConnectedToGame"
	StanceSnapshot  OutboundType = "StanceSnapshot"
	GameUpdate      OutboundType = "GameUpdate"
)

// GameAction names carried in content["action"].
const (
	ActionStartGame    = "startGame"
	ActionInputStance  = "inputStance"
	ActionInputSupport = "inputSupport"
	ActionPlayAgain    = "playAgain"
)

// GameUpdate event names carried in content["event"].
const (
	EventPlayerJoin         = "playerJoin"
	EventPlayerLeft         = "playerLeft"
	EventMovePlayerToPodium = "movePlayerToPodium"
)

// Inbound is a decoded client request.
type Inbound struct {
	Type    InboundType
	Content map[string]string
	From    *Conn
}

// Get returns content[key], or "" when absent.
func (m Inbound) Get(key string) string {
	if m.Content == nil {
		return ""
	}

	return m.Content[key]
}

type inboundFrame struct {
	Type    *string         `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// DecodeInbound parses one client frame. Content values are flattened to
// strings: numbers and booleans keep their literal text, nulls are dropped.
// Content may also arrive as a JSON string that itself holds the object.
func DecodeInbound(data []byte) (Inbound, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Inbound{}, protocolError("Invalid JSON")
	}

	if frame.Type == nil {
		return Inbound{}, protocolError("Missing type")
	}

	t := InboundType(*frame.Type)
	if !t.valid() {
		return Inbound{}, protocolError("Unknown type %q", *frame.Type)
	}

	content, err := decodeContent(frame.Content)
	if err != nil {
		return Inbound{}, err
	}

	return Inbound{Type: t, Content: content}, nil
}

func decodeContent(raw json.RawMessage) (map[string]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, protocolError("Invalid content")
		}

		return decodeContent(json.RawMessage(nested))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, protocolError("Content must be an object")
	}

	content := make(map[string]string, len(fields))
	for key, value := range fields {
		value = bytes.TrimSpace(value)

		switch {
		case len(value) == 0, bytes.Equal(value, []byte("null")):
			continue
		case value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, protocolError("Invalid value for %q", key)
			}
			content[key] = s
		case value[0] == '{', value[0] == '[':
			return nil, protocolError("Value for %q must be a string", key)
		default:
			content[key] = string(value)
		}
	}

	return content, nil
}

// Outbound is a server message. A nil Content is omitted from the frame.
type Outbound struct {
	Type    OutboundType `json:"type"`
	Content any          `json:"content,omitempty"`
}

func (m Outbound) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Notice is the payload of InvalidRequest replies.
type Notice struct {
	Message string `json:"message"`
}

func invalidRequest(text string) Outbound {
	return Outbound{Type: InvalidRequest, Content: Notice{Message: text}}
}

// HostGreeting is the payload of ConnectedAsHost.
type HostGreeting struct {
	Code string `json:"code"`
}

// PlayerGreeting is the payload of ConnectedToGame.
type PlayerGreeting struct {
	Code         string `json:"code"`
	PlayerNumber int    `json:"playerNumber"`
	Username     string `json:"username"`
}

// RosterUpdate is the GameUpdate payload for playerJoin and playerLeft.
type RosterUpdate struct {
	Event        string `json:"event"`
	Username     string `json:"username"`
	PlayerNum    int    `json:"playerNum"`
	TotalPlayers int    `json:"totalPlayers"`
}

// PodiumUpdate is the GameUpdate payload for movePlayerToPodium.
type PodiumUpdate struct {
	Event        string `json:"event"`
	PlayerToMove int    `json:"playerToMove"`
	TargetPodium string `json:"targetPodium"`
}

const undecidedPodium = "undecidedPodium"

func podiumFor(slot int) string {
	return "player" + strconv.Itoa(slot) + "Podium"
}
