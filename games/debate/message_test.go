/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Inbound
		wantErr string
	}{
		{
			name: "no content",
			data: `{"type":"CreateGame"}`,
			want: Inbound{Type: CreateGame},
		},
		{
			name: "string content",
			data: `{"type":"ConnectToGame","content":{"gameCode":"012345","username":"Ada"}}`,
			want: Inbound{Type: ConnectToGame, Content: map[string]string{"gameCode": "012345", "username": "Ada"}},
		},
		{
			name: "numbers and booleans keep their text",
			data: `{"type":"GameAction","content":{"action":"inputSupport","debater":-1,"sure":true}}`,
			want: Inbound{Type: GameAction, Content: map[string]string{"action": "inputSupport", "debater": "-1", "sure": "true"}},
		},
		{
			name: "nulls are dropped",
			data: `{"type":"GameAction","content":{"action":"startGame","extra":null}}`,
			want: Inbound{Type: GameAction, Content: map[string]string{"action": "startGame"}},
		},
		{
			name: "content encoded as a string",
			data: `{"type":"GameAction","content":"{\"action\":\"inputStance\",\"stance\":\"tea\"}"}`,
			want: Inbound{Type: GameAction, Content: map[string]string{"action": "inputStance", "stance": "tea"}},
		},
		{
			name:    "not json",
			data:    `HELLO GAME`,
			wantErr: "Invalid JSON",
		},
		{
			name:    "missing type",
			data:    `{"content":{}}`,
			wantErr: "Missing type",
		},
		{
			name:    "unknown type",
			data:    `{"type":"KickPlayer"}`,
			wantErr: `Unknown type "KickPlayer"`,
		},
		{
			name:    "content not an object",
			data:    `{"type":"GameAction","content":[1,2]}`,
			wantErr: "Content must be an object",
		},
		{
			name:    "nested value",
			data:    `{"type":"GameAction","content":{"action":{"name":"startGame"}}}`,
			wantErr: `Value for "action" must be a string`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tc.data))

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrProtocol))
				assert.Equal(t, tc.wantErr, reason(err))

				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("DecodeInbound() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInboundGetMissingKey(t *testing.T) {
	assert.Equal(t, "", Inbound{}.Get("action"))
	assert.Equal(t, "x", Inbound{Content: map[string]string{"action": "x"}}.Get("action"))
}

func TestOutboundEncode(t *testing.T) {
	data, err := Outbound{Type: ConnectedAsHost, Content: HostGreeting{Code: "004213"}}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ConnectedAsHost","content":{"code":"004213"}}`, string(data))

	data, err = Outbound{Type: GameUpdate}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"GameUpdate"}`, string(data))
}

func TestInvalidRequestCarriesReason(t *testing.T) {
	data, err := invalidRequest(reason(stateError("Not enough players!"))).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"InvalidRequest","content":{"message":"Not enough players!"}}`, string(data))
}

func TestPodiumNames(t *testing.T) {
	assert.Equal(t, "player3Podium", podiumFor(3))
	assert.Equal(t, "undecidedPodium", undecidedPodium)
}

func TestDiscussionViewsFlattenPositions(t *testing.T) {
	supporting := abstainChoice
	data, err := Outbound{Type: StanceSnapshot, Content: DiscussionPickingView{
		Phase:       tagDiscussion,
		Type:        viewPickingPlayer,
		Question:    "Is tea better than coffee?",
		SecondsLeft: 42,
		Debaters:    []int{1, 4},
		Positions:   map[int]string{1: "tea", 4: "coffee"},
		Supporting:  &supporting,
	}}.Encode()
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"StanceSnapshot","content":{
		"phase":"discussion",
		"type":"pickingPlayer",
		"question":"Is tea better than coffee?",
		"secondsLeft":42,
		"debaters":[1,4],
		"position1":"tea",
		"position4":"coffee",
		"supporting":-1
	}}`, string(data))
}
