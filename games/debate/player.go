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

const maxUsernameLength = 24

// Player is a joined participant. The connection is referenced, never owned.
type Player struct {
	Username string
	Score    int
	Slot     int
	conn     *Conn
}

// lowestFreeSlot returns the smallest positive slot not held by any player.
func lowestFreeSlot(players []*Player) int {
	taken := make(map[int]bool, len(players))
	for _, p := range players {
		taken[p.Slot] = true
	}

	slot := 1
	for taken[slot] {
		slot++
	}

	return slot
}

func cleanUsername(name string, slot int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player " + strconv.Itoa(slot)
	}

	if utf8.RuneCountInString(name) > maxUsernameLength {
		name = string([]rune(name)[:maxUsernameLength])
	}

	return name
}

// LeaderboardEntry is one line of the final standings.
type LeaderboardEntry struct {
	PlayerNumber int    `json:"playerNumber"`
	Username     string `json:"username"`
	Score        int    `json:"score"`
}

// leaderboard orders players by score, highest first. Ties keep slot order.
func leaderboard(players []*Player) []LeaderboardEntry {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b *Player) int {
		return a.Slot - b.Slot
	})
	slices.SortStableFunc(sorted, func(a, b *Player) int {
		return b.Score - a.Score
	})

	entries := make([]LeaderboardEntry, 0, len(sorted))
	for _, p := range sorted {
		entries = append(entries, LeaderboardEntry{
			PlayerNumber: p.Slot,
			Username:     p.Username,
			Score:        p.Score,
		})
	}

	return entries
}
