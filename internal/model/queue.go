package model

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// MatchFoundEvent is pushed to both players once the queue pairs them.
type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}

// Queue is a FIFO of players waiting for an opponent.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(player.ID) >= 0 {
		return ErrAlreadyQueued
	}
	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		JoinedAt: time.Now(),
	})
	return nil
}

// RemovePlayer drops a player who gave up waiting. It reports whether the
// player was queued.
func (q *Queue) RemovePlayer(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(playerID)
	if i < 0 {
		return false
	}
	q.players = slices.Delete(q.players, i, i+1)
	return true
}

func (q *Queue) indexOf(playerID string) int {
	return slices.IndexFunc(q.players, func(qp QueuedPlayer) bool {
		return qp.Player.ID == playerID
	})
}

// GetNextPair pops the two players who have waited longest.
func (q *Queue) GetNextPair() (Player, Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.players) < 2 {
		return Player{}, Player{}, false
	}
	player1 := q.players[0].Player
	player2 := q.players[1].Player
	q.players = q.players[2:]
	return player1, player2, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
