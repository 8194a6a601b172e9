package model

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// Queue holds players waiting for a match, oldest first.
type Queue struct {
	mu      sync.Mutex
	waiting []QueuedPlayer
}

func NewQueue() *Queue {
	return &Queue{waiting: []QueuedPlayer{}}
}

func (q *Queue) indexOf(playerID string) int {
	return slices.IndexFunc(q.waiting, func(qp QueuedPlayer) bool {
		return qp.Player.ID == playerID
	})
}

// AddPlayer appends player, refusing ids that are already waiting.
func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(player.ID) >= 0 {
		return fmt.Errorf("player %s already in queue", player.ID)
	}
	q.waiting = append(q.waiting, QueuedPlayer{Player: player, JoinedAt: time.Now()})
	return nil
}

// Remove drops a player from the queue, reporting whether it was queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(playerID)
	if i < 0 {
		return false
	}
	q.waiting = slices.Delete(q.waiting, i, i+1)
	return true
}

// GetNextPair pops the two longest-waiting players for which ready holds.
// The first one plays white. Players that are not ready keep their place.
func (q *Queue) GetNextPair(ready func(Player) bool) (white, black Player, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	picked := make([]int, 0, 2)
	for i, qp := range q.waiting {
		if ready(qp.Player) {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) < 2 {
		return Player{}, Player{}, false
	}
	white, black = q.waiting[picked[0]].Player, q.waiting[picked[1]].Player
	q.waiting = slices.Delete(q.waiting, picked[1], picked[1]+1)
	q.waiting = slices.Delete(q.waiting, picked[0], picked[0]+1)
	return white, black, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
