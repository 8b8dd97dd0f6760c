package models

import (
	"time"
)

// GameSession is the live state of a single mines game. At most one
// session exists per user at any time. The stake has already been
// debited from the user's balance before the session is created.
type GameSession struct {
	UserID      int64
	Mines       []int
	Opened      []int
	Stake       int64
	RevealCount int
	// ForcedTile marks the tile the third-reveal rule converted into a
	// mine. Nil until the rule has fired; set at most once per session.
	ForcedTile *int
	StartedAt  time.Time
}

// HasOpened reports whether the tile has already been revealed.
func (s *GameSession) HasOpened(tile int) bool {
	for _, t := range s.Opened {
		if t == tile {
			return true
		}
	}
	return false
}

// IsMine reports whether the tile is currently in the mine set.
func (s *GameSession) IsMine(tile int) bool {
	for _, m := range s.Mines {
		if m == tile {
			return true
		}
	}
	return false
}
