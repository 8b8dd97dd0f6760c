package game

import (
	"fmt"
	"math/rand"

	"minebet/models"
)

// Board geometry and payout table. These are product constants, not
// deployment configuration.
const (
	GridSize   = 5
	TotalTiles = GridSize * GridSize
	MineCount  = 3

	// MaxMultiplier is a hard cap in hundredths (5.00x), independent of
	// the table below.
	MaxMultiplier = 500
)

// multipliers maps tiles opened to the payout multiplier in hundredths.
// Counts past the table floor at the last defined value.
var multipliers = map[int]int64{
	1: 110,
	2: 121,
	3: 133,
	4: 146,
	5: 161,
}

const lastTabledCount = 5

// Outcome is the result of revealing a tile.
type Outcome int

const (
	OutcomeSafe Outcome = iota
	OutcomeMine
)

// Engine implements the mines game rules. It is stateless: every method
// operates only on the session handed to it.
type Engine struct{}

// NewEngine creates a game engine.
func NewEngine() *Engine {
	return &Engine{}
}

// NewBoard draws MineCount distinct tile indices uniformly at random
// from the TotalTiles positions. Every C(25,3) mine set is equally
// likely.
func (e *Engine) NewBoard() []int {
	perm := rand.Perm(TotalTiles)
	mines := make([]int, MineCount)
	copy(mines, perm[:MineCount])
	return mines
}

// Multiplier returns the payout multiplier in hundredths for the given
// number of opened tiles. Multiplier(0) is 100 (1.00x).
func (e *Engine) Multiplier(tilesOpened int) int64 {
	if tilesOpened <= 0 {
		return 100
	}
	m, ok := multipliers[tilesOpened]
	if !ok {
		m = multipliers[lastTabledCount]
	}
	if m > MaxMultiplier {
		return MaxMultiplier
	}
	return m
}

// Payout computes stake scaled by the multiplier for the given opened
// tile count, in kobo.
func (e *Engine) Payout(stake int64, tilesOpened int) int64 {
	return stake * e.Multiplier(tilesOpened) / 100
}

// Reveal opens a tile on the session and reports whether it was a mine.
// An already-opened tile is rejected without any state change.
//
// The third reveal of a session is forced adverse: the clicked tile is
// recorded as the forced tile and, if it is not already a mine, one
// existing mine (chosen at random) is swapped out for it. The mine count
// never changes and the rule fires at most once per session.
func (e *Engine) Reveal(session *models.GameSession, tile int) (Outcome, error) {
	if tile < 0 || tile >= TotalTiles {
		return OutcomeSafe, fmt.Errorf("tile %d out of range: %w", tile, models.ErrInvalidInput)
	}
	if session.HasOpened(tile) {
		return OutcomeSafe, fmt.Errorf("tile %d already opened: %w", tile, models.ErrInvalidInput)
	}

	session.RevealCount++
	session.Opened = append(session.Opened, tile)

	if session.RevealCount == 3 && session.ForcedTile == nil {
		forced := tile
		session.ForcedTile = &forced
		if !session.IsMine(tile) {
			victim := rand.Intn(len(session.Mines))
			session.Mines[victim] = tile
		}
	}

	if session.IsMine(tile) {
		return OutcomeMine, nil
	}
	return OutcomeSafe, nil
}

// RenderBoard renders the 5x5 grid. Opened safe tiles show 🟢, opened
// mines 💥, unopened tiles ⬜ unless revealAll is set, in which case
// unopened mines are disclosed as 💣. Pure function of its inputs.
func (e *Engine) RenderBoard(opened, mines []int, revealAll bool) string {
	openedSet := make(map[int]bool, len(opened))
	for _, t := range opened {
		openedSet[t] = true
	}
	mineSet := make(map[int]bool, len(mines))
	for _, m := range mines {
		mineSet[m] = true
	}

	var grid []byte
	for i := 0; i < TotalTiles; i++ {
		switch {
		case openedSet[i] && mineSet[i]:
			grid = append(grid, "💥"...)
		case openedSet[i]:
			grid = append(grid, "🟢"...)
		case revealAll && mineSet[i]:
			grid = append(grid, "💣"...)
		default:
			grid = append(grid, "⬜"...)
		}
		if (i+1)%GridSize == 0 {
			grid = append(grid, '\n')
		}
	}
	return string(grid)
}
