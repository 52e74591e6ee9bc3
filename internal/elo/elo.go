// Package elo implements the rating update applied at game termination.
package elo

import "math"

const (
	// K is the fixed coefficient applied to every rated game.
	K = 32

	// Floor is the minimum rating a player can hold.
	Floor = 100

	// Default is the rating assigned to new users.
	Default = 1200
)

// Actual scores.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// Expected returns the expected score of a player rated a against one rated b:
// 1 / (1 + 10^((b − a)/400)).
func Expected(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// Next returns the player's new rating after scoring actual against an
// opponent rated opp. Rounded to the nearest integer, floored at Floor.
func Next(rating, opp int, actual float64) int {
	next := rating + int(math.Round(K*(actual-Expected(rating, opp))))
	if next < Floor {
		next = Floor
	}
	return next
}

// Delta returns the signed rating change without applying the floor.
func Delta(rating, opp int, actual float64) int {
	return int(math.Round(K * (actual - Expected(rating, opp))))
}
