package engine

import (
	"math/rand"

	"github.com/vovakirdan/edu-arcade/internal/core"
)

// Layout characters for grid levels.
const (
	CellWall   = '#'
	CellGoal   = 'G'
	CellCoin   = '*'
	CellStart  = 'P'
	CellHazard = 'X'
)

// CoinValue is the score of a layout coin.
const CoinValue = 10

// buildLayout adds the fixed entities of a grid layout to store.
// It returns the centre of the start cell if the layout has one.
func buildLayout(layout []string, store *Store) (core.Vec, bool) {
	var start core.Vec
	found := false

	for row, line := range layout {
		col := 0
		for _, ch := range line {
			c := core.V(float64(col)+0.5, float64(row)+0.5)
			unit := core.V(1, 1)
			switch ch {
			case CellWall:
				store.Add(&Entity{Kind: KindObstacle, Tag: "wall", Pos: c, Size: unit, Solid: true, Glyph: '█', Color: core.ColorGray})
			case CellGoal:
				store.Add(&Entity{Kind: KindCollectible, Tag: TagGoal, Pos: c, Size: unit, Glyph: '⚑', Color: core.ColorBrightGreen})
			case CellCoin:
				store.Add(&Entity{Kind: KindCollectible, Tag: "coin", Pos: c, Size: core.V(0.6, 0.6), Value: CoinValue, Shape: ShapeCircle, Glyph: '•', Color: core.ColorYellow})
			case CellHazard:
				store.Add(&Entity{Kind: KindHazard, Tag: "trap", Pos: c, Size: core.V(0.8, 0.8), Damage: 1, Glyph: 'x', Color: core.ColorRed})
			case CellStart:
				start = c
				found = true
			}
			col++
		}
	}
	return start, found
}

// cardSymbols labels card faces by pair number.
const cardSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CardGlyph returns the face symbol of a card pair.
func CardGlyph(pair int) rune {
	if pair < 1 || pair > len(cardSymbols) {
		return '?'
	}
	return rune(cardSymbols[pair-1])
}

// dealCards lays out shuffled memory cards centred in the field.
// It returns the centre of the first card and the cursor step between cards.
func dealCards(m MatchSpec, field core.Vec, store *Store, rng *rand.Rand) (core.Vec, core.Vec) {
	n := m.Pairs * 2
	pairs := make([]int, 0, n)
	for p := 1; p <= m.Pairs; p++ {
		pairs = append(pairs, p, p)
	}
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	cols := m.Columns
	if cols <= 0 {
		cols = 4
	}
	rows := (n + cols - 1) / cols
	size := m.CardSize
	if size.X <= 0 || size.Y <= 0 {
		size = core.V(5, 3)
	}

	step := core.V(size.X+m.Gap, size.Y+m.Gap)
	totalW := float64(cols)*size.X + float64(cols-1)*m.Gap
	totalH := float64(rows)*size.Y + float64(rows-1)*m.Gap
	origin := core.V((field.X-totalW)/2+size.X/2, (field.Y-totalH)/2+size.Y/2)

	for i, pair := range pairs {
		col, row := i%cols, i/cols
		store.Add(&Entity{
			Kind:  KindCollectible,
			Tag:   "card",
			Pos:   origin.Add(core.V(float64(col)*step.X, float64(row)*step.Y)),
			Size:  size,
			Pair:  pair,
			Value: m.Value,
			Glyph: CardGlyph(pair),
			Color: core.Color(int(core.ColorRed) + (pair-1)%6),
		})
	}
	return origin, step
}
