package gglife

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Randomize sets every cell of g independently alive with probability p,
// drawing from a PCG source seeded with seed. The same seed always produces
// the same pattern.
func Randomize(g *Grid, p float64, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range g.cells {
		if rng.Float64() < p {
			g.cells[i] = Alive
		} else {
			g.cells[i] = Dead
		}
	}
}

// ParsePattern parses a plaintext pattern: 'O' or '*' for a live cell, '.'
// or a space for a dead one, one row per line. Lines starting with '!' are
// comments. Short rows are padded with dead cells.
func ParsePattern(src string) (*Grid, error) {
	var rows []string
	width := 0
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "!") {
			continue
		}
		rows = append(rows, line)
		width = max(width, len(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("gglife: read pattern: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}

	g, err := NewGrid(width, len(rows))
	if err != nil {
		return nil, fmt.Errorf("gglife: empty pattern: %w", err)
	}
	for y, row := range rows {
		for x, ch := range []byte(row) {
			switch ch {
			case 'O', '*':
				g.cells[y*width+x] = Alive
			case '.', ' ':
			default:
				return nil, fmt.Errorf("gglife: pattern row %d: unexpected %q", y+1, ch)
			}
		}
	}
	return g, nil
}
