// Package sandbox draws the random values synthetic resources are built
// from. A fixed seed makes a run reproducible.
package sandbox

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cce/oncogen/internal/domain/codetables"
)

// DefaultMinDate is the earliest date the generator draws.
var DefaultMinDate = time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator is a seeded source of codes, dates and run indexes. It is
// safe for concurrent use.
type DataGenerator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	minDate time.Time
	now     func() time.Time
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen. A zero minDate uses DefaultMinDate.
func NewDataGenerator(seed int64, minDate time.Time) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if minDate.IsZero() {
		minDate = DefaultMinDate
	}
	return &DataGenerator{
		rng:     rand.New(rand.NewSource(seed)),
		minDate: truncateDay(minDate),
		now:     time.Now,
	}
}

// Pick returns a code drawn uniformly from table.
func (g *DataGenerator) Pick(table codetables.TableID) string {
	t := codetables.MustGet(table)
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.Concepts[g.rng.Intn(len(t.Concepts))].Code
}

// Bool returns a fair coin flip.
func (g *DataGenerator) Bool() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(2) == 0
}

// Date returns a day between the minimum date and today, inclusive.
func (g *DataGenerator) Date() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dateFrom(g.minDate)
}

// Period returns two days, the second never before the first.
func (g *DataGenerator) Period() (time.Time, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	start := g.dateFrom(g.minDate)
	return start, g.dateFrom(start)
}

// RunStart returns a random 16-bit starting run index.
func (g *DataGenerator) RunStart() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return uint32(g.rng.Intn(1 << 16))
}

// dateFrom draws a day in [from, today]. Callers hold mu.
func (g *DataGenerator) dateFrom(from time.Time) time.Time {
	today := truncateDay(g.now())
	days := int(today.Sub(from).Hours() / 24)
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, g.rng.Intn(days+1))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
