// Package diag collects per-document segmentation and extraction
// diagnostics. A Collector is owned by a single document pass; parallel
// document tasks each get their own and the results are merged afterwards,
// so no locking is needed anywhere in the core.
package diag

import "sort"

type Collector struct {
	NoiseLines        int
	BrokenTitleMerges int
	InlineSplits      int
	DanglingGlues     int
	OrphanBackfills   int

	flagCounts map[string]int
}

func NewCollector() *Collector {
	return &Collector{flagCounts: make(map[string]int)}
}

// Flag tallies one occurrence of a QC flag.
func (c *Collector) Flag(name string) {
	c.flagCounts[name]++
}

// FlagCount returns how many times a QC flag was recorded.
func (c *Collector) FlagCount(name string) int {
	return c.flagCounts[name]
}

// Flags returns the recorded flag names, sorted for stable reporting.
func (c *Collector) Flags() []string {
	out := make([]string, 0, len(c.flagCounts))
	for name := range c.flagCounts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge folds other into c. Used to aggregate per-document collectors after
// a parallel run; other is not modified.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.NoiseLines += other.NoiseLines
	c.BrokenTitleMerges += other.BrokenTitleMerges
	c.InlineSplits += other.InlineSplits
	c.DanglingGlues += other.DanglingGlues
	c.OrphanBackfills += other.OrphanBackfills
	for name, n := range other.flagCounts {
		c.flagCounts[name] += n
	}
}
