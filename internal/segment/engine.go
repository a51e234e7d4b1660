// Package segment turns an ordered stream of normalized text lines into an
// ordered stream of listing blocks, tracking section headers as it goes.
// The engine is a two-state machine (idle/buffering) with a fixed decision
// priority per line: header, then forced cue, then gated start, then
// continuation. It never fails on malformed input; everything ambiguous
// degrades into QC counters on the diag collector.
package segment

import (
	"strings"

	"anuncios/internal"
	"anuncios/internal/diag"
	"anuncios/internal/price"
	"anuncios/internal/profile"
)

// Engine segments one document. It is single-use: header context and the
// staging window are per-document state, so each document gets a fresh
// Engine (the profile and scanner it borrows are read-only and shared).
type Engine struct {
	prof    *profile.Profile
	scan    *price.Scanner
	dc      *diag.Collector
	tracker *HeaderTracker
	decide  *decider

	blocks      []internal.Block
	open        *internal.Block
	lastListing int
	headerSince bool
	staging     bool
}

func NewEngine(prof *profile.Profile, scan *price.Scanner, dc *diag.Collector) *Engine {
	return &Engine{
		prof:        prof,
		scan:        scan,
		dc:          dc,
		tracker:     NewHeaderTracker(prof),
		decide:      &decider{prof: prof, scan: scan},
		lastListing: -1,
	}
}

// Segment consumes the whole document and returns the ordered block
// sequence. Every input line lands in exactly one block (listing, header or
// noise); EOF flushes whatever is still buffered.
func (e *Engine) Segment(lines []internal.RawLine) []internal.Block {
	for _, line := range lines {
		e.processLine(line)
	}
	e.flushOpen()
	return e.blocks
}

func (e *Engine) processLine(line internal.RawLine) {
	trimmed := strings.TrimSpace(line.Text)
	if trimmed == "" {
		// A blank line terminates whatever is buffering; later orphan
		// lines may still backfill onto the closed listing.
		if e.open != nil {
			e.open.Lines = append(e.open.Lines, line)
			e.flushOpen()
		} else {
			e.appendNoise(line)
		}
		return
	}

	// Headers always win: they are their own block and flush any buffer,
	// even one ending in a dangling separator.
	if ctx, ok := e.tracker.Observe(trimmed); ok {
		e.flushOpen()
		e.blocks = append(e.blocks, internal.Block{
			StartLine: line.Index,
			Lines:     []internal.RawLine{line},
			Header:    ctx,
			Kind:      internal.BlockHeader,
		})
		e.headerSince = true
		return
	}

	// A buffer whose last fragment ends in a comma/semicolon is not done:
	// glue this line no matter what its own start signal says.
	if e.open != nil && e.open.Kind == internal.BlockListing && e.danglingSeparator() {
		e.dc.DanglingGlues++
		e.open.Lines = append(e.open.Lines, line)
		e.staging = false
		return
	}

	if e.decide.isStart(trimmed) {
		if e.open != nil && e.open.Kind == internal.BlockListing && e.staging {
			// Broken-title demotion: the previous start had no cue at
			// all, so this "start" is the second half of its title.
			e.dc.BrokenTitleMerges++
			e.open.Lines = append(e.open.Lines, line)
			e.staging = false
			return
		}
		e.openListing(line, trimmed)
		return
	}

	// Continuations extend the open buffer. A price-bearing line arriving
	// on a noise buffer is the exception: it escapes into an implicit
	// listing instead.
	if e.open != nil && !(e.open.Kind == internal.BlockNoise && e.scan.HasPrice(trimmed)) {
		if e.open.Kind == internal.BlockNoise {
			e.dc.NoiseLines++
		}
		e.open.Lines = append(e.open.Lines, line)
		e.staging = false
		return
	}

	// No open listing: a price-bearing line opens an implicit buffer.
	if e.scan.HasPrice(trimmed) {
		e.flushOpen()
		e.open = &internal.Block{
			StartLine: line.Index,
			Lines:     []internal.RawLine{line},
			Header:    e.tracker.Current(),
			Kind:      internal.BlockListing,
		}
		e.headerSince = false
		e.staging = false
		return
	}

	// Backfill onto the previous closed listing, unless a header has
	// intervened since it closed.
	if e.prof.BackfillOrphans && e.lastListing >= 0 && !e.headerSince {
		prev := &e.blocks[e.lastListing]
		prev.Lines = append(prev.Lines, line)
		prev.QCFlags = appendFlag(prev.QCFlags, internal.QCOrphanContinuation)
		e.dc.OrphanBackfills++
		return
	}

	e.appendNoise(line)
}

// openListing flushes the buffer and opens a new one on line, cutting the
// line first if a second listing is glued onto it after a price token.
func (e *Engine) openListing(line internal.RawLine, trimmed string) {
	e.flushOpen()

	first, rest, cut := e.splitInline(trimmed)
	text := trimmed
	if cut {
		text = first
	}
	e.open = &internal.Block{
		StartLine: line.Index,
		Lines:     []internal.RawLine{{Index: line.Index, Text: text}},
		Header:    e.tracker.Current(),
		Kind:      internal.BlockListing,
	}
	e.headerSince = false
	e.staging = !e.decide.hasCue(text)

	if cut {
		e.dc.InlineSplits++
		e.processLine(internal.RawLine{Index: line.Index, Text: rest})
	}
}

// splitInline looks for a secondary start glued onto the line after a price
// token: the remainder must begin upper-case and independently satisfy the
// start rules, and with require_price_before it must sit within the
// configured lookback window of a price token.
func (e *Engine) splitInline(text string) (string, string, bool) {
	spans := e.scan.Spans(text)
	for _, span := range spans {
		limit := len(text)
		if e.prof.RequirePriceBefore && span.End+e.prof.InlinePriceLookback < limit {
			limit = span.End + e.prof.InlinePriceLookback
		}
		for p := span.End + 1; p < len(text) && p <= limit; p++ {
			if text[p] == ' ' || text[p-1] != ' ' {
				continue
			}
			rest := text[p:]
			if !startsUpperLetter(rest) {
				continue
			}
			if !e.decide.isStart(rest) {
				continue
			}
			return strings.TrimRight(text[:p], " ,;"), rest, true
		}
	}
	return "", "", false
}

func (e *Engine) danglingSeparator() bool {
	for i := len(e.open.Lines) - 1; i >= 0; i-- {
		t := strings.TrimSpace(e.open.Lines[i].Text)
		if t == "" {
			continue
		}
		return strings.HasSuffix(t, ",") || strings.HasSuffix(t, ";")
	}
	return false
}

func (e *Engine) appendNoise(line internal.RawLine) {
	e.dc.NoiseLines++
	if e.open != nil && e.open.Kind == internal.BlockNoise {
		e.open.Lines = append(e.open.Lines, line)
		return
	}
	e.flushOpen()
	e.open = &internal.Block{
		StartLine: line.Index,
		Lines:     []internal.RawLine{line},
		Header:    e.tracker.Current(),
		Kind:      internal.BlockNoise,
	}
}

func (e *Engine) flushOpen() {
	if e.open == nil {
		return
	}
	e.blocks = append(e.blocks, *e.open)
	if e.open.Kind == internal.BlockListing {
		e.lastListing = len(e.blocks) - 1
		e.headerSince = false
	}
	e.open = nil
	e.staging = false
}

func appendFlag(flags []string, name string) []string {
	for _, f := range flags {
		if f == name {
			return flags
		}
	}
	return append(flags, name)
}
