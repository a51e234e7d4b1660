package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"anuncios/internal"
	"anuncios/internal/diag"
	"anuncios/internal/price"
	"anuncios/internal/profile"
	"anuncios/internal/segment"
	"anuncios/internal/storage"
	"anuncios/internal/util"
)

// Processor runs the core pipeline for one agency profile: normalize lines,
// segment into blocks, extract price candidates, assemble listings. It holds
// only read-only compiled state and is safe to share across concurrent
// documents; per-document state (engine, diag) is created per call.
type Processor struct {
	prof *profile.Profile
	scan *price.Scanner
}

func NewProcessor(prof *profile.Profile) *Processor {
	return &Processor{prof: prof, scan: price.NewScanner(prof)}
}

type DocumentResult struct {
	Blocks   []internal.Block
	Listings []internal.ParsedListing
	Diag     *diag.Collector
}

// ProcessLines runs one document through the whole core. It never fails:
// malformed text degrades into QC flags and diag counters.
func (p *Processor) ProcessLines(lines []string) DocumentResult {
	dc := diag.NewCollector()

	raw := make([]internal.RawLine, 0, len(lines))
	for i, line := range lines {
		raw = append(raw, internal.RawLine{Index: i, Text: util.NormalizeText(line)})
	}

	engine := segment.NewEngine(p.prof, p.scan, dc)
	blocks := engine.Segment(raw)

	listings := make([]internal.ParsedListing, 0, len(blocks))
	for _, block := range blocks {
		if block.Kind != internal.BlockListing {
			continue
		}
		candidates, scanFlags := p.scan.Extract(block.Text())
		listing := p.Assemble(block, candidates, scanFlags)
		for _, f := range listing.QCFlags {
			dc.Flag(f)
		}
		listings = append(listings, listing)
	}

	return DocumentResult{Blocks: blocks, Listings: listings, Diag: dc}
}

// Service ties the processor to ingestion, persistence and logging for the
// CLI. One Service handles many documents under the same agency profile.
type Service struct {
	db   *storage.DB
	log  *util.Logger
	proc *Processor
}

func NewService(db *storage.DB, log *util.Logger, prof *profile.Profile) *Service {
	return &Service{db: db, log: log, proc: NewProcessor(prof)}
}

type FileResult struct {
	Path       string
	DocumentID int
	Listings   int
	Diag       *diag.Collector
	Err        error
}

// ProcessFile ingests one feed file, parses it and persists the result.
func (s *Service) ProcessFile(path string) (FileResult, error) {
	start := time.Now()

	lines, err := LinesFromFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}, err
	}

	result := s.proc.ProcessLines(lines)

	docID, err := s.db.InsertDocument(s.proc.prof.Agency, path, len(lines))
	if err != nil {
		return FileResult{Path: path, Err: err}, err
	}
	for _, listing := range result.Listings {
		if _, err := s.db.InsertListing(docID, listing); err != nil {
			return FileResult{Path: path, DocumentID: docID, Err: err}, err
		}
	}
	if err := s.db.InsertRun(docID, result.Diag, time.Since(start)); err != nil {
		return FileResult{Path: path, DocumentID: docID, Err: err}, err
	}

	s.log.Info("[parse] %s: %d lines, %d listings (noise=%d merges=%d splits=%d)",
		filepath.Base(path), len(lines), len(result.Listings),
		result.Diag.NoiseLines, result.Diag.BrokenTitleMerges, result.Diag.InlineSplits)

	return FileResult{Path: path, DocumentID: docID, Listings: len(result.Listings), Diag: result.Diag}, nil
}

// ProcessDir parses every feed file in dir concurrently. Each document gets
// its own engine and collector; the merged collector is returned once the
// pool drains.
func (s *Service) ProcessDir(dir string, workers int) ([]FileResult, *diag.Collector, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if SupportedFeedFile(entry) {
			paths = append(paths, entry)
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no feed files in %s", dir)
	}

	pool := util.NewWorkerPool(workers)
	results := make([]FileResult, len(paths))
	var mu sync.Mutex

	for i, path := range paths {
		i, path := i, path
		pool.Submit(func() {
			res, err := s.ProcessFile(path)
			if err != nil {
				s.log.Error("[parse] %s: %v", filepath.Base(path), err)
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
		})
	}
	pool.Wait()

	merged := diag.NewCollector()
	for _, res := range results {
		merged.Merge(res.Diag)
	}
	return results, merged, nil
}
