// Package matcher orchestrates directory walks, filename normalization and
// similarity scoring into single-item and batch matching workflows.
package matcher

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/naming"
	"github.com/halfmoss/reelmatch/internal/scanner"
	"github.com/halfmoss/reelmatch/internal/scoring"
)

// ErrInvalidInput means there is nothing to scan and nothing to match
// against: both the folder set and the title set are empty.
var ErrInvalidInput = errors.New("matcher: no folders configured and no titles to match")

// Result is the outcome of a single-item match. Candidates are unsorted;
// ordering is a presentation concern. Warnings list unreadable roots or
// subtrees that were skipped without aborting the scan.
type Result struct {
	Candidates []catalog.Candidate `json:"candidates"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Matcher runs matching scans. The zero value is not usable; use New.
type Matcher struct {
	logger      *logging.Logger
	concurrency int
	walk        func(ctx context.Context, roots []string) (*scanner.WalkResult, error)
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithConcurrency caps concurrent per-item scans during batch matching.
func WithConcurrency(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// New creates a Matcher.
func New(logger *logging.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = logging.Nop()
	}
	m := &Matcher{
		logger:      logger,
		concurrency: 4,
		walk:        scanner.Walk,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// categoryScan pairs a folder category with the roots scanned under it.
// Scan order is the documented tie-break contract: default/temp roots are
// processed first, then source, then finished, and on a path collision the
// first category processed wins.
type categoryScan struct {
	category catalog.Category
	roots    []string
}

// MatchOne scans every configured folder category for files whose names
// fuzzy-match any of the target titles at or above threshold. Only video
// and audio files are scored. Candidates are deduplicated by path across
// categories. An empty folder set with non-empty titles returns an empty
// result; only both-empty is ErrInvalidInput.
func (m *Matcher) MatchOne(ctx context.Context, titles []string, folders catalog.FolderSet, threshold int) (*Result, error) {
	folders = folders.Snapshot()
	titles = nonEmptyTitles(titles)

	if folders.IsEmpty() && len(titles) == 0 {
		return nil, ErrInvalidInput
	}
	if len(titles) == 0 || folders.IsEmpty() {
		return &Result{}, nil
	}

	threshold = clampThreshold(threshold)

	scans := []categoryScan{
		{catalog.CategoryDefault, append(append([]string(nil), folders.Default...), folders.Temp...)},
		{catalog.CategorySource, folders.Source},
		{catalog.CategoryFinished, folders.Finished},
	}

	type scanOutcome struct {
		candidates []catalog.Candidate
		warnings   []string
		err        error
	}

	// Category scans are independent read-only walks; run them in
	// parallel and merge only after every scan has finished or failed.
	outcomes := make([]scanOutcome, len(scans))
	var wg sync.WaitGroup
	for i, scan := range scans {
		if len(scan.roots) == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, scan categoryScan) {
			defer wg.Done()
			cands, warns, err := m.scanCategory(ctx, titles, scan, threshold)
			outcomes[i] = scanOutcome{candidates: cands, warnings: warns, err: err}
		}(i, scan)
	}
	wg.Wait()

	result := &Result{}
	seen := make(map[string]bool)
	for _, out := range outcomes {
		if out.err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Warnings = append(result.Warnings, out.err.Error())
			continue
		}
		result.Warnings = append(result.Warnings, out.warnings...)
		for _, c := range out.candidates {
			if seen[c.Path] {
				continue
			}
			seen[c.Path] = true
			result.Candidates = append(result.Candidates, c)
		}
	}

	m.logger.Debug("matcher", "single match complete",
		logging.F("titles", len(titles)),
		logging.F("candidates", len(result.Candidates)),
		logging.F("warnings", len(result.Warnings)))

	return result, nil
}

func (m *Matcher) scanCategory(ctx context.Context, titles []string, scan categoryScan, threshold int) ([]catalog.Candidate, []string, error) {
	walked, err := m.walk(ctx, scan.roots)
	if err != nil {
		return nil, nil, err
	}

	var candidates []catalog.Candidate
	for _, entry := range walked.Entries {
		if !entry.Type.IsMedia() {
			continue
		}

		score := m.scoreEntry(entry, titles)
		if score < threshold {
			continue
		}

		candidates = append(candidates, catalog.Candidate{
			Key:          entry.Path,
			Name:         entry.Name,
			Path:         entry.Path,
			Size:         strconv.FormatInt(entry.Size, 10),
			Score:        score,
			FileType:     entry.Type,
			Category:     scan.category,
			ModifiedTime: entry.ModifiedTime,
		})
	}

	return candidates, walked.Warnings, nil
}

// scoreEntry scores the file's own cleaned name, and when that is not a
// perfect match also scores the directory components between the walk root
// and the file. Folder-per-title layouts match even when episode files
// carry unrelated names.
func (m *Matcher) scoreEntry(entry scanner.FileEntry, titles []string) int {
	score := scoring.Score(naming.Normalize(entry.Name), titles)
	if score == 100 {
		return score
	}

	rel, err := filepath.Rel(entry.Root, entry.Path)
	if err != nil {
		return score
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return score
	}

	for _, comp := range strings.Split(dir, string(filepath.Separator)) {
		if comp == "" || comp == "." {
			continue
		}
		if s := scoring.Score(naming.Normalize(comp), titles); s > score {
			score = s
			if score == 100 {
				break
			}
		}
	}

	return score
}

func nonEmptyTitles(titles []string) []string {
	out := titles[:0:0]
	for _, t := range titles {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

func clampThreshold(threshold int) int {
	if threshold < 0 {
		return 0
	}
	if threshold > 100 {
		return 100
	}
	return threshold
}
