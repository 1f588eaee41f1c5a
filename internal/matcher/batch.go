package matcher

import (
	"context"
	"errors"
	"sync"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/logging"
)

// ItemResult holds one catalog item's batch-match outcome.
type ItemResult struct {
	Item       *catalog.Item       `json:"item"`
	Candidates []catalog.Candidate `json:"candidates"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// BatchFailure records one item whose scan failed during batch matching.
type BatchFailure struct {
	ItemID int64
	Title  string
	Err    error
}

// BatchResult aggregates per-item results and failures. A failed item is
// omitted from Results and listed in Failures; it never aborts the batch.
type BatchResult struct {
	Results  []ItemResult
	Failures []BatchFailure
}

// FailureCount returns the number of items whose scan failed.
func (b *BatchResult) FailureCount() int {
	return len(b.Failures)
}

// MatchAll runs MatchOne for every catalog item against a shared folder
// configuration, with a bounded worker pool. Candidates whose path is
// already associated with the item are filtered out. Cancellation is
// checked before each item's scan starts; results collected so far are
// returned alongside the context error.
func (m *Matcher) MatchAll(ctx context.Context, items []*catalog.Item, folders catalog.FolderSet, threshold int) (*BatchResult, error) {
	folders = folders.Snapshot()
	batch := &BatchResult{}

	// Guard the per-item invariant: the same item must never be scanned
	// twice concurrently, so duplicate ids are dropped up front.
	seen := make(map[int64]bool, len(items))
	unique := make([]*catalog.Item, 0, len(items))
	for _, item := range items {
		if item == nil || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		unique = append(unique, item)
	}

	type slot struct {
		result  *ItemResult
		failure *BatchFailure
	}
	slots := make([]slot, len(unique))

	sem := make(chan struct{}, m.concurrency)
	var wg sync.WaitGroup

	var cancelled bool
	for i, item := range unique {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item *catalog.Item) {
			defer wg.Done()
			defer func() { <-sem }()

			// The item's persisted matched_folders join the session
			// temp set so repeat matching covers them automatically.
			itemFolders := folders
			itemFolders.Temp = append(append([]string(nil), folders.Temp...), item.MatchedFolders...)

			res, err := m.MatchOne(ctx, item.MatchTitles(), itemFolders, threshold)
			if err != nil {
				// Items abandoned by cancellation are not failures.
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					slots[i] = slot{failure: &BatchFailure{ItemID: item.ID, Title: item.Title, Err: err}}
				}
				return
			}

			kept := res.Candidates[:0]
			for _, c := range res.Candidates {
				if !item.HasMaterialPath(c.Path) {
					kept = append(kept, c)
				}
			}
			slots[i] = slot{result: &ItemResult{Item: item, Candidates: kept, Warnings: res.Warnings}}
		}(i, item)
	}
	wg.Wait()

	for _, s := range slots {
		switch {
		case s.result != nil:
			batch.Results = append(batch.Results, *s.result)
		case s.failure != nil:
			batch.Failures = append(batch.Failures, *s.failure)
		}
	}

	m.logger.Info("matcher", "batch match complete",
		logging.F("items", len(unique)),
		logging.F("matched", len(batch.Results)),
		logging.F("failures", len(batch.Failures)))

	if cancelled {
		return batch, ctx.Err()
	}
	return batch, nil
}
