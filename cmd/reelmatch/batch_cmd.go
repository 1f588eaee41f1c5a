package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/matcher"
)

func newBatchCmd() *cobra.Command {
	var (
		threshold   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Match every cataloged item against the configured folders",
		Long: `Run a matching scan for every item in the catalog. Items scan
concurrently up to the worker limit. A failed scan is reported and does
not stop the rest of the batch.

Examples:
  reelmatch batch
  reelmatch batch --threshold 90 --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Close()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := db.GetAllItems()
			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}
			if len(items) == 0 {
				fmt.Println("Catalog is empty.")
				return nil
			}

			if threshold < 0 {
				threshold = cfg.Threshold()
			}

			m := matcher.New(logger, matcher.WithConcurrency(concurrency))
			batch, err := m.MatchAll(cmd.Context(), items, cfg.FolderSet(), threshold)
			if err != nil {
				return err
			}

			if jsonOutput {
				type failureJSON struct {
					ItemID int64  `json:"item_id"`
					Title  string `json:"title"`
					Error  string `json:"error"`
				}
				failures := make([]failureJSON, 0, len(batch.Failures))
				for _, f := range batch.Failures {
					failures = append(failures, failureJSON{ItemID: f.ItemID, Title: f.Title, Error: f.Err.Error()})
				}
				return printJSON(map[string]interface{}{
					"results":  batch.Results,
					"failures": failures,
				})
			}

			for _, res := range batch.Results {
				fmt.Printf("\n%s (item %d): %d candidate(s)\n", res.Item.Title, res.Item.ID, len(res.Candidates))
				for _, w := range res.Warnings {
					fmt.Printf("  Warning: %s\n", w)
				}
				if len(res.Candidates) == 0 {
					continue
				}
				sort.SliceStable(res.Candidates, func(i, j int) bool {
					return res.Candidates[i].Score > res.Candidates[j].Score
				})
				rows := make([][]string, 0, len(res.Candidates))
				for _, c := range res.Candidates {
					rows = append(rows, []string{
						strconv.Itoa(c.Score),
						c.Name,
						string(c.Category),
						formatSize(c.Size),
					})
				}
				fmt.Println(renderTable(
					[]string{"Score", "Name", "Category", "Size"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
			}

			if batch.FailureCount() > 0 {
				fmt.Printf("\n%d item(s) failed:\n", batch.FailureCount())
				for _, f := range batch.Failures {
					fmt.Printf("  %s (item %d): %v\n", f.Title, f.ItemID, f.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", -1, "Minimum similarity score 0-100 (default: from config)")
	cmd.Flags().IntVar(&concurrency, "workers", 4, "Concurrent item scans")

	return cmd
}
