package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/matcher"
)

func newMatchCmd() *cobra.Command {
	var (
		itemID      int64
		threshold   int
		tempFolders []string
		saveFolders bool
	)

	cmd := &cobra.Command{
		Use:   "match [title] [alias...]",
		Short: "Find match candidates for a title",
		Long: `Scan the configured folders and list files whose names match the
given title. When --item is set the title, original title and aliases
of the cataloged item are used and files already associated with it
are skipped.

Examples:
  reelmatch match "The Wandering Earth"
  reelmatch match "流浪地球" "The Wandering Earth"
  reelmatch match --item 3 --folder /mnt/downloads
  reelmatch match --item 3 --folder /mnt/downloads --save-folders`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), args, itemID, threshold, tempFolders, saveFolders)
		},
	}

	cmd.Flags().Int64Var(&itemID, "item", 0, "Match a cataloged item by id instead of a literal title")
	cmd.Flags().IntVar(&threshold, "threshold", -1, "Minimum similarity score 0-100 (default: from config)")
	cmd.Flags().StringArrayVar(&tempFolders, "folder", nil, "Extra folder to scan this session (repeatable)")
	cmd.Flags().BoolVar(&saveFolders, "save-folders", false, "Persist --folder paths on the item (requires --item)")

	return cmd
}

func runMatch(ctx context.Context, args []string, itemID int64, threshold int, tempFolders []string, saveFolders bool) error {
	if itemID == 0 && len(args) == 0 {
		return fmt.Errorf("a title or --item is required")
	}
	if saveFolders && itemID == 0 {
		return fmt.Errorf("--save-folders requires --item")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	if threshold < 0 {
		threshold = cfg.Threshold()
	}

	titles := args
	folders := cfg.FolderSet()
	folders.Temp = tempFolders

	var item *catalog.Item
	if itemID != 0 {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		item, err = db.GetItem(itemID)
		if err != nil {
			return err
		}
		titles = item.MatchTitles()
		folders.Temp = append(folders.Temp, item.MatchedFolders...)

		if saveFolders && len(tempFolders) > 0 {
			manager := catalog.NewManager(db)
			if err := manager.MergeMatchedFolders(itemID, tempFolders); err != nil {
				return fmt.Errorf("failed to save folders: %w", err)
			}
		}
	}

	m := matcher.New(logger)
	result, err := m.MatchOne(ctx, titles, folders, threshold)
	if err != nil {
		return err
	}

	candidates := result.Candidates
	if item != nil {
		kept := candidates[:0]
		for _, c := range candidates {
			if !item.HasMaterialPath(c.Path) {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"candidates": candidates,
			"warnings":   result.Warnings,
		})
	}

	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	if len(candidates) == 0 {
		fmt.Println("No candidates found.")
		return nil
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(c.Score),
			c.Name,
			string(c.Category),
			formatSize(c.Size),
			c.Path,
		})
	}
	fmt.Println(renderTable(
		[]string{"Score", "Name", "Category", "Size", "Path"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}
