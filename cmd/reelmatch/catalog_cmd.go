package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage cataloged items",
		Long: `Commands for managing the item catalog.

Examples:
  reelmatch catalog list
  reelmatch catalog add --title "The Wandering Earth" --year 2019 --alias "流浪地球"
  reelmatch catalog show 3
  reelmatch catalog remove 3`,
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogAddCmd())
	cmd.AddCommand(newCatalogShowCmd())
	cmd.AddCommand(newCatalogRemoveCmd())

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cataloged items",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := db.GetAllItems()
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(items)
			}

			if len(items) == 0 {
				fmt.Println("Catalog is empty.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Title,
					item.Year,
					strconv.Itoa(len(item.Materials)),
					strconv.Itoa(len(item.MatchedFolders)),
				})
			}
			fmt.Println(renderTable(
				[]string{"ID", "Title", "Year", "Materials", "Folders"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newCatalogAddCmd() *cobra.Command {
	var (
		title         string
		originalTitle string
		year          string
		tmdbID        int64
		aliases       []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			item := &catalog.Item{
				Title:         title,
				OriginalTitle: originalTitle,
				Year:          year,
				Aliases:       aliases,
			}
			if tmdbID != 0 {
				item.TmdbID = &tmdbID
			}

			if err := db.CreateItem(item); err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}

			if jsonOutput {
				return printJSON(item)
			}
			fmt.Printf("Added item %d: %s\n", item.ID, item.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Item title (required)")
	cmd.Flags().StringVar(&originalTitle, "original-title", "", "Original language title")
	cmd.Flags().StringVar(&year, "year", "", "Release year")
	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "TMDB id")
	cmd.Flags().StringArrayVar(&aliases, "alias", nil, "Alternate title (repeatable)")

	return cmd
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			item, err := db.GetItem(id)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(item)
			}

			fmt.Printf("Item %d: %s", item.ID, item.Title)
			if item.Year != "" {
				fmt.Printf(" (%s)", item.Year)
			}
			fmt.Println()
			if item.OriginalTitle != "" {
				fmt.Printf("Original title: %s\n", item.OriginalTitle)
			}
			for _, a := range item.Aliases {
				fmt.Printf("Alias: %s\n", a)
			}
			for _, f := range item.MatchedFolders {
				fmt.Printf("Folder: %s\n", f)
			}

			if len(item.Materials) == 0 {
				fmt.Println("No materials.")
				return nil
			}

			rows := make([][]string, 0, len(item.Materials))
			for _, m := range item.Materials {
				rows = append(rows, []string{
					m.ID,
					m.Name,
					string(m.FileType),
					formatSize(m.Size),
					m.Path,
				})
			}
			fmt.Println(renderTable(
				[]string{"ID", "Name", "Type", "Size", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCatalogRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item and its materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteItem(id); err != nil {
				return err
			}
			fmt.Printf("Removed item %d\n", id)
			return nil
		},
	}
}
