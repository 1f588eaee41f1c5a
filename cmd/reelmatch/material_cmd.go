package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

func newMaterialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Manage item materials",
		Long: `Commands for linking files to cataloged items and keeping the links
valid.

Examples:
  reelmatch material add 3 /mnt/downloads/movie.mkv
  reelmatch material remove 3 1f0c9a
  reelmatch material rename 3 /mnt/downloads/movie.mkv "The Wandering Earth (2019)"`,
	}

	cmd.AddCommand(newMaterialAddCmd())
	cmd.AddCommand(newMaterialRemoveCmd())
	cmd.AddCommand(newMaterialRenameCmd())

	return cmd
}

func newMaterialAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <item-id> <path>",
		Short: "Associate a file with an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			manager := catalog.NewManager(db)
			material, err := manager.Associate(id, catalog.Candidate{
				Name:         info.Name(),
				Path:         path,
				Size:         strconv.FormatInt(info.Size(), 10),
				FileType:     scanner.Classify(path),
				Category:     catalog.CategoryDefault,
				ModifiedTime: info.ModTime(),
			})
			if errors.Is(err, catalog.ErrDuplicateMaterial) {
				return fmt.Errorf("%s is already associated with item %d", path, id)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(material)
			}
			fmt.Printf("Associated %s (material %s)\n", material.Name, material.ID)
			return nil
		},
	}
}

func newMaterialRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id> <material-id>",
		Short: "Remove a material from an item",
		Args:  cobra.ExactArgs(2),
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

			manager := catalog.NewManager(db)
			if err := manager.RemoveMaterial(id, args[1]); err != nil {
				return err
			}
			fmt.Printf("Removed material %s from item %d\n", args[1], id)
			return nil
		},
	}
}

func newMaterialRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <item-id> <path> <new-name>",
		Short: "Rename a file and update its association",
		Long: `Rename the file at the given path to a new name within the same
directory. The extension is kept when the new name omits it. Any
material pointing at the old path is updated to the new one.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			manager := catalog.NewManager(db)
			newPath, err := manager.RenamePropagate(id, path, args[2])
			if errors.Is(err, catalog.ErrPartialSync) {
				fmt.Printf("Renamed to %s, but the catalog was not updated: %v\n", newPath, err)
				fmt.Println("Re-run the rename with the new path to repair the association.")
				os.Exit(1)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Renamed to %s\n", newPath)
			return nil
		},
	}
}
