// Package catalog defines the catalog data model and the association
// manager that links catalog items to files on disk.
package catalog

import (
	"strings"
	"time"

	"github.com/halfmoss/reelmatch/internal/scanner"
)

// Category tags where a matched file came from.
type Category string

const (
	CategoryDefault  Category = "default"
	CategorySource   Category = "source"
	CategoryFinished Category = "finished"
)

// FolderSet is the matching scope: the three persistent folder categories
// plus session-only temp folders. Temp folders scan alongside Default and
// are only persisted through an explicit MergeMatchedFolders call.
type FolderSet struct {
	Default  []string
	Source   []string
	Finished []string
	Temp     []string
}

// IsEmpty reports whether no folders are configured at all.
func (f FolderSet) IsEmpty() bool {
	return len(f.Default) == 0 && len(f.Source) == 0 && len(f.Finished) == 0 && len(f.Temp) == 0
}

// Snapshot returns a deep copy so an in-flight scan never observes
// concurrent edits to the folder configuration.
func (f FolderSet) Snapshot() FolderSet {
	return FolderSet{
		Default:  append([]string(nil), f.Default...),
		Source:   append([]string(nil), f.Source...),
		Finished: append([]string(nil), f.Finished...),
		Temp:     append([]string(nil), f.Temp...),
	}
}

// Item is a cataloged work. ID is assigned by the store and immutable.
type Item struct {
	ID             int64      `json:"id"`
	TmdbID         *int64     `json:"tmdb_id,omitempty"`
	Title          string     `json:"title"`
	OriginalTitle  string     `json:"original_title,omitempty"`
	Year           string     `json:"year,omitempty"`
	Aliases        []string   `json:"aliases,omitempty"`
	MatchedFolders []string   `json:"matched_folders,omitempty"`
	Materials      []Material `json:"materials"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MatchTitles returns the non-empty candidate titles for fuzzy matching:
// primary title, original title, and aliases. Matching against an empty
// result yields zero matches, not an error.
func (i *Item) MatchTitles() []string {
	titles := make([]string, 0, 2+len(i.Aliases))
	for _, t := range append([]string{i.Title, i.OriginalTitle}, i.Aliases...) {
		if strings.TrimSpace(t) != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// HasMaterialPath reports whether a material with the given path exists.
func (i *Item) HasMaterialPath(path string) bool {
	for _, m := range i.Materials {
		if m.Path == path {
			return true
		}
	}
	return false
}

// Material is a confirmed link between an item and a file on disk.
// Size is kept as a numeric string so very large files survive any
// serialization boundary untruncated.
type Material struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Path         string           `json:"path"`
	Size         string           `json:"size"`
	FileType     scanner.FileType `json:"file_type"`
	Category     Category         `json:"category,omitempty"`
	AddedAt      time.Time        `json:"add_time"`
	ModifiedTime time.Time        `json:"modified_time,omitzero"`
}

// Candidate is an unconfirmed, scored file surfaced by a scan. It is never
// persisted directly; Associate converts it into a Material.
type Candidate struct {
	Key          string           `json:"key"`
	Name         string           `json:"name"`
	Path         string           `json:"path"`
	Size         string           `json:"size"`
	Score        int              `json:"similarity"`
	FileType     scanner.FileType `json:"file_type"`
	Category     Category         `json:"category,omitempty"`
	ModifiedTime time.Time        `json:"modified_time,omitzero"`
}
