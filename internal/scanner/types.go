package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is the coarse classification of a file by extension.
type FileType string

const (
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "doc"
	FileTypeOther    FileType = "other"
)

var (
	videoExtensions = map[string]bool{
		".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
		".flv": true, ".webm": true, ".m4v": true, ".ts": true, ".m2ts": true,
	}
	audioExtensions = map[string]bool{
		".mp3": true, ".flac": true, ".wav": true, ".m4a": true, ".aac": true, ".ogg": true,
	}
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".bmp": true,
		".gif": true, ".tif": true, ".tiff": true, ".svg": true,
	}
	documentExtensions = map[string]bool{
		".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".nfo": true,
		".md": true, ".epub": true, ".mobi": true, ".azw3": true,
	}
)

// Classify returns the FileType for a path based on its extension.
// Unknown extensions classify as FileTypeOther.
func Classify(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExtensions[ext]:
		return FileTypeVideo
	case audioExtensions[ext]:
		return FileTypeAudio
	case imageExtensions[ext]:
		return FileTypeImage
	case documentExtensions[ext]:
		return FileTypeDocument
	default:
		return FileTypeOther
	}
}

// IsMedia reports whether t is a playable media classification.
func (t FileType) IsMedia() bool {
	return t == FileTypeVideo || t == FileTypeAudio
}

// FileEntry describes one file found during a walk.
type FileEntry struct {
	Path         string
	Name         string // base name including extension
	Root         string // the walk root this entry was found under
	Size         int64
	ModifiedTime time.Time
	Type         FileType
}
