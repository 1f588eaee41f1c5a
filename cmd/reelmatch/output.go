package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize renders a byte count kept as a numeric string. Non-numeric
// values pass through unchanged.
func formatSize(size string) string {
	bytes, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return size
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
