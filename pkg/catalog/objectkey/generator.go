package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ForAsset builds the storage key for an uploaded asset using
// Git-style sharding on the asset id:
// assets/ab/cd1234ef5678_filename
func ForAsset(assetID uuid.UUID, fileName string) string {
	idStr := strings.ReplaceAll(assetID.String(), "-", "")
	shard := idStr[:2]
	remaining := idStr[2:]

	if fileName == "" {
		return fmt.Sprintf("assets/%s/%s", shard, remaining)
	}
	return fmt.Sprintf("assets/%s/%s_%s", shard, remaining, sanitizeFilename(fileName))
}

// sanitizeFilename replaces characters that are problematic in object
// keys and filesystem paths.
func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}
