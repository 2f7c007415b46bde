package objectkey

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestForAsset(t *testing.T) {
	id := uuid.MustParse("abcdef12-3456-7890-abcd-ef1234567890")

	key := ForAsset(id, "report.pdf")
	assert.Equal(t, "assets/ab/cdef1234567890abcdef1234567890_report.pdf", key)

	// Keys for the same asset are stable
	assert.Equal(t, key, ForAsset(id, "report.pdf"))
}

func TestForAssetNoFilename(t *testing.T) {
	id := uuid.New()
	key := ForAsset(id, "")
	assert.True(t, strings.HasPrefix(key, "assets/"))
	assert.NotContains(t, key, "_")
}

func TestForAssetSanitizesFilename(t *testing.T) {
	id := uuid.New()
	key := ForAsset(id, `weird name/with\bad:chars?.txt`)
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, `\`)
	assert.NotContains(t, key, "?")
	// Only the two path separators of the key layout remain.
	assert.Equal(t, 2, strings.Count(key, "/"))
}
