package extract

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProbeImage(t *testing.T) {
	prober := New()

	probe := prober.Probe(encodePNG(t, 24, 16), "image/png")
	require.NotNil(t, probe)
	require.NotNil(t, probe.Width)
	require.NotNil(t, probe.Height)
	assert.Equal(t, 24, *probe.Width)
	assert.Equal(t, 16, *probe.Height)
	assert.Nil(t, probe.Pages)
	assert.Nil(t, probe.DurationSeconds)
}

func TestProbeImageCorrupt(t *testing.T) {
	prober := New()
	assert.Nil(t, prober.Probe([]byte("not an image"), "image/png"))
}

func TestProbePDF(t *testing.T) {
	prober := New()

	doc := []byte("%PDF-1.4\n" +
		"1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n" +
		"2 0 obj << /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >> endobj\n" +
		"3 0 obj << /Type /Page /Parent 2 0 R >> endobj\n" +
		"4 0 obj << /Type /Page /Parent 2 0 R >> endobj\n" +
		"%%EOF\n")

	probe := prober.Probe(doc, "application/pdf")
	require.NotNil(t, probe)
	require.NotNil(t, probe.Pages)
	assert.Equal(t, 2, *probe.Pages)
	assert.Nil(t, probe.Width)
}

func TestProbePDFNoVisiblePages(t *testing.T) {
	prober := New()
	// Compressed object streams hide page objects; absence must not
	// read as a zero page count.
	assert.Nil(t, prober.Probe([]byte("%PDF-1.7\n%%EOF"), "application/pdf"))
}

func TestProbeUnknownMime(t *testing.T) {
	prober := New()
	assert.Nil(t, prober.Probe([]byte("plain text"), "text/plain"))
	assert.Nil(t, prober.Probe([]byte{0x00, 0x01}, "application/octet-stream"))
	assert.Nil(t, prober.Probe(nil, "video/mp4"))
}
