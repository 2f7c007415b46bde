// Package extract derives intrinsic media properties (pixel
// dimensions, page counts) from payloads before they are cataloged.
// Extraction is pure and best-effort: an attribute that cannot be
// derived is simply absent from the probe, never an error that fails
// the upload.
package extract

import (
	"bytes"
	"image"
	"regexp"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/portalkit/catalog/pkg/catalog"
)

// Prober implements catalog.Extractor.
type Prober struct{}

// New returns the default prober.
func New() *Prober {
	return &Prober{}
}

var _ catalog.Extractor = (*Prober)(nil)

var pdfPagePattern = regexp.MustCompile(`/Type\s*/Page[^s]`)

// Probe inspects a payload according to its declared MIME type.
// Images yield width/height, PDFs yield a page count. Duration for
// audio/video is left absent: no media decoder is in scope, and a
// missing attribute must read as absent rather than zero.
func (p *Prober) Probe(payload []byte, mimeType string) *catalog.MediaProbe {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return probeImage(payload)
	case mimeType == "application/pdf":
		return probePDF(payload)
	default:
		return nil
	}
}

func probeImage(payload []byte) *catalog.MediaProbe {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	w, h := cfg.Width, cfg.Height
	return &catalog.MediaProbe{Width: &w, Height: &h}
}

// probePDF counts /Type /Page objects in the raw document. Linearized
// and compressed-object-stream PDFs may hide page objects; in that
// case the count stays absent rather than reporting zero.
func probePDF(payload []byte) *catalog.MediaProbe {
	matches := pdfPagePattern.FindAll(payload, -1)
	if len(matches) == 0 {
		return nil
	}
	pages := len(matches)
	return &catalog.MediaProbe{Pages: &pages}
}
