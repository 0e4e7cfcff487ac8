package worksheet

import (
	"github.com/kingrea/waypoint/internal/document"
	"github.com/kingrea/waypoint/internal/storage"
)

// Storage keys of the built-in sheets.
const (
	CanvasKey = "canvas"
	SWOTKey   = "swot"
)

// Canvas opens the business model canvas sheet.
func Canvas(kv storage.KV, opts ...Option) *Sheet[document.Canvas] {
	return New(kv, CanvasKey, "Business Model Canvas", document.CanvasBlocks, document.CanvasCodec, opts...)
}

// SWOT opens the SWOT analysis sheet.
func SWOT(kv storage.KV, opts ...Option) *Sheet[document.SWOT] {
	return New(kv, SWOTKey, "SWOT Analysis", document.SWOTQuadrants, document.SWOTCodec, opts...)
}

// Builtins returns every built-in sheet bound to kv, keyed by storage key.
func Builtins(kv storage.KV, opts ...Option) map[string]Worksheet {
	return map[string]Worksheet{
		CanvasKey: Canvas(kv, opts...),
		SWOTKey:   SWOT(kv, opts...),
	}
}

// Keys lists the built-in sheet keys in display order.
func Keys() []string {
	return []string{CanvasKey, SWOTKey}
}
