package render

import (
	"fmt"
	"hash/fnv"
	"image/color"
)

// The node palette. Fill color is a pure hash of the node id into this
// table, so a concept keeps its color across frames, searches and sessions.
var palette = []color.RGBA{
	{0xa8, 0x55, 0xf7, 0xff}, // purple
	{0xec, 0x48, 0x99, 0xff}, // pink
	{0x22, 0xd3, 0xee, 0xff}, // cyan
	{0x22, 0xc5, 0x5e, 0xff}, // green
	{0xf9, 0x73, 0x16, 0xff}, // orange
	{0xea, 0xb3, 0x08, 0xff}, // yellow
	{0x3b, 0x82, 0xf6, 0xff}, // blue
	{0xef, 0x44, 0x44, 0xff}, // red
	{0x14, 0xb8, 0xa6, 0xff}, // teal
	{0xfb, 0xbf, 0x24, 0xff}, // gold
}

var (
	colorBackdrop   = color.RGBA{0x0f, 0x0f, 0x1a, 0xff}
	colorLabelLight = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
	colorLabelDark  = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// NodeColor returns the palette color for a node id. FNV-1a keeps it stable
// and well distributed without any seeding.
func NodeColor(id string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

// EdgePhase returns a stable per-edge animation phase in [0,1), derived from
// both endpoint ids so no two edges pulse in lockstep. Deterministic by
// design: reloading the same graph reproduces the same motion.
func EdgePhase(sourceID, targetID string) float64 {
	h := fnv.New32a()
	h.Write([]byte(sourceID))
	h.Write([]byte{0})
	h.Write([]byte(targetID))
	return float64(h.Sum32()%1000) / 1000
}

// CSS formats a color as a #rrggbb string for SVG output.
func CSS(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
