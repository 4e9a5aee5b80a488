package chart

import (
	"hash/fnv"
	"image/color"
)

// SourceColors fixes one color per source so charts are comparable across countries
var SourceColors = map[string]color.RGBA{
	"Nuclear":          {R: 0x7E, G: 0x57, B: 0xC2, A: 0xFF}, // purple
	"Fossil Gas":       {R: 0xFF, G: 0x70, B: 0x43, A: 0xFF}, // orange-red
	"Coal and Lignite": {R: 0x5D, G: 0x40, B: 0x37, A: 0xFF}, // brown
	"Wind":             {R: 0x81, G: 0xC7, B: 0x84, A: 0xFF}, // light green
	"Solar":            {R: 0xFF, G: 0xD5, B: 0x4F, A: 0xFF}, // yellow
	"Hydro":            {R: 0x4F, G: 0xC3, B: 0xF7, A: 0xFF}, // light blue
	"Other Renewables": {R: 0x66, G: 0xBB, B: 0x6A, A: 0xFF}, // green
	"Fossil Oil":       {R: 0x8D, G: 0x6E, B: 0x63, A: 0xFF}, // dark brown
	"Other":            {R: 0x90, G: 0xA4, B: 0xAE, A: 0xFF}, // grey
	"Biomass":          {R: 0xA5, G: 0xD6, B: 0xA7, A: 0xFF}, // pale green
	"Waste":            {R: 0xFF, G: 0xAB, B: 0x91, A: 0xFF}, // pale orange
}

// fallbackColors are assigned by name hash to sources missing from SourceColors
var fallbackColors = []color.RGBA{
	{R: 0x26, G: 0xA6, B: 0x9A, A: 0xFF},
	{R: 0xEC, G: 0x40, B: 0x7A, A: 0xFF},
	{R: 0x5C, G: 0x6B, B: 0xC0, A: 0xFF},
	{R: 0xD4, G: 0xE1, B: 0x57, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0x78, G: 0x90, B: 0x9C, A: 0xFF},
	{R: 0xFF, G: 0xA7, B: 0x26, A: 0xFF},
	{R: 0x29, G: 0x79, B: 0xFF, A: 0xFF},
}

// ColorFor returns the fixed color of source
func ColorFor(source string) color.RGBA {
	if c, ok := SourceColors[source]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(source))
	return fallbackColors[h.Sum32()%uint32(len(fallbackColors))]
}
