// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfrender

import (
	"fmt"
	"image/color"
)

// Tableau10 is the branch color scheme.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// unknownColor is used for branches outside the palette's domain.
const unknownColor = "#999999"

// A Palette assigns each branch a color and its index in the scheme.
type Palette struct {
	index map[string]int
}

// NewPalette assigns Tableau10 colors to branches in order, cycling
// when there are more than ten.
func NewPalette(branches []string) Palette {
	p := Palette{index: make(map[string]int, len(branches))}
	for _, b := range branches {
		if _, ok := p.index[b]; !ok {
			p.index[b] = len(p.index)
		}
	}
	return p
}

// Color returns the color of branch as "#rrggbb".
func (p Palette) Color(branch string) string {
	i, ok := p.index[branch]
	if !ok {
		return unknownColor
	}
	return Tableau10[i%len(Tableau10)]
}

// Index returns the scheme slot of branch, or -1.
func (p Palette) Index(branch string) int {
	i, ok := p.index[branch]
	if !ok {
		return -1
	}
	return i % len(Tableau10)
}

// ParseColor parses a "#rrggbb" color.
func ParseColor(s string) (color.NRGBA, error) {
	var c color.NRGBA
	c.A = 0xff
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("bad color %q: %v", s, err)
	}
	return c, nil
}
