package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/opd-ai/go-spacerpg/pkg/entity"
	"github.com/opd-ai/go-spacerpg/pkg/physics"
	"github.com/opd-ai/go-spacerpg/pkg/radar"
)

const clearScreen = "\033[H\033[2J"

// TerminalScope provides a simple ASCII radar for terminals
type TerminalScope struct {
	out    io.Writer
	width  int
	height int
	radius float64
	buffer [][]rune
	status []string
	ansi   bool
}

// NewTerminalScope creates a scope of width x height cells covering a radar
// of the given pixel radius. With ansi set, each frame clears the terminal
// first.
func NewTerminalScope(out io.Writer, width, height int, radius float64, ansi bool) *TerminalScope {
	if width < 3 {
		width = 3
	}
	if height < 3 {
		height = 3
	}
	if !(radius > 0) {
		radius = radar.DefaultRadius
	}

	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	return &TerminalScope{
		out:    out,
		width:  width,
		height: height,
		radius: radius,
		buffer: buffer,
		ansi:   ansi,
	}
}

// SetStatus replaces the text lines printed under the radar.
func (r *TerminalScope) SetStatus(lines ...string) {
	r.status = append(r.status[:0], lines...)
}

// cell maps a radar offset onto the grid. Offsets outside the radar square
// report false.
func (r *TerminalScope) cell(offset physics.Vector2D) (int, int, bool) {
	fx := (offset.X + r.radius) / (2 * r.radius)
	fy := (offset.Y + r.radius) / (2 * r.radius)
	if !(fx >= 0 && fx <= 1 && fy >= 0 && fy <= 1) {
		return 0, 0, false
	}
	x := int(fx*float64(r.width-1) + 0.5)
	y := int(fy*float64(r.height-1) + 0.5)
	return x, y, true
}

func (r *TerminalScope) plot(offset physics.Vector2D, symbol rune) {
	if x, y, ok := r.cell(offset); ok {
		r.buffer[y][x] = symbol
	}
}

// Clear implements Scope
func (r *TerminalScope) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
	r.plot(physics.Vector2D{}, '+')
}

// DrawBlip implements Scope
func (r *TerminalScope) DrawBlip(b radar.Blip) {
	if b.Target == nil {
		return
	}
	r.plot(b.Offset, Symbol(b.Target))
}

// DrawMarker implements Scope
func (r *TerminalScope) DrawMarker(kind MarkerKind, offset physics.Vector2D) {
	switch kind {
	case MarkerPending:
		r.plot(offset, 'X')
	case MarkerSelected:
		r.plot(offset, '@')
	case MarkerLocked:
		r.plot(offset, '#')
	}
}

// Present implements Scope
func (r *TerminalScope) Present() error {
	w := bufio.NewWriter(r.out)
	if r.ansi {
		w.WriteString(clearScreen)
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	for _, line := range r.status {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

// Symbol returns the glyph used for e on the terminal radar.
func Symbol(e entity.Entity) rune {
	switch t := e.(type) {
	case *entity.Location:
		switch t.Type {
		case entity.LocationStation:
			return 'S'
		case entity.LocationAsteroid:
			return '*'
		case entity.LocationPlanet:
			return 'O'
		case entity.LocationBeacon:
			return '^'
		default:
			return 'o'
		}
	case *entity.Vessel:
		if t.Combat != nil {
			return 'A'
		}
		return 'v'
	default:
		return '?'
	}
}
