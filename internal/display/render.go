package display

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/kinetix/internal/sandbox"
	"github.com/zeusync/kinetix/internal/scene"
)

// Cells per world unit horizontally. Terminal cells are about twice as tall
// as wide, so rows use half the scale.
const cellsPerUnit = 2

var (
	styleStatus  = tcell.StyleDefault.Reverse(true)
	styleTrigger = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSolid   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Render draws a top-down (X right, Z up) view of rt centred on the camera,
// a status line and the telekinesis cursor, then shows the frame.
func (s *Screen) Render(rt *scene.Runtime) {
	s.screen.Clear()
	w, h := s.Size()
	centre := rt.Camera.Position()

	project := func(x, z float64) (int, int) {
		col := w/2 + int(math.Round((x-centre.X())*cellsPerUnit))
		row := h/2 - int(math.Round((z-centre.Z())*cellsPerUnit/2))
		return col, row
	}

	objects := rt.World.Objects()
	for _, o := range objects {
		if o.Shape().Kind != sandbox.ShapeBox {
			continue
		}
		half := o.Shape().HalfExtents
		p := o.Position()
		x0, z1 := project(p.X()-half.X(), p.Z()-half.Z())
		x1, z0 := project(p.X()+half.X(), p.Z()+half.Z())
		style, fill := styleSolid, '▒'
		if o.IsTrigger() {
			style, fill = styleTrigger, '░'
		}
		for row := z0; row <= z1; row++ {
			for col := x0; col <= x1; col++ {
				if row > 0 {
					s.screen.SetContent(col, row, fill, nil, style)
				}
			}
		}
	}
	for _, o := range objects {
		col, row := project(o.Position().X(), o.Position().Z())
		if row <= 0 {
			continue
		}
		style := styleBody
		if o.IsKinematic() || o.IsTrigger() {
			style = styleTrigger
		}
		s.screen.SetContent(col, row, glyph(o), nil, style)
	}

	s.drawText(0, 0, w, statusLine(rt), styleStatus)
	if rt.Telekinesis != nil {
		rt.Telekinesis.DrawCursor(s)
	}
	s.screen.Show()
}

func (s *Screen) drawText(x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+width {
			return
		}
		s.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < x+width; col++ {
		s.screen.SetContent(col, y, ' ', nil, style)
	}
}

func glyph(o *sandbox.Object) rune {
	for _, r := range o.Name() {
		return r
	}
	return '?'
}

func statusLine(rt *scene.Runtime) string {
	line := fmt.Sprintf(" %s  t=%6.2fs  step=%d  contacts=%d", rt.Config.Name, rt.SimTime(), rt.Manager.StepCount(), rt.World.ContactCount())
	if c := rt.Telekinesis; c != nil {
		target := "-"
		if t, ok := c.Target().Get(); ok && t.Entity != nil {
			target = t.Entity.Name()
			if t.OutsideRange {
				target += " (out of range)"
			}
		}
		line += fmt.Sprintf("  telekinesis=%s target=%s", c.State(), target)
	}
	for _, m := range rt.Motions {
		line += fmt.Sprintf("  %s=%s", m.Name(), m.State())
	}
	return line + "  [LMB/j pull, RMB/k push, q quit]"
}
