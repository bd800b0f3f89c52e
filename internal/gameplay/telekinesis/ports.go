package telekinesis

import "image/color"

// Input reports the held state of the two telekinesis buttons.
type Input interface {
	PullHeld() bool
	PushHeld() bool
}

// Display is a surface the cursor can be drawn on, in pixel or cell units.
type Display interface {
	Size() (width, height int)
	DrawMarker(x, y, w, h int, c color.RGBA)
}

// InputFunc adapts two functions to Input.
type InputFunc struct {
	Pull func() bool
	Push func() bool
}

func (f InputFunc) PullHeld() bool { return f.Pull != nil && f.Pull() }
func (f InputFunc) PushHeld() bool { return f.Push != nil && f.Push() }
