// Package editor implements the vertex edit session: one Drawing at a time is
// copied into a working geometry whose control points can be moved, then
// committed back by id or discarded.
package editor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

var (
	ErrNoSession        = errors.New("no edit session active")
	ErrHandleOutOfRange = errors.New("handle index out of range")
	ErrNotCircle        = errors.New("radius can only be set on circles")
	ErrInvalidRadius    = errors.New("radius must be a finite, non-negative number of meters")
	ErrDrawingNotFound  = errors.New("drawing under edit is no longer in the collection")
	ErrGeometryRequired = errors.New("drawing has no geometry")
)

// Editor holds at most one edit session.
type Editor struct {
	active  bool
	working core.Drawing
	dirty   bool
	now     func() time.Time
}

// New creates an Editor with no active session.
func New() *Editor {
	return &Editor{now: time.Now}
}

// Start opens a session on d. Any uncommitted session is discarded first; the
// id of that drawing is returned so the caller can tell the user.
func (e *Editor) Start(d core.Drawing) (discardedID string, err error) {
	if d.Geometry == nil {
		return "", ErrGeometryRequired
	}
	if e.active {
		discardedID = e.working.ID
	}
	e.working = d
	e.working.Geometry = core.CloneGeometry(d.Geometry)
	e.active = true
	e.dirty = false
	return discardedID, nil
}

// Active reports whether a session is open.
func (e *Editor) Active() bool {
	return e.active
}

// DrawingID returns the id under edit, or "".
func (e *Editor) DrawingID() string {
	if !e.active {
		return ""
	}
	return e.working.ID
}

// Dirty reports whether the working copy differs from the drawing it was
// started from.
func (e *Editor) Dirty() bool {
	return e.active && e.dirty
}

// Working returns the working copy.
func (e *Editor) Working() (core.Drawing, bool) {
	if !e.active {
		return core.Drawing{}, false
	}
	d := e.working
	d.Geometry = core.CloneGeometry(e.working.Geometry)
	return d, true
}

// Handles returns the draggable control points of the working copy.
func (e *Editor) Handles() []core.Point {
	if !e.active {
		return nil
	}
	return e.working.Geometry.Handles()
}

// DragVertex moves handle index to p. Only that coordinate changes; kind,
// ordering and every other vertex stay as they are.
func (e *Editor) DragVertex(index int, p core.Point) error {
	if !e.active {
		return ErrNoSession
	}
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
	}

	switch g := e.working.Geometry.(type) {
	case core.Marker:
		if index != 0 {
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		g.Point = p
		e.working.Geometry = g
	case core.IconMarker:
		if index != 0 {
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		g.Point = p
		e.working.Geometry = g
	case core.Circle:
		if index != 0 {
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		g.Center = p
		e.working.Geometry = g
	case core.Polygon:
		if index >= len(g.Vertices) {
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		g.Vertices[index] = p
	case core.Polyline:
		if index >= len(g.Vertices) {
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		g.Vertices[index] = p
	case core.Rectangle:
		switch index {
		case 0:
			g.Corner1 = p
		case 1:
			g.Corner2 = p
		default:
			return fmt.Errorf("%w: %d", ErrHandleOutOfRange, index)
		}
		e.working.Geometry = g
	default:
		return fmt.Errorf("unsupported geometry %T", g)
	}

	e.dirty = true
	return nil
}

// SetRadius sets the circle radius from direct numeric input.
func (e *Editor) SetRadius(meters float64) error {
	if !e.active {
		return ErrNoSession
	}
	c, ok := e.working.Geometry.(core.Circle)
	if !ok {
		return ErrNotCircle
	}
	if meters < 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return ErrInvalidRadius
	}
	c.RadiusMeters = meters
	e.working.Geometry = c
	e.dirty = true
	return nil
}

// Commit writes the working geometry onto the drawing with the same id and
// closes the session. The returned slice is a new collection; drawings is untouched.
// If the drawing disappeared meanwhile the session is closed and
// ErrDrawingNotFound returned.
func (e *Editor) Commit(drawings []core.Drawing) ([]core.Drawing, core.Drawing, error) {
	if !e.active {
		return drawings, core.Drawing{}, ErrNoSession
	}
	// metadata may have been committed meanwhile, only the geometry is ours
	d, ok := core.Find(drawings, e.working.ID)
	if !ok {
		e.Discard()
		return drawings, core.Drawing{}, ErrDrawingNotFound
	}
	d.Geometry = e.working.Geometry
	d.UpdatedAt = e.now()
	e.Discard()

	out, _ := core.ReplaceByID(drawings, d)
	return out, d, nil
}

// Discard closes the session without touching any collection.
func (e *Editor) Discard() {
	e.active = false
	e.dirty = false
	e.working = core.Drawing{}
}
