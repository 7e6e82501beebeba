// Package builder turns click input into completed geometries. One Builder
// backs one map view.
package builder

import (
	"errors"
	"fmt"

	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/icon"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// Mode is the active draw mode
type Mode string

const (
	ModeNone      Mode = ""
	ModeMarker    Mode = "marker"
	ModeIcon      Mode = "icon"
	ModeCircle    Mode = "circle"
	ModePolygon   Mode = "polygon"
	ModePolyline  Mode = "polyline"
	ModeRectangle Mode = "rectangle"
)

var (
	// ErrIconRequired is returned by Begin(ModeIcon); use BeginIcon instead
	ErrIconRequired = errors.New("icon mode requires an icon key")
	// ErrUnknownIcon is returned for keys outside the icon taxonomy
	ErrUnknownIcon = errors.New("unknown icon key")
)

const (
	defaultPolygonMin  = 3
	defaultPolylineMin = 2
)

// Builder accumulates the transient sketch for the active mode. At most one
// sketch exists: changing mode or cancelling drops it.
type Builder struct {
	mode    Mode
	icon    core.IconKey
	pending []core.Point

	distance   geo.DistanceFunc
	polygonMin int
}

// Option configures a Builder
type Option func(*Builder)

// WithDistance sets the function used for circle radii.
func WithDistance(f geo.DistanceFunc) Option {
	return func(b *Builder) {
		if f != nil {
			b.distance = f
		}
	}
}

// WithPolygonMinVertices sets how many vertices, the double-click point
// included, a polygon needs before it is finalized. Values below 3 are ignored.
func WithPolygonMinVertices(n int) Option {
	return func(b *Builder) {
		if n >= defaultPolygonMin {
			b.polygonMin = n
		}
	}
}

// New creates an idle Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		distance:   geo.GreatCircle,
		polygonMin: defaultPolygonMin,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeMarker, ModeIcon, ModeCircle, ModePolygon, ModePolyline, ModeRectangle:
		return m, nil
	case "none":
		return ModeNone, nil
	default:
		return ModeNone, fmt.Errorf("unknown draw mode: %s", s)
	}
}

// Begin selects a draw mode, discarding any pending sketch. It returns true when
// a non-empty sketch was discarded.
func (b *Builder) Begin(mode Mode) (discarded bool, err error) {
	if mode == ModeIcon {
		return false, ErrIconRequired
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return false, err
	}
	discarded = b.Cancel()
	b.mode = mode
	return discarded, nil
}

// BeginIcon selects icon mode with the icon to place.
func (b *Builder) BeginIcon(key core.IconKey) (discarded bool, err error) {
	if !icon.Valid(key) {
		return false, fmt.Errorf("%w: %s", ErrUnknownIcon, key)
	}
	discarded = b.Cancel()
	b.mode = ModeIcon
	b.icon = key
	return discarded, nil
}

// Cancel drops the pending sketch and returns to ModeNone. It reports whether
// any points were discarded.
func (b *Builder) Cancel() bool {
	had := len(b.pending) > 0
	b.reset()
	return had
}

// Mode returns the active mode.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Icon returns the icon armed for ModeIcon.
func (b *Builder) Icon() core.IconKey {
	return b.icon
}

// Pending returns a copy of the points collected so far.
func (b *Builder) Pending() []core.Point {
	out := make([]core.Point, len(b.pending))
	copy(out, b.pending)
	return out
}

// OnClick feeds a click. It returns the completed geometry when the click
// finishes a shape; the builder is then back in ModeNone.
func (b *Builder) OnClick(p core.Point) (core.Geometry, bool) {
	switch b.mode {
	case ModeMarker:
		return b.emit(core.Marker{Point: p}), true
	case ModeIcon:
		return b.emit(core.IconMarker{Point: p, Icon: b.icon}), true
	case ModeCircle:
		if len(b.pending) == 0 {
			b.pending = append(b.pending, p)
			return nil, false
		}
		center := b.pending[0]
		return b.emit(core.Circle{Center: center, RadiusMeters: b.distance(center, p)}), true
	case ModeRectangle:
		if len(b.pending) == 0 {
			b.pending = append(b.pending, p)
			return nil, false
		}
		return b.emit(core.Rectangle{Corner1: b.pending[0], Corner2: p}), true
	case ModePolygon, ModePolyline:
		b.pending = append(b.pending, p)
		return nil, false
	default:
		return nil, false
	}
}

// OnDoubleClick finalizes a polygon or polyline. The double-click point is
// added unless it repeats the last vertex. Below the minimum vertex count the
// sketch stays pending. Other modes ignore double-clicks: their preceding
// clicks have already been delivered through OnClick.
func (b *Builder) OnDoubleClick(p core.Point) (core.Geometry, bool) {
	if b.mode != ModePolygon && b.mode != ModePolyline {
		return nil, false
	}
	if n := len(b.pending); n == 0 || b.pending[n-1] != p {
		b.pending = append(b.pending, p)
	}

	if b.mode == ModePolyline {
		if len(b.pending) < defaultPolylineMin {
			return nil, false
		}
		return b.emit(core.Polyline{Vertices: b.Pending()}), true
	}
	if len(b.pending) < b.polygonMin {
		return nil, false
	}
	return b.emit(core.Polygon{Vertices: b.Pending()}), true
}

func (b *Builder) emit(g core.Geometry) core.Geometry {
	b.reset()
	return g
}

func (b *Builder) reset() {
	b.mode = ModeNone
	b.icon = ""
	b.pending = nil
}
