// Package annotator wires the geometry builder, the vertex editor and the
// metadata form around one drawing collection. A Session is what a map view
// talks to: it turns pointer events into committed drawings and reports every
// committed change exactly once through the change callback.
package annotator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/OCAP2/mapmarkup/internal/builder"
	"github.com/OCAP2/mapmarkup/internal/cache"
	"github.com/OCAP2/mapmarkup/internal/editor"
	"github.com/OCAP2/mapmarkup/internal/icon"
	"github.com/OCAP2/mapmarkup/internal/metadata"
	"github.com/OCAP2/mapmarkup/internal/render"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

var (
	ErrDrawingNotFound = errors.New("drawing not found")
	ErrUnknownResource = errors.New("unknown resource")
)

// Change actions passed to the change callback
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionGeometry = "geometry"
	ActionDelete   = "delete"
)

// Change describes one committed mutation.
type Change struct {
	Action   string
	Drawing  core.Drawing
	Drawings []core.Drawing
	Revision int
}

// ChangeFunc receives the new collection after each committed mutation. It is
// never called for cancelled or rejected operations.
type ChangeFunc func(Change)

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnChange sets the change callback.
func WithOnChange(f ChangeFunc) Option {
	return func(s *Session) {
		s.onChange = f
	}
}

// WithAdapter replaces the overlay renderer.
func WithAdapter(a render.Adapter) Option {
	return func(s *Session) {
		if a != nil {
			s.adapter = a
		}
	}
}

// WithDrawings seeds the collection, typically from storage.
func WithDrawings(drawings []core.Drawing) Option {
	return func(s *Session) {
		s.drawings = append([]core.Drawing(nil), drawings...)
	}
}

// WithBuilder replaces the geometry builder, e.g. to use planar distances.
func WithBuilder(b *builder.Builder) Option {
	return func(s *Session) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithMetadata replaces the metadata editor.
func WithMetadata(m *metadata.Editor) Option {
	return func(s *Session) {
		if m != nil {
			s.meta = m
		}
	}
}

// Session is safe for concurrent use. The change callback runs outside the
// session lock, once per commit in revision order. It may read the session but
// must not commit from inside the callback.
type Session struct {
	mu sync.Mutex
	// held from the end of a commit until its callback returns
	notifyMu sync.Mutex

	builder *builder.Builder
	vertex  *editor.Editor
	meta    *metadata.Editor

	drawings  []core.Drawing
	resources *cache.ResourceCache
	links     *cache.ResourceIndex

	// resource preselected by PlaceResource, linked when the icon is placed
	placing *core.Resource

	adapter  render.Adapter
	onChange ChangeFunc
	logger   *slog.Logger
	metrics  *metrics
	revision cache.SafeCounter
}

// New creates a Session.
func New(opts ...Option) (*Session, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	s := &Session{
		builder:   builder.New(),
		vertex:    editor.New(),
		meta:      metadata.New(),
		resources: cache.NewResourceCache(),
		links:     cache.NewResourceIndex(),
		adapter:   render.GeoJSONAdapter{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   m,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.links.Rebuild(s.drawings)
	return s, nil
}

// SelectMode arms the builder. Selecting a mode discards the pending sketch.
func (s *Session) SelectMode(mode builder.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded, err := s.builder.Begin(mode)
	if err != nil {
		return err
	}
	s.placing = nil
	s.sketchDiscarded(discarded, "mode")
	return nil
}

// SelectIcon arms icon mode with the given icon.
func (s *Session) SelectIcon(key core.IconKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded, err := s.builder.BeginIcon(key)
	if err != nil {
		return err
	}
	s.placing = nil
	s.sketchDiscarded(discarded, "icon")
	return nil
}

// PlaceResource arms icon mode with the icon suggested for a resource. The
// resource is linked to the marker once it is placed. A resource that already
// has a drawing is refused with *metadata.DuplicateLinkError.
func (s *Session) PlaceResource(resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resources.Get(resourceID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resourceID)
	}
	if drawingID, linked := s.links.Get(resourceID); linked {
		return &metadata.DuplicateLinkError{ResourceID: resourceID, DrawingID: drawingID}
	}

	discarded, err := s.builder.BeginIcon(icon.ResolveResource(r))
	if err != nil {
		return err
	}
	s.placing = &r
	s.sketchDiscarded(discarded, "place")
	return nil
}

// Click feeds a map click to the builder. It reports whether a geometry was
// completed, in which case the metadata form is now open for it. Clicks are
// ignored while the metadata form is open.
func (s *Session) Click(p core.Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta.IsOpen() {
		return false, nil
	}
	g, done := s.builder.OnClick(p)
	if !done {
		return false, nil
	}
	return true, s.openForm(g)
}

// DoubleClick finishes a polygon or polyline. It reports whether a geometry was
// completed; a double-click below the vertex minimum keeps the sketch.
func (s *Session) DoubleClick(p core.Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta.IsOpen() {
		return false, nil
	}
	g, done := s.builder.OnDoubleClick(p)
	if !done {
		return false, nil
	}
	return true, s.openForm(g)
}

// CancelSketch drops the pending sketch and disarms the builder.
func (s *Session) CancelSketch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.placing = nil
	s.sketchDiscarded(s.builder.Cancel(), "cancel")
}

// Sketch returns the active draw mode and the points placed so far.
func (s *Session) Sketch() (builder.Mode, []core.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Mode(), s.builder.Pending()
}

// StartEdit opens a vertex edit session on a drawing. An edit session on
// another drawing is discarded.
func (s *Session) StartEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := core.Find(s.drawings, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawingNotFound, id)
	}
	discardedID, err := s.vertex.Start(d)
	if err != nil {
		return err
	}
	if discardedID != "" {
		s.logger.Debug("edit session replaced", "discarded", discardedID, "drawing", id)
		s.metrics.add(s.metrics.discarded, "edit")
	}
	return nil
}

// DragVertex moves one handle of the drawing being edited.
func (s *Session) DragVertex(index int, p core.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vertex.DragVertex(index, p)
}

// SetRadius changes the radius of the circle being edited.
func (s *Session) SetRadius(meters float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vertex.SetRadius(meters)
}

// CommitEdit writes the edited geometry back to the collection.
func (s *Session) CommitEdit() (core.Drawing, error) {
	s.mu.Lock()
	next, d, err := s.vertex.Commit(s.drawings)
	if err != nil {
		s.mu.Unlock()
		return core.Drawing{}, err
	}
	c := s.apply(next, ActionGeometry, d)
	s.unlockAndNotify(c)
	return d, nil
}

// DiscardEdit closes the edit session without touching the collection.
func (s *Session) DiscardEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vertex.Active() {
		s.logger.Debug("edit session discarded", "drawing", s.vertex.DrawingID(), "dirty", s.vertex.Dirty())
		s.metrics.add(s.metrics.discarded, "edit")
	}
	s.vertex.Discard()
}

// Editing returns the working copy of the drawing being edited.
func (s *Session) Editing() (core.Drawing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vertex.Working()
}

// EditMetadata opens the metadata form for an existing drawing.
func (s *Session) EditMetadata(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := core.Find(s.drawings, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawingNotFound, id)
	}
	s.placing = nil
	return s.meta.OpenExisting(d)
}

// SetField updates one field of the open metadata form.
func (s *Session) SetField(f metadata.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.SetField(f, value)
}

// LinkResource links a resource to the open form; an empty id unlinks.
func (s *Session) LinkResource(resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resourceID == "" {
		return s.meta.LinkResource(nil, s.drawings)
	}
	r, ok := s.resources.Get(resourceID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resourceID)
	}
	return s.meta.LinkResource(&r, s.drawings)
}

// Form returns the open metadata form.
func (s *Session) Form() (metadata.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Form(), s.meta.IsOpen()
}

// CommitMetadata validates the form and commits the drawing. On error the form
// stays open and nothing changes.
func (s *Session) CommitMetadata() (core.Drawing, error) {
	s.mu.Lock()
	action := ActionUpdate
	if s.meta.IsNew() {
		action = ActionCreate
	}
	next, d, err := s.meta.Commit(s.drawings)
	if err != nil {
		s.metrics.add(s.metrics.rejected, "metadata")
		s.mu.Unlock()
		return core.Drawing{}, err
	}
	s.placing = nil
	c := s.apply(next, action, d)
	s.unlockAndNotify(c)
	return d, nil
}

// CancelMetadata closes the form. A new geometry waiting for metadata is lost.
func (s *Session) CancelMetadata() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta.IsNew() {
		s.metrics.add(s.metrics.discarded, "metadata")
	}
	s.placing = nil
	s.meta.Cancel()
}

// Delete removes a drawing. Edit and metadata sessions on it are closed.
func (s *Session) Delete(id string) error {
	s.mu.Lock()
	d, _ := core.Find(s.drawings, id)
	next, ok := core.RemoveByID(s.drawings, id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDrawingNotFound, id)
	}
	if s.vertex.DrawingID() == id {
		s.vertex.Discard()
	}
	if s.meta.EditingID() == id {
		s.meta.Cancel()
	}
	c := s.apply(next, ActionDelete, d)
	s.unlockAndNotify(c)
	return nil
}

// Drawings returns a copy of the current collection.
func (s *Session) Drawings() []core.Drawing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Drawing(nil), s.drawings...)
}

// DrawingForResource returns the drawing linked to a resource, used to centre
// the map on it.
func (s *Session) DrawingForResource(resourceID string) (core.Drawing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.links.Get(resourceID)
	if !ok {
		return core.Drawing{}, false
	}
	return core.Find(s.drawings, id)
}

// SetResources replaces the read-only resource list.
func (s *Session) SetResources(rs []core.Resource) {
	s.resources.Replace(rs)
}

// Resources returns the resource list.
func (s *Session) Resources() []core.Resource {
	return s.resources.List()
}

// Revision counts committed mutations since the session was created.
func (s *Session) Revision() int {
	return s.revision.Value()
}

// Overlays renders the collection. The drawing under edit is rendered from its
// working copy with its handles.
func (s *Session) Overlays() ([]render.Overlay, error) {
	s.mu.Lock()
	drawings := append([]core.Drawing(nil), s.drawings...)
	editingID := s.vertex.DrawingID()
	handles := s.vertex.Handles()
	if working, ok := s.vertex.Working(); ok {
		if i := core.IndexOf(drawings, working.ID); i >= 0 {
			drawings[i].Geometry = working.Geometry
		}
	}
	s.mu.Unlock()

	return render.All(s.adapter, drawings, editingID, handles)
}

func (s *Session) openForm(g core.Geometry) error {
	if err := s.meta.Open(g); err != nil {
		return err
	}
	s.logger.Debug("geometry completed", "kind", g.Kind())
	if s.placing == nil {
		return nil
	}
	r := s.placing
	s.placing = nil
	return s.meta.LinkResource(r, s.drawings)
}

// apply installs the next collection. Callers hold the lock.
func (s *Session) apply(next []core.Drawing, action string, d core.Drawing) Change {
	s.drawings = next
	s.links.Rebuild(next)
	s.revision.Inc()
	s.metrics.add(s.metrics.committed, action)
	s.logger.Info("drawing committed", "action", action, "id", d.ID, "kind", d.Kind(), "count", len(next), "linked", s.links.Len())
	return Change{
		Action:   action,
		Drawing:  d,
		Drawings: append([]core.Drawing(nil), next...),
		Revision: s.revision.Value(),
	}
}

// unlockAndNotify releases s.mu, which must be held, and delivers c. Taking
// notifyMu before releasing mu keeps callbacks in commit order.
func (s *Session) unlockAndNotify(c Change) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Unlock()
	s.notify(c)
}

func (s *Session) notify(c Change) {
	if s.onChange != nil {
		s.onChange(c)
	}
}

func (s *Session) sketchDiscarded(discarded bool, reason string) {
	if !discarded {
		return
	}
	s.logger.Debug("sketch discarded", "reason", reason)
	s.metrics.add(s.metrics.discarded, "sketch")
}
