// Package metadata implements the capture/commit form that turns a completed
// geometry, or an existing drawing, into a persisted Drawing.
package metadata

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OCAP2/mapmarkup/internal/icon"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// Field names accepted by SetField
type Field string

const (
	FieldName          Field = "name"
	FieldCategory      Field = "category"
	FieldDescription   Field = "description"
	FieldResourcesNote Field = "resourcesNote"
	FieldPriority      Field = "priority"
	FieldColor         Field = "color"
)

var (
	ErrNotOpen          = errors.New("metadata editor is not open")
	ErrNameRequired     = errors.New("name is required")
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidColor     = errors.New("color must be a #rgb or #rrggbb hex string")
	ErrColorNotEditable = errors.New("color can only be overridden on polygons, circles and rectangles")
	ErrDrawingNotFound  = errors.New("drawing being edited is no longer in the collection")
	ErrGeometryRequired = errors.New("geometry is required")
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DuplicateLinkError is returned when a resource is already linked to another
// drawing. Callers typically centre the map on DrawingID instead.
type DuplicateLinkError struct {
	ResourceID string
	DrawingID  string
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("resource %s is already linked to drawing %s", e.ResourceID, e.DrawingID)
}

// Form is the editable state of the metadata form
type Form struct {
	Name          string
	Category      core.Category
	Description   string
	ResourcesNote string
	Priority      core.Priority
	Color         string
	ResourceID    string
}

// Editor holds at most one open form, either for a new geometry or for an
// existing drawing.
type Editor struct {
	open     bool
	geometry core.Geometry
	existing *core.Drawing
	form     Form

	colorOverridden bool
	defaultPriority core.Priority

	newID func() string
	now   func() time.Time
}

// Option configures an Editor
type Option func(*Editor)

// WithDefaultPriority sets the priority new forms start with.
func WithDefaultPriority(p core.Priority) Option {
	return func(e *Editor) {
		if p.Valid() {
			e.defaultPriority = p
		}
	}
}

// WithIDFunc replaces the id generator for new drawings.
func WithIDFunc(f func() string) Option {
	return func(e *Editor) {
		if f != nil {
			e.newID = f
		}
	}
}

// WithClock replaces the time source.
func WithClock(f func() time.Time) Option {
	return func(e *Editor) {
		if f != nil {
			e.now = f
		}
	}
}

// New creates a closed Editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		defaultPriority: core.PriorityMedium,
		newID:           uuid.NewString,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts a form for a freshly built geometry. Any open form is dropped.
func (e *Editor) Open(g core.Geometry) error {
	if g == nil {
		return ErrGeometryRequired
	}
	e.Cancel()
	e.open = true
	e.geometry = core.CloneGeometry(g)
	e.form = Form{
		Category: core.CategoryOther,
		Priority: e.defaultPriority,
		Color:    e.defaultColor(core.CategoryOther),
	}
	return nil
}

// OpenExisting starts a form pre-filled from d. Only non-geometric fields are
// edited; the geometry is carried over untouched.
func (e *Editor) OpenExisting(d core.Drawing) error {
	if d.Geometry == nil {
		return ErrGeometryRequired
	}
	e.Cancel()
	e.open = true
	e.existing = &d
	e.geometry = d.Geometry
	e.form = Form{
		Name:          d.Name,
		Category:      d.Category,
		Description:   d.Description,
		ResourcesNote: d.ResourcesNote,
		Priority:      d.Priority,
		Color:         d.Color,
		ResourceID:    d.ResourceID,
	}
	e.colorOverridden = core.IsColorEditable(d.Kind()) && d.Color != e.defaultColor(d.Category)
	return nil
}

// IsOpen reports whether a form is open.
func (e *Editor) IsOpen() bool {
	return e.open
}

// IsNew reports whether the open form will create a drawing.
func (e *Editor) IsNew() bool {
	return e.open && e.existing == nil
}

// EditingID returns the id of the existing drawing being edited, or "".
func (e *Editor) EditingID() string {
	if e.existing == nil {
		return ""
	}
	return e.existing.ID
}

// Form returns the current form values.
func (e *Editor) Form() Form {
	return e.form
}

// Geometry returns the geometry the form will commit.
func (e *Editor) Geometry() core.Geometry {
	return e.geometry
}

// SetField updates one form field. Changing the category also resets the
// colour to the category default unless the user picked a colour.
func (e *Editor) SetField(f Field, value string) error {
	if !e.open {
		return ErrNotOpen
	}
	switch f {
	case FieldName:
		e.form.Name = value
	case FieldDescription:
		e.form.Description = value
	case FieldResourcesNote:
		e.form.ResourcesNote = value
	case FieldCategory:
		c := core.Category(value)
		if !c.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidCategory, value)
		}
		e.form.Category = c
		if !e.colorOverridden {
			e.form.Color = e.defaultColor(c)
		}
	case FieldPriority:
		p := core.Priority(value)
		if !p.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidPriority, value)
		}
		e.form.Priority = p
	case FieldColor:
		if !core.IsColorEditable(e.geometry.Kind()) {
			return ErrColorNotEditable
		}
		if !hexColor.MatchString(value) {
			return fmt.Errorf("%w: %s", ErrInvalidColor, value)
		}
		e.form.Color = strings.ToLower(value)
		e.colorOverridden = true
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return nil
}

// LinkResource links r to the drawing being edited, or unlinks when r is nil.
// A resource already referenced by another drawing is refused with a
// *DuplicateLinkError. Linking to a new icon marker also applies the suggested
// icon and uses the resource name when the name is still empty.
func (e *Editor) LinkResource(r *core.Resource, drawings []core.Drawing) error {
	if !e.open {
		return ErrNotOpen
	}
	if r == nil {
		e.form.ResourceID = ""
		return nil
	}
	if err := e.checkLink(r.ID, drawings); err != nil {
		return err
	}

	e.form.ResourceID = r.ID
	if im, ok := e.geometry.(core.IconMarker); ok && e.existing == nil {
		im.Icon = icon.ResolveResource(*r)
		e.geometry = im
	}
	if strings.TrimSpace(e.form.Name) == "" {
		e.form.Name = r.Name
	}
	return nil
}

// CanCommit reports whether Commit would be accepted.
func (e *Editor) CanCommit() bool {
	return e.open && strings.TrimSpace(e.form.Name) != ""
}

// Commit validates the form and returns the next collection together with the
// committed drawing. On any error the collection is returned unchanged and the
// form stays open.
func (e *Editor) Commit(drawings []core.Drawing) ([]core.Drawing, core.Drawing, error) {
	if !e.open {
		return drawings, core.Drawing{}, ErrNotOpen
	}
	if !e.CanCommit() {
		return drawings, core.Drawing{}, ErrNameRequired
	}
	if err := e.checkLink(e.form.ResourceID, drawings); err != nil {
		return drawings, core.Drawing{}, err
	}

	now := e.now()
	var d core.Drawing
	if e.existing != nil {
		// start from the current entry so a geometry committed meanwhile survives
		current, ok := core.Find(drawings, e.existing.ID)
		if !ok {
			return drawings, core.Drawing{}, ErrDrawingNotFound
		}
		d = current
	} else {
		d = core.Drawing{ID: e.newID(), Geometry: e.geometry, CreatedAt: now}
	}
	d.Name = strings.TrimSpace(e.form.Name)
	d.Category = e.form.Category
	d.Description = e.form.Description
	d.ResourcesNote = e.form.ResourcesNote
	d.Priority = e.form.Priority
	d.Color = e.form.Color
	d.ResourceID = e.form.ResourceID
	d.UpdatedAt = now

	var out []core.Drawing
	if e.existing != nil {
		out, _ = core.ReplaceByID(drawings, d)
	} else {
		out = core.Append(drawings, d)
	}

	e.Cancel()
	return out, d, nil
}

// Cancel closes the form without touching any collection.
func (e *Editor) Cancel() {
	e.open = false
	e.geometry = nil
	e.existing = nil
	e.form = Form{}
	e.colorOverridden = false
}

func (e *Editor) checkLink(resourceID string, drawings []core.Drawing) error {
	if resourceID == "" {
		return nil
	}
	linked, ok := core.FindByResource(drawings, resourceID)
	if !ok || linked.ID == e.EditingID() {
		return nil
	}
	return &DuplicateLinkError{ResourceID: resourceID, DrawingID: linked.ID}
}

func (e *Editor) defaultColor(c core.Category) string {
	return icon.CategoryMeta(c).Color
}
