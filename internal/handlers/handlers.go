package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/builder"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/geo"
	"github.com/OCAP2/mapmarkup/internal/metadata"
	"github.com/OCAP2/mapmarkup/internal/util"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// ErrMissingArgs is returned when a command receives fewer arguments than it needs
var ErrMissingArgs = errors.New("missing arguments")

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Session *annotator.Session
	Logger  *slog.Logger
}

// Service translates dispatcher events into annotator session calls
type Service struct {
	deps Dependencies
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{deps: deps}
}

// RegisterHandlers registers every command with the dispatcher. All handlers
// are synchronous: each step depends on the state left by the previous one.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Sketching
	d.Register("mode", s.handleMode, dispatcher.Logged())
	d.Register("icon", s.handleIcon, dispatcher.Logged())
	d.Register("place", s.handlePlace, dispatcher.Logged())
	d.Register("click", s.handleClick, dispatcher.Logged())
	d.Register("dblclick", s.handleDoubleClick, dispatcher.Logged())
	d.Register("cancel", s.handleCancel, dispatcher.Logged())

	// Vertex editing
	d.Register("edit", s.handleEdit, dispatcher.Logged())
	d.Register("drag", s.handleDrag, dispatcher.Logged())
	d.Register("radius", s.handleRadius, dispatcher.Logged())
	d.Register("commit-edit", s.handleCommitEdit, dispatcher.Logged())
	d.Register("discard-edit", s.handleDiscardEdit, dispatcher.Logged())

	// Metadata
	d.Register("meta", s.handleMeta, dispatcher.Logged())
	d.Register("set", s.handleSet, dispatcher.Logged())
	d.Register("link", s.handleLink, dispatcher.Logged())
	d.Register("commit", s.handleCommit, dispatcher.Logged())
	d.Register("cancel-meta", s.handleCancelMeta, dispatcher.Logged())

	d.Register("delete", s.handleDelete, dispatcher.Logged())
}

// cleanArgs strips surrounding quotes and unescapes doubled quotes
func cleanArgs(e dispatcher.Event, want int) ([]string, error) {
	if len(e.Args) < want {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrMissingArgs, e.Command, want, len(e.Args))
	}
	args := make([]string, len(e.Args))
	for i, v := range e.Args {
		args[i] = util.FixEscapeQuotes(util.TrimQuotes(strings.TrimSpace(v)))
	}
	return args, nil
}

func (s *Service) handleMode(e dispatcher.Event) (any, error) {
	args, _ := cleanArgs(e, 0)
	mode := builder.ModeNone
	if len(args) > 0 {
		m, err := builder.ParseMode(args[0])
		if err != nil {
			return nil, err
		}
		mode = m
	}
	return nil, s.deps.Session.SelectMode(mode)
}

func (s *Service) handleIcon(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.deps.Session.SelectIcon(core.IconKey(args[0]))
}

func (s *Service) handlePlace(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	err = s.deps.Session.PlaceResource(args[0])
	var dup *metadata.DuplicateLinkError
	if errors.As(err, &dup) {
		s.deps.Logger.Info("resource already on the map", "resource", dup.ResourceID, "drawing", dup.DrawingID)
	}
	return nil, err
}

func (s *Service) handleClick(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	p, err := geo.ParsePoint(args[0])
	if err != nil {
		return nil, fmt.Errorf("click %q: %w", args[0], err)
	}
	return s.deps.Session.Click(p)
}

func (s *Service) handleDoubleClick(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	p, err := geo.ParsePoint(args[0])
	if err != nil {
		return nil, fmt.Errorf("dblclick %q: %w", args[0], err)
	}
	return s.deps.Session.DoubleClick(p)
}

func (s *Service) handleCancel(e dispatcher.Event) (any, error) {
	s.deps.Session.CancelSketch()
	return nil, nil
}

func (s *Service) handleEdit(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.deps.Session.StartEdit(args[0])
}

func (s *Service) handleDrag(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 2)
	if err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("drag: invalid handle index %q", args[0])
	}
	p, err := geo.ParsePoint(args[1])
	if err != nil {
		return nil, fmt.Errorf("drag %q: %w", args[1], err)
	}
	return nil, s.deps.Session.DragVertex(index, p)
}

func (s *Service) handleRadius(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	meters, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, fmt.Errorf("radius: invalid value %q", args[0])
	}
	return nil, s.deps.Session.SetRadius(meters)
}

func (s *Service) handleCommitEdit(e dispatcher.Event) (any, error) {
	return s.deps.Session.CommitEdit()
}

func (s *Service) handleDiscardEdit(e dispatcher.Event) (any, error) {
	s.deps.Session.DiscardEdit()
	return nil, nil
}

func (s *Service) handleMeta(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.deps.Session.EditMetadata(args[0])
}

// handleSet takes a field name followed by the value; extra arguments are
// joined with spaces so unquoted free text survives tokenisation.
func (s *Service) handleSet(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	value := strings.Join(args[1:], " ")
	return nil, s.deps.Session.SetField(metadata.Field(args[0]), value)
}

func (s *Service) handleLink(e dispatcher.Event) (any, error) {
	args, _ := cleanArgs(e, 0)
	resourceID := ""
	if len(args) > 0 {
		resourceID = args[0]
	}
	return nil, s.deps.Session.LinkResource(resourceID)
}

func (s *Service) handleCommit(e dispatcher.Event) (any, error) {
	return s.deps.Session.CommitMetadata()
}

func (s *Service) handleCancelMeta(e dispatcher.Event) (any, error) {
	s.deps.Session.CancelMetadata()
	return nil, nil
}

func (s *Service) handleDelete(e dispatcher.Event) (any, error) {
	args, err := cleanArgs(e, 1)
	if err != nil {
		return nil, err
	}
	return nil, s.deps.Session.Delete(args[0])
}
