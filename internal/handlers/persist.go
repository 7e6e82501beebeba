package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/storage"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

// PersistCommand is the buffered command that carries committed changes to storage
const PersistCommand = "persist"

// ActivityRecorder receives one call per committed change. *influx.Manager implements it.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, incident, action string, d core.Drawing) error
}

// changeEvent is the wire form of an annotator.Change inside a persist event
type changeEvent struct {
	Action   string         `json:"action"`
	Revision int            `json:"revision"`
	Drawing  core.Drawing   `json:"drawing"`
	Drawings []core.Drawing `json:"drawings"`
}

// Persister writes committed changes of one incident to the storage backend
// and, when set, to the activity recorder.
type Persister struct {
	Incident string
	Backend  storage.Backend
	Activity ActivityRecorder
	Logger   *slog.Logger
}

// RegisterHandlers registers the persist command. It is buffered so storage
// latency never stalls input handling; the single queue keeps changes in order.
func (p *Persister) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(PersistCommand, p.handlePersist, dispatcher.Buffered(256), dispatcher.Blocking(), dispatcher.Logged())
}

// OnChange returns a session callback that queues every change on d.
func (p *Persister) OnChange(d *dispatcher.Dispatcher) annotator.ChangeFunc {
	return func(c annotator.Change) {
		payload, err := json.Marshal(changeEvent{
			Action:   c.Action,
			Revision: c.Revision,
			Drawing:  c.Drawing,
			Drawings: c.Drawings,
		})
		if err != nil {
			p.logger().Error("failed to encode change", "action", c.Action, "drawing", c.Drawing.ID, "error", err)
			return
		}
		if _, err := d.Dispatch(dispatcher.Event{Command: PersistCommand, Args: []string{string(payload)}}); err != nil {
			p.logger().Error("failed to queue change", "action", c.Action, "drawing", c.Drawing.ID, "error", err)
		}
	}
}

func (p *Persister) handlePersist(e dispatcher.Event) (any, error) {
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("%w: %s expects 1, got %d", ErrMissingArgs, e.Command, len(e.Args))
	}
	var c changeEvent
	if err := json.Unmarshal([]byte(e.Args[0]), &c); err != nil {
		return nil, fmt.Errorf("failed to decode change: %w", err)
	}

	if err := p.Backend.Save(p.Incident, c.Drawings); err != nil {
		return nil, err
	}
	if h, ok := p.Backend.(storage.Historian); ok {
		if err := h.RecordChange(p.Incident, c.Revision, c.Action, c.Drawing); err != nil {
			return nil, err
		}
	}
	if p.Activity != nil {
		if err := p.Activity.RecordActivity(context.Background(), p.Incident, c.Action, c.Drawing); err != nil {
			// activity is best effort, the drawing is already stored
			p.logger().Warn("failed to record activity", "drawing", c.Drawing.ID, "error", err)
		}
	}
	return nil, nil
}

func (p *Persister) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}
