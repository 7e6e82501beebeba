package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/mapmarkup/internal/annotator"
	"github.com/OCAP2/mapmarkup/internal/config"
	"github.com/OCAP2/mapmarkup/internal/dispatcher"
	"github.com/OCAP2/mapmarkup/internal/storage/memory"
	"github.com/OCAP2/mapmarkup/pkg/core"
)

type recordedChange struct {
	revision int
	action   string
	id       string
}

// historyBackend is a memory backend that also implements storage.Historian
type historyBackend struct {
	*memory.Backend
	mu      sync.Mutex
	changes []recordedChange
}

func (b *historyBackend) RecordChange(incident string, revision int, action string, d core.Drawing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, recordedChange{revision, action, d.ID})
	return nil
}

type fakeActivity struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (f *fakeActivity) RecordActivity(ctx context.Context, incident, action string, d core.Drawing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, incident+":"+action)
	return f.err
}

func newPersistedSession(t *testing.T, p *Persister) (*dispatcher.Dispatcher, *annotator.Session) {
	t.Helper()
	d, err := dispatcher.New(noopLogger{})
	require.NoError(t, err)
	p.RegisterHandlers(d)

	session, err := annotator.New(annotator.WithOnChange(p.OnChange(d)))
	require.NoError(t, err)
	NewService(Dependencies{Session: session}).RegisterHandlers(d)
	return d, session
}

func TestPersister_SavesEveryChangeInOrder(t *testing.T) {
	backend := &historyBackend{Backend: memory.New(config.MemoryConfig{})}
	activity := &fakeActivity{}
	p := &Persister{Incident: "fire-1", Backend: backend, Activity: activity}
	d, session := newPersistedSession(t, p)

	run(t, d, "mode marker", "click 1,1", "set name A", "commit")
	id := session.Drawings()[0].ID
	run(t, d, "edit "+id, "drag 0 2,2", "commit-edit", "meta "+id, "set name B", "commit", "delete "+id)
	run(t, d, "mode marker", "click 3,3", "set name C", "commit")
	d.Close()

	stored, err := backend.Load("fire-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "C", stored[0].Name)

	assert.Equal(t, []recordedChange{
		{1, annotator.ActionCreate, id},
		{2, annotator.ActionGeometry, id},
		{3, annotator.ActionUpdate, id},
		{4, annotator.ActionDelete, id},
		{5, annotator.ActionCreate, stored[0].ID},
	}, backend.changes)
	assert.Equal(t, []string{"fire-1:create", "fire-1:geometry", "fire-1:update", "fire-1:delete", "fire-1:create"}, activity.actions)
}

func TestPersister_ActivityErrorDoesNotFail(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	activity := &fakeActivity{err: errors.New("influx down")}
	p := &Persister{Incident: "fire-1", Backend: backend, Activity: activity}

	_, err := p.handlePersist(dispatcher.Event{Command: PersistCommand, Args: []string{`{"action":"create","revision":1,"drawing":{"id":"a","kind":"marker","geometry":{"point":{"lat":1,"lng":1}}},"drawings":[{"id":"a","kind":"marker","geometry":{"point":{"lat":1,"lng":1}}}]}`}})
	require.NoError(t, err)

	stored, err := backend.Load("fire-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPersister_BadPayload(t *testing.T) {
	p := &Persister{Incident: "fire-1", Backend: memory.New(config.MemoryConfig{})}

	_, err := p.handlePersist(dispatcher.Event{Command: PersistCommand, Args: []string{"{"}})
	assert.Error(t, err)

	_, err = p.handlePersist(dispatcher.Event{Command: PersistCommand})
	assert.ErrorIs(t, err, ErrMissingArgs)
}
