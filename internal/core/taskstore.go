package core

import (
	"slices"
	"strings"
	"sync"

	"github.com/valter-silva-au/todo/pkg/models"
)

// Listener receives every published change. Listeners run synchronously with
// the store lock held and must not call back into the store.
type Listener func(change models.Change)

// TaskStore is the single owner of the task collection and the current
// filter. Every mutation returns the snapshot it published; mutations that
// change nothing return the current snapshot without persisting or notifying.
type TaskStore interface {
	AddTask(rawTitle string) models.Snapshot
	ToggleTask(id string) models.Snapshot
	RenameTask(id, rawNewTitle string) models.Snapshot
	DeleteTask(id string) models.Snapshot
	ClearCompleted() models.Snapshot
	SetFilter(filter models.Filter) models.Snapshot

	Snapshot() models.Snapshot
	Tasks() []models.Task
	Get(id string) (models.Task, bool)
	Subscribe(l Listener) (unsubscribe func())
}

type subscription struct {
	id int
	fn Listener
}

type taskStore struct {
	mu sync.Mutex

	repo   TaskRepository
	ids    IDGenerator
	events EventLogger
	log    Logger

	tasks   []models.Task
	filter  models.Filter
	version uint64
	snap    models.Snapshot

	listeners []subscription
	nextSubID int
}

// NewTaskStore creates a TaskStore seeded from repo. The filter always starts
// at All. ids, events and log may be nil.
func NewTaskStore(repo TaskRepository, ids IDGenerator, events EventLogger, log Logger) TaskStore {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if log == nil {
		log = nopLogger{}
	}
	s := &taskStore{
		repo:   repo,
		ids:    ids,
		events: events,
		log:    log,
		filter: models.FilterAll,
	}
	s.tasks = repo.Load()
	if s.tasks == nil {
		s.tasks = []models.Task{}
	}
	s.snap = s.derive()
	s.log.Debug("loaded tasks", "total", s.snap.TotalCount, "active", s.snap.ActiveCount)
	return s
}

func (s *taskStore) AddTask(rawTitle string) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := normalizeTitle(rawTitle)
	if title == "" {
		return cloneSnapshot(s.snap)
	}
	task := models.Task{ID: s.ids.NewID(), Title: title}
	s.tasks = slices.Insert(s.tasks, 0, task)
	return s.commit(models.OpAdd, task.ID, map[string]any{"task_id": task.ID, "title": task.Title})
}

func (s *taskStore) ToggleTask(id string) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return cloneSnapshot(s.snap)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return s.commit(models.OpToggle, id, map[string]any{"task_id": id, "completed": s.tasks[i].Completed})
}

// RenameTask replaces the title of the task with id. A title that trims to
// nothing deletes the task instead, so an empty title is never stored.
func (s *taskStore) RenameTask(id, rawNewTitle string) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := normalizeTitle(rawNewTitle)
	if title == "" {
		return s.deleteLocked(id)
	}
	i := s.indexOf(id)
	if i < 0 {
		return cloneSnapshot(s.snap)
	}
	s.tasks[i].Title = title
	return s.commit(models.OpRename, id, map[string]any{"task_id": id, "title": title})
}

func (s *taskStore) DeleteTask(id string) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *taskStore) deleteLocked(id string) models.Snapshot {
	i := s.indexOf(id)
	if i < 0 {
		return cloneSnapshot(s.snap)
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return s.commit(models.OpDelete, id, map[string]any{"task_id": id})
}

func (s *taskStore) ClearCompleted() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t models.Task) bool { return t.Completed })
	removed := before - len(s.tasks)
	if removed == 0 {
		return cloneSnapshot(s.snap)
	}
	return s.commit(models.OpClearCompleted, "", map[string]any{"removed": removed})
}

// SetFilter changes the current filter. The filter is session state and is
// never persisted. Unknown filters are ignored.
func (s *taskStore) SetFilter(filter models.Filter) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !filter.Valid() || filter == s.filter {
		return cloneSnapshot(s.snap)
	}
	s.filter = filter
	return s.commit(models.OpFilter, "", map[string]any{"filter": string(filter)})
}

func (s *taskStore) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snap)
}

func (s *taskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

func (s *taskStore) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

func (s *taskStore) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// commit persists the collection (unless only the filter changed), publishes
// a new snapshot and notifies listeners. Must be called with s.mu held.
func (s *taskStore) commit(op models.ChangeOp, taskID string, data map[string]any) models.Snapshot {
	if op != models.OpFilter {
		if err := s.repo.Save(s.tasks); err != nil {
			// The in-memory collection stays authoritative; the next
			// successful save writes it out in full.
			s.log.Error("persisting tasks", "op", op, "err", err)
			s.logEvent("todo.persist_failed", map[string]any{"op": string(op), "error": err.Error()})
		}
	}

	s.version++
	s.snap = s.derive()
	s.logEvent("todo."+string(op), data)
	s.log.Debug("tasks changed", "op", op, "total", s.snap.TotalCount, "active", s.snap.ActiveCount, "filter", s.snap.Filter)

	for _, sub := range s.listeners {
		sub.fn(models.Change{Op: op, TaskID: taskID, Snapshot: cloneSnapshot(s.snap)})
	}
	return cloneSnapshot(s.snap)
}

// derive recomputes the filtered view and counts in a single pass.
func (s *taskStore) derive() models.Snapshot {
	snap := models.Snapshot{
		Version:    s.version,
		Filter:     s.filter,
		Filtered:   make([]models.Task, 0, len(s.tasks)),
		TotalCount: len(s.tasks),
	}
	for _, t := range s.tasks {
		if t.Completed {
			snap.CompletedCount++
		} else {
			snap.ActiveCount++
		}
		if s.filter.Matches(t) {
			snap.Filtered = append(snap.Filtered, t)
		}
	}
	return snap
}

func (s *taskStore) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

func (s *taskStore) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(eventType, data); err != nil {
		s.log.Debug("recording event", "type", eventType, "err", err)
	}
}

// normalizeTitle trims surrounding whitespace and replaces invalid UTF-8 with
// U+FFFD, so the title held in memory is exactly the one that is stored.
func normalizeTitle(raw string) string {
	return strings.ToValidUTF8(strings.TrimSpace(raw), "\uFFFD")
}

func cloneSnapshot(snap models.Snapshot) models.Snapshot {
	snap.Filtered = slices.Clone(snap.Filtered)
	return snap
}
