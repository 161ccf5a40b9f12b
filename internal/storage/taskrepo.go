package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/valter-silva-au/todo/pkg/models"
)

// TodosKey is the preference key the whole task collection is stored under.
const TodosKey = "todos_list"

//go:embed todos.schema.json
var todosSchemaJSON string

var todosSchema = jsonschema.MustCompileString("todos.schema.json", todosSchemaJSON)

// Logger is the subset of a leveled logger the repository reports through.
type Logger interface {
	Warn(msg any, keyvals ...any)
}

// TaskRepository persists the complete task collection as one document.
type TaskRepository interface {
	// Load returns the stored collection, or an empty one when nothing is
	// stored or the stored document is unreadable.
	Load() []models.Task
	// Save overwrites the stored collection with tasks.
	Save(tasks []models.Task) error
}

type prefsTaskRepository struct {
	prefs Preferences
	log   Logger
}

// NewTaskRepository creates a TaskRepository that keeps the collection under
// TodosKey in prefs. log may be nil.
func NewTaskRepository(prefs Preferences, log Logger) TaskRepository {
	return &prefsTaskRepository{prefs: prefs, log: log}
}

func (r *prefsTaskRepository) Load() []models.Task {
	raw, ok, err := r.prefs.Get(TodosKey)
	if err != nil {
		r.warn("reading stored tasks", err)
		return []models.Task{}
	}
	if !ok {
		return []models.Task{}
	}

	tasks, err := DecodeTasks([]byte(raw))
	if err != nil {
		r.warn("discarding unreadable stored tasks", err)
		return []models.Task{}
	}
	return tasks
}

func (r *prefsTaskRepository) Save(tasks []models.Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := r.prefs.Put(TodosKey, string(data)); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

func (r *prefsTaskRepository) warn(msg string, err error) {
	if r.log != nil {
		r.log.Warn(msg, "key", TodosKey, "err", err)
	}
}

// taskRecord is the stored shape of a task. It is kept separate from
// models.Task so the document layout cannot drift with the model.
type taskRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// EncodeTasks serializes tasks as a JSON array of {id, title, completed}.
// An empty collection encodes as [].
func EncodeTasks(tasks []models.Task) ([]byte, error) {
	records := make([]taskRecord, len(tasks))
	for i, t := range tasks {
		records[i] = taskRecord{ID: t.ID, Title: t.Title, Completed: t.Completed}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses a document produced by EncodeTasks. The document is
// validated against the stored collection schema before it is trusted.
func DecodeTasks(data []byte) ([]models.Task, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	if err := todosSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}

	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	tasks := make([]models.Task, len(records))
	for i, rec := range records {
		tasks[i] = models.Task{ID: rec.ID, Title: rec.Title, Completed: rec.Completed}
	}
	return tasks, nil
}
