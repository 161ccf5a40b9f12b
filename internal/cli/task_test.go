package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// --- Nil store ---

func TestTaskCommands_NilStore(t *testing.T) {
	orig := Store
	defer func() { Store = orig }()
	Store = nil

	for _, args := range [][]string{
		{"add", "x"},
		{"list"},
		{"toggle", "1"},
		{"rename", "1", "x"},
		{"rm", "1"},
		{"clear-completed"},
		{"ui"},
	} {
		_, err := runCLI(t, args...)
		if !errors.Is(err, errStoreNotInitialized) {
			t.Errorf("%v: error = %v, want errStoreNotInitialized", args, err)
		}
	}
}

// --- add ---

func TestAddCmd_JoinsArgs(t *testing.T) {
	store := useMemoryStore(t)

	out, err := runCLI(t, "add", "Buy", "milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("tasks = %+v, want one Buy milk", tasks)
	}
	if !strings.Contains(out, `Added "Buy milk"`) || !strings.Contains(out, "1 item left") {
		t.Errorf("output = %q", out)
	}
}

func TestAddCmd_BlankTitle(t *testing.T) {
	store := useMemoryStore(t)

	out, err := runCLI(t, "add", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Snapshot().TotalCount != 0 {
		t.Error("blank title should not add a task")
	}
	if !strings.Contains(out, "Nothing to add.") {
		t.Errorf("output = %q", out)
	}
}

// --- list ---

func TestListCmd_Empty(t *testing.T) {
	useMemoryStore(t)

	out, err := runCLI(t, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No tasks yet") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "items left") {
		t.Errorf("footer should be hidden for an empty list: %q", out)
	}
}

func TestListCmd_Filter(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	store.AddTask("Walk dog")
	store.ToggleTask(store.Tasks()[1].ID)

	out, err := runCLI(t, "ls", "--filter", "active")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1. [ ] Walk dog") {
		t.Errorf("output missing active task: %q", out)
	}
	if strings.Contains(out, "Buy milk") {
		t.Errorf("completed task shown under active filter: %q", out)
	}
	if !strings.Contains(out, "1 item left (showing active), 1 completed") {
		t.Errorf("unexpected footer: %q", out)
	}
}

func TestListCmd_BadFilter(t *testing.T) {
	useMemoryStore(t)
	if _, err := runCLI(t, "list", "-f", "someday"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

// --- toggle / rename / rm ---

func TestToggleCmd_ByPosition(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	store.AddTask("Walk dog")

	out, err := runCLI(t, "toggle", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	milk := store.Tasks()[1]
	if !milk.Completed {
		t.Error("position 2 (Buy milk) should be completed")
	}
	if !strings.Contains(out, `Marked "Buy milk" completed`) {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "done", shortID(milk.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `Marked "Buy milk" active`) {
		t.Errorf("output = %q", out)
	}
}

func TestToggleCmd_PositionUnderFilter(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	store.AddTask("Walk dog")
	store.ToggleTask(store.Tasks()[1].ID)

	if _, err := runCLI(t, "toggle", "-f", "completed", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Snapshot().CompletedCount != 0 {
		t.Error("position 1 of the completed view should have been reopened")
	}
}

func TestToggleCmd_UnknownRef(t *testing.T) {
	useMemoryStore(t)
	_, err := runCLI(t, "toggle", "7")
	if !errors.Is(err, core.ErrRefNotFound) {
		t.Fatalf("error = %v, want ErrRefNotFound", err)
	}
}

func TestRenameCmd(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")

	out, err := runCLI(t, "rename", "1", "Buy", "oat", "milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Tasks()[0].Title; got != "Buy oat milk" {
		t.Errorf("title = %q, want Buy oat milk", got)
	}
	if !strings.Contains(out, `Renamed "Buy milk" to "Buy oat milk"`) {
		t.Errorf("output = %q", out)
	}
}

func TestRenameCmd_EmptyTitleDeletes(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")

	out, err := runCLI(t, "edit", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Snapshot().TotalCount != 0 {
		t.Error("rename to empty should delete the task")
	}
	if !strings.Contains(out, `Deleted "Buy milk"`) {
		t.Errorf("output = %q", out)
	}
}

func TestRmCmd(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	store.AddTask("Walk dog")

	if _, err := runCLI(t, "rm", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Errorf("tasks = %+v, want only Buy milk", tasks)
	}
}

// --- clear-completed ---

func TestClearCompletedCmd(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	store.AddTask("Walk dog")
	store.ToggleTask(store.Tasks()[1].ID)

	out, err := runCLI(t, "clear-completed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 completed task(s)") {
		t.Errorf("output = %q", out)
	}
	if got := store.Snapshot(); got.TotalCount != 1 || got.CompletedCount != 0 {
		t.Errorf("snapshot = %+v", got)
	}
}

// --- helpers ---

func TestItemsLeft(t *testing.T) {
	tests := map[int]string{0: "0 items left", 1: "1 item left", 5: "5 items left"}
	for n, want := range tests {
		if got := itemsLeft(n); got != want {
			t.Errorf("itemsLeft(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-0000-4000"); got != "3f2a9c1e" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}

func TestCompleteTaskRefs(t *testing.T) {
	store := useMemoryStore(t)
	store.AddTask("Buy milk")
	id := shortID(store.Tasks()[0].ID)

	refs, directive := completeTaskRefs(&cobra.Command{}, nil, "")
	if len(refs) != 1 || refs[0] != id+"\tBuy milk" {
		t.Errorf("refs = %v", refs)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", directive)
	}

	if refs, _ := completeTaskRefs(&cobra.Command{}, []string{id}, ""); len(refs) != 0 {
		t.Errorf("second argument should not complete refs, got %v", refs)
	}
}

func TestCompleteFilters(t *testing.T) {
	values, _ := completeFilters(&cobra.Command{}, nil, "")
	for _, v := range values {
		name, _, _ := strings.Cut(v, "\t")
		if _, err := models.ParseFilter(name); err != nil {
			t.Errorf("completion %q is not a valid filter: %v", name, err)
		}
	}
}
