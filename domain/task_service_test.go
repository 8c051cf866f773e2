package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTaskFixture(t *testing.T) (*memStore, TaskService, string) {
	t.Helper()
	store := newMemStore()
	seedUser(store, "a@example.com")
	seedProject(store, "proj", "Launch", "a@example.com", time.Now().UTC())
	return store, NewTaskService(store, store), "proj"
}

func TestCreateTaskRejectsPastDueDate(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)

	in := TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today().AddDays(-1)}
	_, err := svc.Create(context.Background(), projectID, in, "a@example.com")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if v.Fields["dueDate"] != "Due date cannot be in the past" {
		t.Fatalf("unexpected dueDate message: %v", v.Fields)
	}
}

func TestCreateTaskAcceptsToday(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)

	in := TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today()}
	task, err := svc.Create(context.Background(), projectID, in, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Completed {
		t.Fatal("completed must default to false")
	}
	if task.ProjectID != projectID {
		t.Fatalf("task bound to wrong project: %s", task.ProjectID)
	}
}

func TestCreateTaskExplicitCompleted(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)

	done := true
	in := TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today(), Completed: &done}
	task, err := svc.Create(context.Background(), projectID, in, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !task.Completed {
		t.Fatal("explicit completed flag was dropped")
	}
}

func TestCreateTaskRequiredFields(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)

	_, err := svc.Create(context.Background(), projectID, TaskInput{}, "a@example.com")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "description", "dueDate"} {
		if _, ok := v.Fields[field]; !ok {
			t.Fatalf("expected %s field message, got %v", field, v.Fields)
		}
	}
}

func TestUpdateTaskCompletedTriState(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)
	ctx := context.Background()

	done := true
	task, err := svc.Create(ctx, projectID, TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today(), Completed: &done}, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absent flag leaves completion untouched.
	updated, err := svc.Update(ctx, task.ID, TaskInput{Title: "Ship v2", Description: "still shipping", DueDate: task.DueDate}, "a@example.com")
	if err != nil {
		t.Fatalf("update without flag: %v", err)
	}
	if !updated.Completed {
		t.Fatal("absent completed flag must not reset completion")
	}
	if updated.Title != "Ship v2" {
		t.Fatalf("title not updated: %s", updated.Title)
	}

	undone := false
	updated, err = svc.Update(ctx, task.ID, TaskInput{Title: "Ship v2", Description: "still shipping", DueDate: task.DueDate, Completed: &undone}, "a@example.com")
	if err != nil {
		t.Fatalf("update with explicit false: %v", err)
	}
	if updated.Completed {
		t.Fatal("explicit false must clear completion")
	}
}

func TestUpdateTaskAllowsPastDueDate(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, projectID, TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today()}, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	past := Today().AddDays(-30)
	updated, err := svc.Update(ctx, task.ID, TaskInput{Title: "Ship", Description: "Ship it", DueDate: past}, "a@example.com")
	if err != nil {
		t.Fatalf("update with past due date: %v", err)
	}
	if !updated.DueDate.Equal(past) {
		t.Fatalf("due date not updated: %s", updated.DueDate)
	}
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	_, svc, projectID := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, projectID, TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today()}, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		done, err := svc.MarkCompleted(ctx, task.ID, "a@example.com")
		if err != nil {
			t.Fatalf("complete attempt %d: %v", i+1, err)
		}
		if !done.Completed {
			t.Fatalf("task not completed on attempt %d", i+1)
		}
	}
	for i := 0; i < 2; i++ {
		open, err := svc.MarkIncomplete(ctx, task.ID, "a@example.com")
		if err != nil {
			t.Fatalf("reopen attempt %d: %v", i+1, err)
		}
		if open.Completed {
			t.Fatalf("task still completed on attempt %d", i+1)
		}
	}
}

func TestTaskOwnershipResolvesThroughParent(t *testing.T) {
	store, svc, projectID := newTaskFixture(t)
	seedUser(store, "b@example.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, projectID, TaskInput{Title: "Ship", Description: "Ship it", DueDate: Today()}, "a@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, task.ID, TaskInput{Title: "X", Description: "Y", DueDate: Today()}, "b@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign update, got %v", err)
	}
	if err := svc.Delete(ctx, task.ID, "b@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if _, err := svc.MarkCompleted(ctx, task.ID, "b@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign completion, got %v", err)
	}
	if _, err := svc.ListByProject(ctx, projectID, "b@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign listing, got %v", err)
	}

	// The error text must not reveal that the task exists under another user.
	_, err = svc.MarkCompleted(ctx, task.ID, "b@example.com")
	if err.Error() != "Task not found" {
		t.Fatalf("unexpected error text: %q", err.Error())
	}
}

func TestListTasksSortedByCreation(t *testing.T) {
	store, svc, projectID := newTaskFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.tasks["t2"] = Task{ID: "t2", ProjectID: projectID, Title: "second", CreatedAt: base.Add(time.Minute)}
	store.tasks["t1"] = Task{ID: "t1", ProjectID: projectID, Title: "first", CreatedAt: base}

	tasks, err := svc.ListByProject(ctx, projectID, "a@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
}
