package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	turns := []llm.Turn{
		{User: "first", Assistant: "one"},
		{User: "second", Assistant: "two"},
		{User: "third", Assistant: "three"},
	}
	for _, turn := range turns {
		if err := d.Append(ctx, "s1", turn); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	d.Append(ctx, "other", llm.Turn{User: "x", Assistant: "y"})

	got, err := d.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(turns, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingSession(t *testing.T) {
	d := openTestDB(t)
	_, err := d.Load(context.Background(), "missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	d.Append(ctx, "a", llm.Turn{User: "12", Assistant: "345"})
	d.Append(ctx, "b", llm.Turn{User: "1", Assistant: "2"})
	d.Append(ctx, "b", llm.Turn{User: "3", Assistant: "4"})
	if _, err := d.conn.Exec("UPDATE sessions SET updated_at = '2020-01-01T00:00:00.000Z' WHERE id = 'a'"); err != nil {
		t.Fatal(err)
	}

	list, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].ID != "b" || list[0].Turns != 2 || list[0].Size != 4 {
		t.Errorf("unexpected first session: %+v", list[0])
	}
	if list[1].ID != "a" || list[1].Turns != 1 || list[1].Size != 5 {
		t.Errorf("unexpected second session: %+v", list[1])
	}
	if list[1].ModTime.Year() != 2020 {
		t.Errorf("expected ModTime parsed from updated_at, got %v", list[1].ModTime)
	}
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	d.Append(ctx, "gone", llm.Turn{User: "q", Assistant: "a"})
	if err := d.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := d.Load(ctx, "gone"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM turns WHERE session_id = 'gone'").Scan(&n)
	if n != 0 {
		t.Errorf("expected turns to be deleted with the session, found %d", n)
	}
	if err := d.Delete(ctx, "gone"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestSessionOverDB(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	sess, err := session.Open(ctx, d, "chat")
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	sess.Append(ctx, llm.Turn{User: "q", Assistant: "a"})

	again, err := session.Open(ctx, d, "chat")
	if err != nil {
		t.Fatalf("session.Open again: %v", err)
	}
	if again.Len() != 1 {
		t.Errorf("expected 1 stored turn, got %d", again.Len())
	}
}
