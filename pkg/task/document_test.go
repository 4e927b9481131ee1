package task

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tasks-api/pkg/docstore"
)

func TestDocumentRoundTripKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	backend := docstore.NewMemoryStore([]byte(`{"tasks":[],"owner":"ops","meta":{"version":3}}`))
	store := NewDocumentStore(backend)

	created := time.Date(2026, 2, 1, 10, 30, 0, 123000000, time.UTC)
	want := []Task{
		{ID: 2, Title: "b", Description: "second", Completed: true, Priority: PriorityHigh, CreatedAt: created, UpdatedAt: created.Add(time.Minute)},
		{ID: 1, Title: "a", Description: "first", Priority: PriorityLow, CreatedAt: created, UpdatedAt: created},
	}
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Title != w.Title || g.Description != w.Description ||
			g.Completed != w.Completed || g.Priority != w.Priority ||
			!g.CreatedAt.Equal(w.CreatedAt) || !g.UpdatedAt.Equal(w.UpdatedAt) {
			t.Fatalf("task %d = %+v, want %+v", i, g, w)
		}
	}

	raw, _ := backend.Read(ctx)
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if string(doc["owner"]) != `"ops"` {
		t.Fatalf("owner = %s", doc["owner"])
	}
	var meta struct{ Version int }
	if err := json.Unmarshal(doc["meta"], &meta); err != nil || meta.Version != 3 {
		t.Fatalf("meta = %s", doc["meta"])
	}
}

func TestDocumentIsPrettyPrinted(t *testing.T) {
	ctx := context.Background()
	backend := docstore.NewMemoryStore(docstore.EmptyDocument)
	if err := NewDocumentStore(backend).SaveAll(ctx, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := backend.Read(ctx)
	if string(raw) != "{\n  \"tasks\": []\n}\n" {
		t.Fatalf("unexpected document %q", raw)
	}
}

func TestLoadAllRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"tasks": [`,
		"array document":   `[]`,
		"missing tasks":    `{"items": []}`,
		"tasks not array":  `{"tasks": {}}`,
		"bad priority":     `{"tasks":[{"id":1,"title":"a","description":"b","completed":false,"priority":"urgent","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"zero id":          `{"tasks":[{"id":0,"title":"a","description":"b","completed":false,"priority":"low","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"fractional id":    `{"tasks":[{"id":1.5,"title":"a","description":"b","completed":false,"priority":"low","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"string completed": `{"tasks":[{"id":1,"title":"a","description":"b","completed":"no","priority":"low","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"bad timestamp":    `{"tasks":[{"id":1,"title":"a","description":"b","completed":false,"priority":"low","createdAt":"yesterday","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"duplicate ids": `{"tasks":[
			{"id":1,"title":"a","description":"b","completed":false,"priority":"low","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"},
			{"id":1,"title":"a","description":"b","completed":false,"priority":"low","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewDocumentStore(docstore.NewMemoryStore([]byte(doc)))
			if _, err := store.LoadAll(context.Background()); KindOf(err) != KindStorageRead {
				t.Fatalf("expected storage read error, got %v", err)
			}
		})
	}
}

func TestMissingDocumentIsStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(docstore.NewFileStore(filepath.Join(t.TempDir(), "task.json")))

	_, err := store.LoadAll(ctx)
	if KindOf(err) != KindStorageRead || !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("load missing: %v", err)
	}
	if err := store.SaveAll(ctx, nil); KindOf(err) != KindStorageWrite {
		t.Fatalf("save missing: %v", err)
	}
}

func TestSaveAllLeavesCorruptDocumentAlone(t *testing.T) {
	ctx := context.Background()
	backend := docstore.NewMemoryStore([]byte(`not json`))
	if err := NewDocumentStore(backend).SaveAll(ctx, []Task{}); KindOf(err) != KindStorageWrite {
		t.Fatalf("expected write error, got %v", err)
	}
	raw, _ := backend.Read(ctx)
	if string(raw) != "not json" {
		t.Fatalf("document overwritten: %q", raw)
	}
}
