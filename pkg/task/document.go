package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"tasks-api/pkg/docstore"
)

const documentSchemaURL = "tasks-document.schema.json"

const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "description", "completed", "priority", "createdAt", "updatedAt"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "completed": {"type": "boolean"},
          "priority": {"enum": ["low", "medium", "high"]},
          "createdAt": {"type": "string"},
          "updatedAt": {"type": "string"}
        }
      }
    }
  }
}`

var documentSchema = jsonschema.MustCompileString(documentSchemaURL, documentSchemaJSON)

// DocumentStore is the storage adapter: it maps the task collection onto
// the "tasks" field of a JSON document held by a docstore.Backend. Other
// top-level fields of the document are carried through writes untouched.
type DocumentStore struct {
	backend docstore.Backend
}

// NewDocumentStore wraps backend.
func NewDocumentStore(backend docstore.Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// LoadAll reads and parses the document. A missing, unreadable, malformed or
// wrongly shaped document is a KindStorageRead error.
func (s *DocumentStore) LoadAll(ctx context.Context) ([]Task, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		return nil, readError(err)
	}
	if err := checkShape(data); err != nil {
		return nil, readError(err)
	}
	var doc struct {
		Tasks []Task `json:"tasks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, readError(fmt.Errorf("parse document: %w", err))
	}
	seen := make(map[int]struct{}, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, readError(fmt.Errorf("duplicate task id %d", t.ID))
		}
		seen[t.ID] = struct{}{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	return doc.Tasks, nil
}

// SaveAll re-reads the document, replaces its "tasks" field and writes the
// whole document back with two-space indentation. Any failure, including
// of the re-read, is a KindStorageWrite error.
func (s *DocumentStore) SaveAll(ctx context.Context, tasks []Task) error {
	data, err := s.backend.Read(ctx)
	if err != nil {
		return writeError(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return writeError(fmt.Errorf("parse document: %w", err))
	}
	if doc == nil {
		return writeError(fmt.Errorf("document is not an object"))
	}
	if tasks == nil {
		tasks = []Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return writeError(fmt.Errorf("marshal tasks: %w", err))
	}
	doc["tasks"] = raw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return writeError(fmt.Errorf("marshal document: %w", err))
	}
	out = append(out, '\n')
	if err := s.backend.Write(ctx, out); err != nil {
		return writeError(err)
	}
	return nil
}

func checkShape(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if err := documentSchema.Validate(v); err != nil {
		return fmt.Errorf("document shape: %w", err)
	}
	return nil
}
