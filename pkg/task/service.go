package task

import (
	"context"
	"slices"
	"sync"
	"time"
)

// SortOrder orders a listing by creation time.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSort maps a query value to a SortOrder. Unrecognised values keep
// storage order.
func ParseSort(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortAsc, SortDesc:
		return SortOrder(raw)
	}
	return SortNone
}

// ListOptions filters and orders a listing. A nil Completed means no filter.
type ListOptions struct {
	Completed *bool
	Sort      SortOrder
}

// Service implements the task operations on top of a Store. The collection
// is loaded fresh for every call. Mutating calls are serialised so that
// concurrent read-modify-write cycles in this process cannot lose updates.
type Service struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// List returns tasks, optionally filtered by completion and sorted by
// createdAt. Without a recognised sort order the storage order is kept.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Task, error) {
	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Completed != nil {
		want := *opts.Completed
		tasks = slices.DeleteFunc(tasks, func(t Task) bool { return t.Completed != want })
	}
	switch opts.Sort {
	case SortAsc:
		slices.SortStableFunc(tasks, func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortDesc:
		slices.SortStableFunc(tasks, func(a, b Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return tasks, nil
}

// Get returns the task with the given id.
func (s *Service) Get(ctx context.Context, id int) (*Task, error) {
	if id <= 0 {
		return nil, validationError("", "Invalid task ID")
	}
	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, notFound()
	}
	t := tasks[i]
	return &t, nil
}

// Create appends a new task with id one past the current maximum.
func (s *Service) Create(ctx context.Context, f Fields) (*Task, error) {
	if !f.Priority.Valid() || f.Title == "" || f.Description == "" {
		return nil, validationError("", "Invalid task data")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	t := Task{
		ID:          nextID(tasks),
		Title:       f.Title,
		Description: f.Description,
		Completed:   f.Completed,
		Priority:    f.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tasks = append(tasks, t)
	if err := s.store.SaveAll(ctx, tasks); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update merges the fields present in p into the task and refreshes
// updatedAt. id and createdAt never change.
func (s *Service) Update(ctx context.Context, id int, p Patch) (*Task, error) {
	if id <= 0 {
		return nil, validationError("", "Invalid task ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, notFound()
	}

	t := tasks[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	t.UpdatedAt = s.timestamp()
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	tasks[i] = t
	if err := s.store.SaveAll(ctx, tasks); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the task with the given id.
func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return validationError("", "Invalid task ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return notFound()
	}
	tasks = slices.Delete(tasks, i, i+1)
	return s.store.SaveAll(ctx, tasks)
}

// ByPriority returns the tasks at exactly the given level, in storage order.
func (s *Service) ByPriority(ctx context.Context, level Priority) ([]Task, error) {
	if !level.Valid() {
		return nil, validationError("", "Invalid priority level")
	}
	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(tasks, func(t Task) bool { return t.Priority != level }), nil
}

// Summary counts tasks for the status endpoint.
type Summary struct {
	Tasks      int              `json:"tasks"`
	Completed  int              `json:"completed"`
	Pending    int              `json:"pending"`
	ByPriority map[Priority]int `json:"by_priority"`
}

// Summarize returns counts over the current collection.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	tasks, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Tasks: len(tasks), ByPriority: make(map[Priority]int, len(Priorities))}
	for _, p := range Priorities {
		sum.ByPriority[p] = 0
	}
	for _, t := range tasks {
		if t.Completed {
			sum.Completed++
		} else {
			sum.Pending++
		}
		sum.ByPriority[t.Priority]++
	}
	return sum, nil
}

func indexOf(tasks []Task, id int) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

func nextID(tasks []Task) int {
	maxID := 0
	for _, t := range tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}
