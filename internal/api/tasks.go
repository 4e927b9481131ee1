package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tasks-api/pkg/task"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := task.ListOptions{Sort: task.ParseSort(q.Get("sort"))}
	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		opts.Completed = &completed
	}
	tasks, err := s.tasks.List(r.Context(), opts)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, err := task.ParseID(r.PathValue("id"))
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	t, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	fields, err := task.ValidatePayload(p)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	t, err := s.tasks.Create(r.Context(), fields)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := task.ParseID(r.PathValue("id"))
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	p, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	patch, err := task.DecodePatch(p)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	t, err := s.tasks.Update(r.Context(), id, patch)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, err := task.ParseID(r.PathValue("id"))
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

func (s *Server) handleTaskByPriority(w http.ResponseWriter, r *http.Request) {
	level, err := task.ParsePriority(r.PathValue("level"))
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	tasks, err := s.tasks.ByPriority(r.Context(), level)
	if err != nil {
		s.writeTaskError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

// decodePayload reads a JSON object body. An empty body is an empty payload.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (task.Payload, bool) {
	var p task.Payload
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return nil, false
	}
	if p == nil {
		p = task.Payload{}
	}
	return p, true
}
