package httpapi

import (
	"net/http"
	"strings"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/services"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type updateTaskRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	DueDate      *string `json:"dueDate"`
	ClearDueDate bool    `json:"clearDueDate"`
	Priority     *string `json:"priority"`
	Status       *string `json:"status"`
}

func parsePriority(s string) (domain.Priority, error) {
	p, err := domain.ParsePriority(s)
	if err != nil {
		return "", errors.NewInvalidInputError("priority", s, "must be low, medium or high")
	}
	return p, nil
}

func parseStatus(s string) (domain.Status, error) {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return "", errors.NewInvalidInputError("status", s, "must be todo, in-progress or completed")
	}
	return st, nil
}

// toDraft converts the request body into a task draft
func (s *Server) toDraft(req createTaskRequest) (domain.TaskDraft, error) {
	draft := domain.TaskDraft{Title: req.Title, Description: req.Description}
	if strings.TrimSpace(req.DueDate) != "" {
		due, err := s.api.ParseDueDate(req.DueDate)
		if err != nil {
			return draft, err
		}
		draft.DueDate = due
	}
	if req.Priority != "" {
		p, err := parsePriority(req.Priority)
		if err != nil {
			return draft, err
		}
		draft.Priority = p
	}
	if req.Status != "" {
		st, err := parseStatus(req.Status)
		if err != nil {
			return draft, err
		}
		draft.Status = st
	}
	return draft, nil
}

// toPatch converts the request body into a partial update
func (s *Server) toPatch(req updateTaskRequest) (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		ClearDueDate: req.ClearDueDate,
	}
	if req.DueDate != nil && !req.ClearDueDate {
		due, err := s.api.ParseDueDate(*req.DueDate)
		if err != nil {
			return patch, err
		}
		patch.DueDate = due
	}
	if req.Priority != nil {
		p, err := parsePriority(*req.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &p
	}
	if req.Status != nil {
		st, err := parseStatus(*req.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &st
	}
	return patch, nil
}

// handleListTasks returns the filtered task view.
// Query parameters: search, status, priority, sort.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status, err := domain.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeDomainError(w, r, s.logger, errors.NewInvalidInputError("status", q.Get("status"), "must be all, todo, in-progress or completed"))
		return
	}
	priority, err := domain.ParsePriorityFilter(q.Get("priority"))
	if err != nil {
		writeDomainError(w, r, s.logger, errors.NewInvalidInputError("priority", q.Get("priority"), "must be all, low, medium or high"))
		return
	}
	order, err := services.ParseSortOrder(q.Get("sort"))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	criteria := domain.FilterCriteria{SearchTerm: q.Get("search"), Status: status, Priority: priority}
	view, err := s.api.TaskView(r.Context(), criteria, order)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[createTaskRequest](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	draft, err := s.toDraft(req)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	task, err := s.api.CreateTask(r.Context(), draft)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.api.OverdueTasks(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.api.GetTask(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[updateTaskRequest](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	patch, err := s.toPatch(req)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	task, err := s.api.UpdateTask(r.Context(), urlParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.api.DeleteTask(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.api.ToggleComplete(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
