package httpapi

import (
	"net/http"

	"task-manager/internal/api"
)

type askRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.api.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.api.Analytics(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[askRequest](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	interaction, err := s.api.Ask(r.Context(), req.Message)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, interaction)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.api.ListHistory(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	interaction, err := s.api.GetHistory(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, interaction)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.api.DeleteHistory(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.api.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[api.SettingsUpdate](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	settings, err := s.api.UpdateSettings(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
