package httpapi

import "github.com/go-chi/chi/v5"

// mountRoutes registers all API routes on the given chi router.
func (s *Server) mountRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/me", s.handleMe)

			// Tasks
			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Get("/tasks/overdue", s.handleOverdueTasks)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Patch("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)
			r.Post("/tasks/{id}/toggle", s.handleToggleTask)

			// Reporting
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/analytics", s.handleAnalytics)

			// Assistant
			r.Post("/assistant", s.handleAsk)
			r.Get("/history", s.handleListHistory)
			r.Get("/history/{id}", s.handleGetHistory)
			r.Delete("/history/{id}", s.handleDeleteHistory)

			// Settings
			r.Get("/settings", s.handleGetSettings)
			r.Patch("/settings", s.handleUpdateSettings)
		})
	})
}
