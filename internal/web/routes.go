package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/maperezv/staff-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	detectHandler := handlers.NewDetectHandler(s.config, s.deps.Detector)
	recognizeHandler := handlers.NewRecognizeHandler(s.deps.Voter)
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Attendance, s.deps.AttendanceLog)
	rolesHandler := handlers.NewRolesHandler(s.deps.Roles)
	usersHandler := handlers.NewUsersHandler(s.deps.Users)
	professorsHandler := handlers.NewProfessorsHandler(s.deps.Professors)
	facesHandler := handlers.NewFacesHandler(s.config, s.deps.Faces, s.deps.Professors, s.deps.Embedder)
	classSchedulesHandler := handlers.NewClassSchedulesHandler(s.deps.ClassSchedules, s.deps.Professors)
	workSchedulesHandler := handlers.NewWorkSchedulesHandler(s.deps.WorkSchedules)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Vision pipeline
		r.Post("/detect", detectHandler.Detect)
		r.Post("/recognize", recognizeHandler.Recognize)

		// Attendance
		r.Post("/attendance", attendanceHandler.Register)
		r.Get("/attendance/schedule/{scheduleType}/{scheduleID}", attendanceHandler.ListBySchedule)
		r.Get("/attendance/professor/{professorID}", attendanceHandler.ListByProfessor)

		// Roles
		r.Get("/roles", rolesHandler.List)
		r.Post("/roles", rolesHandler.Create)
		r.Get("/roles/{id}", rolesHandler.Get)
		r.Put("/roles/{id}", rolesHandler.Update)
		r.Delete("/roles/{id}", rolesHandler.Delete)

		// Users
		r.Get("/users", usersHandler.List)
		r.Post("/users", usersHandler.Create)
		r.Get("/users/{id}", usersHandler.Get)
		r.Put("/users/{id}", usersHandler.Update)
		r.Delete("/users/{id}", usersHandler.Delete)

		// Professors
		r.Get("/professors", professorsHandler.List)
		r.Post("/professors", professorsHandler.Create)
		r.Get("/professors/{id}", professorsHandler.Get)
		r.Get("/professors/card/{idCard}", professorsHandler.GetByIDCard)
		r.Put("/professors/{id}", professorsHandler.Update)
		r.Patch("/professors/{id}", professorsHandler.Patch)
		r.Delete("/professors/{id}", professorsHandler.Delete)

		// Gallery faces
		r.Post("/faces", facesHandler.Upload)
		r.Get("/faces/{id}", facesHandler.Get)
		r.Get("/faces/professor/{professorID}", facesHandler.ListByProfessor)
		r.Delete("/faces/{id}", facesHandler.Delete)

		// Class schedules
		r.Get("/class-schedules/{id}", classSchedulesHandler.Get)
		r.Get("/class-schedules/professor/{professorID}", classSchedulesHandler.ListByProfessor)
		r.Post("/class-schedules", classSchedulesHandler.Create)
		r.Post("/class-schedules/import", classSchedulesHandler.Import)
		r.Put("/class-schedules/{id}", classSchedulesHandler.Update)
		r.Delete("/class-schedules/{id}", classSchedulesHandler.Delete)

		// Work schedules
		r.Get("/work-schedules/{id}", workSchedulesHandler.Get)
		r.Get("/work-schedules/professor/{professorID}", workSchedulesHandler.ListByProfessor)
		r.Post("/work-schedules", workSchedulesHandler.Create)
		r.Put("/work-schedules/{id}", workSchedulesHandler.Update)
		r.Delete("/work-schedules/{id}", workSchedulesHandler.Delete)
	})
}
