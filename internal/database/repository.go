package database

import (
	"context"

	"github.com/maperezv/staff-attendance/internal/attendance"
)

// RoleStore persists application roles.
type RoleStore interface {
	Create(ctx context.Context, role *Role) error
	Get(ctx context.Context, id int64) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id int64) error
}

// UserStore persists application users.
type UserStore interface {
	Create(ctx context.Context, user *AppUser) error
	Get(ctx context.Context, id int64) (*AppUser, error)
	GetByEmail(ctx context.Context, email string) (*AppUser, error)
	List(ctx context.Context) ([]AppUser, error)
	Update(ctx context.Context, user *AppUser) error
	Delete(ctx context.Context, id int64) error
}

// ProfessorStore persists professors.
type ProfessorStore interface {
	Create(ctx context.Context, p *Professor) error
	Get(ctx context.Context, id int64) (*Professor, error)
	GetByIDCard(ctx context.Context, idCard string) (*Professor, error)
	List(ctx context.Context) ([]Professor, error)
	Update(ctx context.Context, p *Professor) error
	Patch(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// FaceStore persists gallery face images and their embeddings, and serves
// nearest-neighbor search for the local matcher.
type FaceStore interface {
	Create(ctx context.Context, face *GalleryFace) error
	Get(ctx context.Context, id int64) (*GalleryFace, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]GalleryFace, error)
	Delete(ctx context.Context, id int64) error
	// FindNearest returns gallery image paths and distances ordered by
	// ascending embedding distance.
	FindNearest(ctx context.Context, embedding []float32, limit int) ([]string, []float64, error)
}

// ClassScheduleStore persists class schedules.
type ClassScheduleStore interface {
	Create(ctx context.Context, s *ClassSchedule) error
	Get(ctx context.Context, id int64) (*ClassSchedule, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]ClassSchedule, error)
	Update(ctx context.Context, s *ClassSchedule) error
	Delete(ctx context.Context, id int64) error
}

// WorkScheduleStore persists work schedules.
type WorkScheduleStore interface {
	Create(ctx context.Context, s *WorkSchedule) error
	Get(ctx context.Context, id int64) (*WorkSchedule, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]WorkSchedule, error)
	Update(ctx context.Context, s *WorkSchedule) error
	Delete(ctx context.Context, id int64) error
}

// AttendanceReader lists recorded attendance; writes go through the
// attendance.Store transaction surface.
type AttendanceReader interface {
	ListBySchedule(ctx context.Context, typ attendance.ScheduleType, scheduleID int64) ([]attendance.Record, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]attendance.Record, error)
}
