package database

import (
	"errors"
	"time"
)

// Storage sentinels. Repositories map driver errors onto these so callers
// can branch without knowing the backend.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing row")
)

// Role is an application role row.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AppUser is an application user row. PasswordHash is a bcrypt hash; the
// clear-text password never leaves the create/update handlers.
type AppUser struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	RoleID           int64     `json:"role_id"`
	RegistrationDate time.Time `json:"registration_date"`
	ProfessorID      *int64    `json:"professor_id,omitempty"`
}

// Professor is a professor row.
type Professor struct {
	ID               int64     `json:"id"`
	UserID           *int64    `json:"user_id,omitempty"`
	Code             string    `json:"professor_code"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
	Photo            string    `json:"photo,omitempty"`
	UniversityID     *int64    `json:"university_id,omitempty"`
	IDCard           string    `json:"id_card"`
}

// GalleryFace is a reference face image in the gallery, one row per stored
// image, with its embedding when computed.
type GalleryFace struct {
	ID          int64     `json:"id"`
	ProfessorID int64     `json:"professor_id"`
	Label       string    `json:"label"`      // gallery subfolder name
	ImagePath   string    `json:"image_path"` // path under the gallery root
	Embedding   []float32 `json:"-"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClassSchedule is a class schedule row. StartTime and EndTime carry only
// the clock part; DaysOfWeek is the stored comma-separated weekday list.
type ClassSchedule struct {
	ID             int64     `json:"id"`
	ProfessorID    int64     `json:"professor_id"`
	KnowledgeArea  string    `json:"knowledge_area,omitempty"`
	EducationLevel string    `json:"education_level,omitempty"`
	Code           string    `json:"code,omitempty"`
	Subject        string    `json:"subject"`
	NRC            string    `json:"nrc,omitempty"`
	Status         string    `json:"status,omitempty"`
	Section        string    `json:"section,omitempty"`
	Credits        float64   `json:"credits,omitempty"`
	Type           string    `json:"type,omitempty"`
	Building       string    `json:"building,omitempty"`
	Classroom      string    `json:"classroom,omitempty"`
	Capacity       int       `json:"capacity,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	DaysOfWeek     string    `json:"days_of_week"`
}

// WorkSchedule is a work (office-hours) schedule row.
type WorkSchedule struct {
	ID            int64     `json:"id"`
	ProfessorID   int64     `json:"professor_id"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DaysOfWeek    string    `json:"days_of_week"`
	ExpectedHours float64   `json:"expected_hours,omitempty"`
}
