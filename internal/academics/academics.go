// Package academics stores programs, their subjects, teacher assignments and
// the class schedule.
package academics

import "time"

// Program is a degree programme.
type Program struct {
	ID          int64   `json:"program_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Duration    string  `json:"duration"`
	Level       string  `json:"level"`
	Description *string `json:"description"`
}

// Subject belongs to a program and is taught in one semester.
type Subject struct {
	ID        int64  `json:"subject_id"`
	ProgramID int64  `json:"program_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Semester  int    `json:"semester"`
}

// Schedule is one timetable slot for a subject.
type Schedule struct {
	ID        int64     `json:"schedule_id"`
	SubjectID int64     `json:"subject_id"`
	TeacherID *int64    `json:"teacher_id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SchedulePatch is a partial schedule update; nil fields keep their value.
type SchedulePatch struct {
	SubjectID *int64
	TeacherID *int64
	Title     *string
	Location  *string
	StartTime *time.Time
	EndTime   *time.Time
}
