package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college/internal/academics"
	"college/internal/apperr"
)

// AcademicsHandler serves programs, subjects, assignments and schedules.
type AcademicsHandler struct {
	repo *academics.Repository
}

// NewAcademicsHandler creates the handler.
func NewAcademicsHandler(repo *academics.Repository) *AcademicsHandler {
	return &AcademicsHandler{repo: repo}
}

type programRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Duration    string  `json:"duration"`
	Level       string  `json:"level"`
	Description *string `json:"description"`
}

type subjectRequest struct {
	ProgramID *flexInt `json:"program_id"`
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Semester  *flexInt32 `json:"semester"`
}

type assignRequest struct {
	TeacherID *flexInt `json:"teacher_id"`
	SubjectID *flexInt `json:"subject_id"`
}

type scheduleRequest struct {
	SubjectID *flexInt `json:"subject_id"`
	TeacherID *flexInt `json:"teacher_id"`
	Title     *string  `json:"title"`
	Location  *string  `json:"location"`
	StartTime *string  `json:"start_time"`
	EndTime   *string  `json:"end_time"`
}

// ListPrograms returns every program.
func (h *AcademicsHandler) ListPrograms(c *gin.Context) {
	programs, err := h.repo.ListPrograms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// AddProgram creates a program.
func (h *AcademicsHandler) AddProgram(c *gin.Context) {
	var req programRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Code == "" || req.Name == "" || req.Duration == "" || req.Level == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	id, err := h.repo.AddProgram(c.Request.Context(), academics.Program{
		Code: req.Code, Name: req.Name, Duration: req.Duration, Level: req.Level, Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Program added", "program_id": id})
}

// DeleteProgram removes a program.
func (h *AcademicsHandler) DeleteProgram(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteProgram(c.Request.Context(), id)
	deleted(c, "Program", n, err)
}

// ListSubjects returns every subject.
func (h *AcademicsHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.repo.ListSubjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// SubjectsByProgram returns one program's subjects.
func (h *AcademicsHandler) SubjectsByProgram(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	subjects, err := h.repo.SubjectsByProgram(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// AddSubject creates a subject.
func (h *AcademicsHandler) AddSubject(c *gin.Context) {
	var req subjectRequest
	if !bindBody(c, &req) {
		return
	}
	if req.ProgramID == nil || req.Code == "" || req.Name == "" || req.Semester == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	id, err := h.repo.AddSubject(c.Request.Context(), academics.Subject{
		ProgramID: int64(*req.ProgramID), Code: req.Code, Name: req.Name, Semester: int(*req.Semester),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subject added", "subject_id": id})
}

// DeleteSubject removes a subject.
func (h *AcademicsHandler) DeleteSubject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteSubject(c.Request.Context(), id)
	deleted(c, "Subject", n, err)
}

// AssignTeacher links a teacher to a subject.
func (h *AcademicsHandler) AssignTeacher(c *gin.Context) {
	var req assignRequest
	if !bindBody(c, &req) {
		return
	}
	if req.TeacherID == nil || req.SubjectID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing teacher_id or subject_id"})
		return
	}
	id, err := h.repo.AssignTeacher(c.Request.Context(), int64(*req.TeacherID), int64(*req.SubjectID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Teacher assigned", "id": id})
}

// ListSchedules returns the timetable.
func (h *AcademicsHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.repo.ListSchedules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// AddSchedule creates a timetable slot.
func (h *AcademicsHandler) AddSchedule(c *gin.Context) {
	var req scheduleRequest
	if !bindBody(c, &req) {
		return
	}
	if req.SubjectID == nil || req.StartTime == nil || *req.StartTime == "" || req.EndTime == nil || *req.EndTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields (subject_id, start_time, end_time)"})
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondError(c, err)
		return
	}

	slot := academics.Schedule{
		SubjectID: *patch.SubjectID,
		TeacherID: patch.TeacherID,
		StartTime: *patch.StartTime,
		EndTime:   *patch.EndTime,
	}
	if patch.Title != nil {
		slot.Title = *patch.Title
	}
	if patch.Location != nil {
		slot.Location = *patch.Location
	}

	id, err := h.repo.AddSchedule(c.Request.Context(), slot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Schedule added", "schedule_id": id})
}

// UpdateSchedule applies a partial update.
func (h *AcademicsHandler) UpdateSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req scheduleRequest
	if !bindBody(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.repo.UpdateSchedule(c.Request.Context(), id, patch)
	updated(c, "Schedule", n, err)
}

// DeleteSchedule removes a timetable slot.
func (h *AcademicsHandler) DeleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteSchedule(c.Request.Context(), id)
	deleted(c, "Schedule", n, err)
}

func (r scheduleRequest) patch() (academics.SchedulePatch, error) {
	start, err := timestampPtr("start_time", r.StartTime)
	if err != nil {
		return academics.SchedulePatch{}, err
	}
	end, err := timestampPtr("end_time", r.EndTime)
	if err != nil {
		return academics.SchedulePatch{}, err
	}
	if start != nil && end != nil && !end.After(*start) {
		return academics.SchedulePatch{}, apperr.BadRequest("end_time must be after start_time")
	}
	return academics.SchedulePatch{
		SubjectID: r.SubjectID.int64Ptr(),
		TeacherID: r.TeacherID.int64Ptr(),
		Title:     r.Title,
		Location:  r.Location,
		StartTime: start,
		EndTime:   end,
	}, nil
}
