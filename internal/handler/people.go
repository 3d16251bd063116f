package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"college/internal/identity"
)

// LoginIDs allocates login ids.
type LoginIDs interface {
	Allocate(ctx context.Context, role identity.Role) (string, error)
}

// PeopleHandler serves the teacher and student CRUD routes and the admin
// registration helpers.
type PeopleHandler struct {
	store *identity.Store
	ids   LoginIDs
}

// NewPeopleHandler creates the handler.
func NewPeopleHandler(store *identity.Store, ids LoginIDs) *PeopleHandler {
	return &PeopleHandler{store: store, ids: ids}
}

type teacherRequest struct {
	LoginID  string  `json:"login_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Subject  *string `json:"subject"`
}

type studentRequest struct {
	LoginID   string   `json:"login_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	RollNo    *string  `json:"roll_no"`
	Semester  *flexInt32 `json:"semester"`
	ProgramID *flexInt `json:"program_id"`
}

type studentPatchRequest struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email"`
	Password  *string  `json:"password"`
	RollNo    *string  `json:"roll_no"`
	Semester  *flexInt32 `json:"semester"`
	ProgramID *flexInt `json:"program_id"`
}

// ListTeachers returns every teacher.
func (h *PeopleHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.store.ListTeachers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicAll(teachers))
}

// SubjectTeachers returns the teachers assigned to a subject.
func (h *PeopleHandler) SubjectTeachers(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	teachers, err := h.store.ListTeachersForSubject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicAll(teachers))
}

// AddTeacher creates a teacher with a supplied or allocated login id.
func (h *PeopleHandler) AddTeacher(c *gin.Context) {
	h.createTeacher(c, false)
}

// RegisterTeacher creates a teacher with an allocated login id.
func (h *PeopleHandler) RegisterTeacher(c *gin.Context) {
	h.createTeacher(c, true)
}

func (h *PeopleHandler) createTeacher(c *gin.Context, register bool) {
	var req teacherRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if register {
		req.LoginID = ""
	}

	loginID, ok := h.loginID(c, req.LoginID, identity.RoleTeacher)
	if !ok {
		return
	}
	id, err := h.store.Create(c.Request.Context(), identity.NewTeacher(loginID, req.Name, req.Email, req.Password, nonEmpty(req.Subject)))
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Teacher added"
	if register {
		msg = "Teacher registered"
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "teacher_id": id, "login_id": loginID})
}

// UpdateTeacher applies a partial update.
func (h *PeopleHandler) UpdateTeacher(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var patch identity.TeacherPatch
	if !bindBody(c, &patch) {
		return
	}
	n, err := h.store.UpdateTeacher(c.Request.Context(), id, patch)
	updated(c, "Teacher", n, err)
}

// DeleteTeacher removes a teacher.
func (h *PeopleHandler) DeleteTeacher(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.store.Delete(c.Request.Context(), identity.RoleTeacher, id)
	deleted(c, "Teacher", n, err)
}

// ListStudents returns every student.
func (h *PeopleHandler) ListStudents(c *gin.Context) {
	students, err := h.store.ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicAll(students))
}

// AddStudent creates a student with a supplied or allocated login id.
func (h *PeopleHandler) AddStudent(c *gin.Context) {
	h.createStudent(c, false)
}

// RegisterStudent creates a student with an allocated login id.
func (h *PeopleHandler) RegisterStudent(c *gin.Context) {
	h.createStudent(c, true)
}

func (h *PeopleHandler) createStudent(c *gin.Context, register bool) {
	var req studentRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if register {
		req.LoginID = ""
	}

	loginID, ok := h.loginID(c, req.LoginID, identity.RoleStudent)
	if !ok {
		return
	}
	profile := identity.StudentProfile{
		RollNo:    nonEmpty(req.RollNo),
		Semester:  req.Semester.intPtr(),
		ProgramID: req.ProgramID.int64Ptr(),
	}
	id, err := h.store.Create(c.Request.Context(), identity.NewStudent(loginID, req.Name, req.Email, req.Password, profile))
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Student added"
	if register {
		msg = "Student registered"
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "student_id": id, "login_id": loginID})
}

// UpdateStudent applies a partial update.
func (h *PeopleHandler) UpdateStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req studentPatchRequest
	if !bindBody(c, &req) {
		return
	}
	n, err := h.store.UpdateStudent(c.Request.Context(), id, identity.StudentPatch{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		RollNo:    req.RollNo,
		Semester:  req.Semester.intPtr(),
		ProgramID: req.ProgramID.int64Ptr(),
	})
	updated(c, "Student", n, err)
}

// DeleteStudent removes a student.
func (h *PeopleHandler) DeleteStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.store.Delete(c.Request.Context(), identity.RoleStudent, id)
	deleted(c, "Student", n, err)
}

// loginID returns the supplied id or allocates one for role. Allocation
// happens only after the request has been validated.
func (h *PeopleHandler) loginID(c *gin.Context, supplied string, role identity.Role) (string, bool) {
	if supplied != "" {
		return supplied, true
	}
	id, err := h.ids.Allocate(c.Request.Context(), role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate login id"})
		return "", false
	}
	return id, true
}

func publicAll(idents []identity.Identity) []map[string]any {
	out := make([]map[string]any, 0, len(idents))
	for _, ident := range idents {
		out = append(out, ident.Public())
	}
	return out
}
