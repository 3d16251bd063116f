package identity

// Identity is an admin, teacher or student. Role selects the variant: Teacher is
// set only for teachers and Student only for students.
type Identity struct {
	NumericID int64
	LoginID   string
	Name      string
	Email     string
	Password  string
	Role      Role

	Teacher *TeacherProfile
	Student *StudentProfile
}

// TeacherProfile holds teacher-only attributes.
type TeacherProfile struct {
	Subject *string
}

// StudentProfile holds student-only attributes.
type StudentProfile struct {
	RollNo    *string
	Semester  *int
	ProgramID *int64
}

// NewAdmin builds an admin identity.
func NewAdmin(loginID, name, email, password string) Identity {
	return Identity{LoginID: loginID, Name: name, Email: email, Password: password, Role: RoleAdmin}
}

// NewTeacher builds a teacher identity.
func NewTeacher(loginID, name, email, password string, subject *string) Identity {
	return Identity{
		LoginID: loginID, Name: name, Email: email, Password: password, Role: RoleTeacher,
		Teacher: &TeacherProfile{Subject: subject},
	}
}

// NewStudent builds a student identity.
func NewStudent(loginID, name, email, password string, profile StudentProfile) Identity {
	return Identity{
		LoginID: loginID, Name: name, Email: email, Password: password, Role: RoleStudent,
		Student: &profile,
	}
}

// Public returns the client-facing view of the identity. The password never
// appears in it.
func (i Identity) Public() map[string]any {
	out := map[string]any{
		"login_id": i.LoginID,
		"name":     i.Name,
		"email":    i.Email,
		"role":     i.Role.String(),
	}
	switch i.Role {
	case RoleAdmin:
		out["admin_id"] = i.NumericID
	case RoleTeacher:
		out["teacher_id"] = i.NumericID
		var subject *string
		if i.Teacher != nil {
			subject = i.Teacher.Subject
		}
		out["subject"] = subject
	case RoleStudent:
		out["student_id"] = i.NumericID
		var p StudentProfile
		if i.Student != nil {
			p = *i.Student
		}
		out["roll_no"] = p.RollNo
		out["semester"] = p.Semester
		out["program_id"] = p.ProgramID
	}
	return out
}

// TeacherPatch is a partial teacher update; nil fields keep their stored value.
type TeacherPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Subject  *string `json:"subject"`
}

// StudentPatch is a partial student update; nil fields keep their stored value.
type StudentPatch struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	RollNo    *string `json:"roll_no"`
	Semester  *int    `json:"semester"`
	ProgramID *int64  `json:"program_id"`
}
