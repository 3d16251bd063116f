package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromLogin(t *testing.T) {
	cases := map[string]Role{
		"650001":   RoleAdmin,
		"700002":   RoleTeacher,
		"830003":   RoleStudent,
		"ab":       RoleUnknown,
		"":         RoleUnknown,
		"6":        RoleUnknown,
		"99000001": RoleUnknown,
		"65":       RoleAdmin,
	}
	for loginID, want := range cases {
		assert.Equal(t, want, RoleFromLogin(loginID), "login id %q", loginID)
	}
}

func TestRoleStringRoundTrip(t *testing.T) {
	assert.Equal(t, "admin", RoleFromLogin("650001").String())
	assert.Equal(t, "teacher", RoleFromLogin("700002").String())
	assert.Equal(t, "student", RoleFromLogin("830003").String())
	assert.Equal(t, "unknown", RoleFromLogin("ab").String())

	for _, r := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		assert.Equal(t, r, ParseRole(r.String()))
		assert.Equal(t, r, RoleFromLogin(r.Prefix()+"000001"))
	}
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Empty(t, RoleUnknown.Prefix())
}

func TestFormatLoginID(t *testing.T) {
	assert.Equal(t, "83000001", FormatLoginID(PrefixStudent, 1))
	assert.Equal(t, "70123456", FormatLoginID(PrefixTeacher, 123456))
	assert.Equal(t, "651234567", FormatLoginID(PrefixAdmin, 1234567))
}

func TestPublicOmitsPassword(t *testing.T) {
	subject := "Physics"
	semester := 3
	programID := int64(2)
	idents := []Identity{
		NewAdmin("650001", "Ada", "ada@example.edu", "pw"),
		NewTeacher("700002", "Tom", "tom@example.edu", "pw", &subject),
		NewStudent("830003", "Sam", "sam@example.edu", "pw", StudentProfile{Semester: &semester, ProgramID: &programID}),
	}
	for _, ident := range idents {
		pub := ident.Public()
		assert.NotContains(t, pub, "password")
		assert.Equal(t, ident.Role.String(), pub["role"])
		assert.Equal(t, ident.LoginID, pub["login_id"])
	}

	assert.Contains(t, idents[0].Public(), "admin_id")
	assert.Equal(t, &subject, idents[1].Public()["subject"])
	student := idents[2].Public()
	assert.Contains(t, student, "student_id")
	assert.Contains(t, student, "roll_no")
	assert.Equal(t, &semester, student["semester"])
}
