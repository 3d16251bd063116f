package handler

import (
	"github.com/gin-gonic/gin"

	"college/internal/auth"
	"college/internal/identity"
)

// Routes bundles the handlers mounted on the router.
type Routes struct {
	Guard     *auth.Guard
	Auth      *AuthHandler
	People    *PeopleHandler
	Academics *AcademicsHandler
	Board     *BoardHandler
	// LoginLimit, when set, guards POST /auth/login.
	LoginLimit gin.HandlerFunc
}

// Register mounts every route on r.
func (rt Routes) Register(r gin.IRouter) {
	access := rt.Guard.Access()
	admin := []gin.HandlerFunc{access, auth.RequireRoles(identity.RoleAdmin)}
	staff := []gin.HandlerFunc{access, auth.RequireRoles(identity.RoleAdmin, identity.RoleTeacher)}

	login := []gin.HandlerFunc{rt.Auth.Login}
	if rt.LoginLimit != nil {
		login = append([]gin.HandlerFunc{rt.LoginLimit}, login...)
	}
	r.POST("/auth/login", login...)
	r.POST("/auth/refresh", rt.Guard.Refresh(), rt.Auth.Refresh)
	r.POST("/auth/logout", rt.Guard.Refresh(), rt.Auth.Logout)
	r.GET("/auth/me", access, rt.Auth.Me)
	r.POST("/auth/register/student", with(admin, rt.People.RegisterStudent)...)
	r.POST("/auth/register/teacher", with(admin, rt.People.RegisterTeacher)...)

	r.GET("/programs/all", rt.Academics.ListPrograms)
	r.POST("/programs/add", with(admin, rt.Academics.AddProgram)...)
	r.DELETE("/programs/delete/:id", with(admin, rt.Academics.DeleteProgram)...)

	r.GET("/subjects/all", rt.Academics.ListSubjects)
	r.GET("/subjects/by-program/:id", rt.Academics.SubjectsByProgram)
	r.POST("/subjects/add", with(admin, rt.Academics.AddSubject)...)
	r.DELETE("/subjects/delete/:id", with(admin, rt.Academics.DeleteSubject)...)

	r.GET("/teachers/all", rt.People.ListTeachers)
	r.POST("/teachers/add", with(admin, rt.People.AddTeacher)...)
	r.PUT("/teachers/update/:id", with(admin, rt.People.UpdateTeacher)...)
	r.DELETE("/teachers/delete/:id", with(admin, rt.People.DeleteTeacher)...)

	r.GET("/students/all", rt.People.ListStudents)
	r.POST("/students/add", with(admin, rt.People.AddStudent)...)
	r.PUT("/students/update/:id", with(admin, rt.People.UpdateStudent)...)
	r.DELETE("/students/delete/:id", with(admin, rt.People.DeleteStudent)...)

	r.POST("/subject/assign-teacher", with(admin, rt.Academics.AssignTeacher)...)
	r.GET("/subject/teachers/:id", rt.People.SubjectTeachers)

	r.GET("/schedules/all", rt.Academics.ListSchedules)
	r.POST("/schedule/add", with(staff, rt.Academics.AddSchedule)...)
	r.PUT("/schedule/update/:id", with(staff, rt.Academics.UpdateSchedule)...)
	r.DELETE("/schedule/delete/:id", with(admin, rt.Academics.DeleteSchedule)...)

	r.GET("/notice/all", rt.Board.ListNotices)
	r.POST("/notice/add", with(staff, rt.Board.AddNotice)...)
	r.PUT("/notice/update/:id", with(staff, rt.Board.UpdateNotice)...)
	r.DELETE("/notice/delete/:id", with(staff, rt.Board.DeleteNotice)...)

	r.GET("/event/all", rt.Board.ListEvents)
	r.POST("/event/add", with(staff, rt.Board.AddEvent)...)
	r.PUT("/event/update/:id", with(staff, rt.Board.UpdateEvent)...)
	r.DELETE("/event/delete/:id", with(staff, rt.Board.DeleteEvent)...)

	r.GET("/job/all", rt.Board.ListJobs)
	r.POST("/job/add", with(staff, rt.Board.AddJob)...)
	r.PUT("/job/update/:id", with(staff, rt.Board.UpdateJob)...)
	r.DELETE("/job/delete/:id", with(staff, rt.Board.DeleteJob)...)
}

func with(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	return append(append(out, chain...), h)
}
