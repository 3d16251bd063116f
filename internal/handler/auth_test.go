package handler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college/internal/auth"
)

func TestLoginSetsCookiesAndSanitizedUser(t *testing.T) {
	h := newHarness(t)
	cl := h.client()

	rec := cl.login(t, "700002", "teacher-pw")

	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "700002", user["login_id"])
	assert.Equal(t, "teacher", user["role"])
	assert.NotContains(t, user, "password")

	require.NotEmpty(t, cl.cookies[auth.AccessCookie])
	require.NotEmpty(t, cl.cookies[auth.RefreshCookie])
	assert.NotContains(t, rec.Body.String(), cl.cookies[auth.AccessCookie])
	assert.NotContains(t, rec.Body.String(), cl.cookies[auth.RefreshCookie])
	assert.NotContains(t, rec.Body.String(), "teacher-pw")

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.AccessCookie || ck.Name == auth.RefreshCookie {
			assert.True(t, ck.HttpOnly, ck.Name)
		}
	}
	assert.Equal(t, []string{"login:ok"}, h.recorder.actions())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)

	wrongPassword := h.client().do(http.MethodPost, "/auth/login", map[string]string{"login_id": "650001", "password": "nope"})
	unknownUser := h.client().do(http.MethodPost, "/auth/login", map[string]string{"login_id": "659999", "password": "nope"})
	unknownPrefix := h.client().do(http.MethodPost, "/auth/login", map[string]string{"login_id": "990001", "password": "nope"})

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser, unknownPrefix} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	}
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, wrongPassword.Body.String(), unknownPrefix.Body.String())
	assert.JSONEq(t, `{"error":"Invalid login_id or password"}`, wrongPassword.Body.String())
}

func TestLoginValidatesBody(t *testing.T) {
	h := newHarness(t)

	rec := h.client().do(http.MethodPost, "/auth/login", map[string]string{"login_id": "650001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.client().do(http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.client().do(http.MethodPost, "/auth/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeReturnsIdentity(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "830003", "student-pw")

	rec := cl.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "student", user["role"])
	assert.Equal(t, float64(3), user["student_id"])
	assert.NotContains(t, user, "password")

	h.creds.delete("830003")
	rec = cl.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.client().do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesAndIsSingleUse(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")
	before := cl.snapshot()

	rec := cl.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Token refreshed"}`, rec.Body.String())
	assert.NotEqual(t, before[auth.RefreshCookie], cl.cookies[auth.RefreshCookie])
	assert.NotEqual(t, before[auth.AccessCookie], cl.cookies[auth.AccessCookie])

	// The new pair works.
	assert.Equal(t, http.StatusOK, cl.do(http.MethodGet, "/auth/me", nil).Code)

	// Replaying the consumed refresh token fails.
	replay := h.client()
	replay.restore(before)
	assert.Equal(t, http.StatusUnauthorized, replay.do(http.MethodPost, "/auth/refresh", nil).Code)
}

func TestRefreshRequiresRefreshToken(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")

	// An access token placed in the refresh cookie is rejected.
	cl.cookies[auth.RefreshCookie] = cl.cookies[auth.AccessCookie]
	cl.cookies[auth.RefreshCSRFCookie] = cl.cookies[auth.AccessCSRFCookie]
	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodPost, "/auth/refresh", nil).Code)

	assert.Equal(t, http.StatusUnauthorized, h.client().do(http.MethodPost, "/auth/refresh", nil).Code)
}

func TestConcurrentRefreshGrantsOnePair(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "700002", "teacher-pw")
	session := cl.snapshot()

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := h.client()
			c.restore(session)
			codes[i] = c.do(http.MethodPost, "/auth/refresh", nil).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusUnauthorized, code)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestRefreshFailsWhenLedgerWriteFails(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")
	h.ledger.failWrites = true

	rec := cl.do(http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutRejectsBothTokens(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "700002", "teacher-pw")
	session := cl.snapshot()

	rec := cl.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out"}`, rec.Body.String())
	assert.Empty(t, cl.cookies)

	stale := h.client()
	stale.restore(session)
	assert.Equal(t, http.StatusUnauthorized, stale.do(http.MethodGet, "/auth/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, stale.do(http.MethodPost, "/notice/add", map[string]string{"title": "t", "content": "c"}).Code)
	assert.Equal(t, http.StatusUnauthorized, stale.do(http.MethodPost, "/auth/refresh", nil).Code)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestLogoutClearsCookiesWhenRevokeFails(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")
	h.ledger.failWrites = true

	rec := cl.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cl.cookies)
	assert.Contains(t, h.recorder.actions(), "logout:error")
}

func TestLedgerOutageFailsClosed(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")
	h.ledger.failReads = true

	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodGet, "/auth/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, cl.do(http.MethodPost, "/auth/refresh", nil).Code)
}

func TestRoleGate(t *testing.T) {
	h := newHarness(t)
	teacher := h.client()
	teacher.login(t, "700002", "teacher-pw")
	student := h.client()
	student.login(t, "830003", "student-pw")

	program := map[string]string{"code": "BSC", "name": "B.Sc", "duration": "3 years", "level": "UG"}
	assert.Equal(t, http.StatusForbidden, teacher.do(http.MethodPost, "/programs/add", program).Code)
	assert.Equal(t, http.StatusForbidden, student.do(http.MethodPost, "/programs/add", program).Code)
	assert.Equal(t, http.StatusForbidden, teacher.do(http.MethodDelete, "/schedule/delete/1", nil).Code)
	assert.Equal(t, http.StatusForbidden, student.do(http.MethodPost, "/notice/add", map[string]string{"title": "t", "content": "c"}).Code)
	assert.Equal(t, http.StatusUnauthorized, h.client().do(http.MethodPost, "/programs/add", program).Code)

	rec := teacher.do(http.MethodPost, "/programs/add", program)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestStateChangeRequiresCSRFHeader(t *testing.T) {
	h := newHarness(t)
	cl := h.client()
	cl.login(t, "650001", "admin-pw")
	delete(cl.cookies, auth.AccessCSRFCookie)

	rec := cl.do(http.MethodDelete, "/programs/delete/1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}
