package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"college/internal/academics"
	"college/internal/audit"
	"college/internal/auth"
	"college/internal/board"
	"college/internal/identity"
)

// fakeLedger is an in-memory revocation ledger with switchable failures.
type fakeLedger struct {
	mu         sync.Mutex
	revoked    map[string]bool
	failWrites bool
	failReads  bool
}

func newFakeLedger() *fakeLedger { return &fakeLedger{revoked: map[string]bool{}} }

func (l *fakeLedger) IsRevoked(_ context.Context, ids ...string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failReads {
		return true
	}
	for _, id := range ids {
		if l.revoked[id] {
			return true
		}
	}
	return false
}

func (l *fakeLedger) Revoke(ctx context.Context, jti string, exp time.Time) error {
	_, err := l.Consume(ctx, jti, exp)
	return err
}

func (l *fakeLedger) Consume(_ context.Context, jti string, _ time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWrites {
		return false, errors.New("ledger unavailable")
	}
	if l.revoked[jti] {
		return false, nil
	}
	l.revoked[jti] = true
	return true, nil
}

type fakeCreds struct {
	mu     sync.Mutex
	idents map[string]identity.Identity
}

func (f *fakeCreds) Lookup(_ context.Context, loginID string) *identity.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.idents[loginID]
	if !ok {
		return nil
	}
	return &ident
}

func (f *fakeCreds) Verify(ctx context.Context, loginID, password string) *identity.Identity {
	ident := f.Lookup(ctx, loginID)
	if ident == nil || ident.Password != password {
		return nil
	}
	return ident
}

func (f *fakeCreds) delete(loginID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.idents, loginID)
}

type fakeIDs struct {
	next map[identity.Role]int64
	err  error
}

func (f *fakeIDs) Allocate(_ context.Context, role identity.Role) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next[role]++
	return identity.FormatLoginID(role.Prefix(), f.next[role]), nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *captureRecorder) Record(_ context.Context, evt audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *captureRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action + ":" + e.Outcome
	}
	return out
}

type harness struct {
	router   *gin.Engine
	issuer   *auth.Issuer
	ledger   *fakeLedger
	creds    *fakeCreds
	ids      *fakeIDs
	recorder *captureRecorder
	mock     sqlmock.Sqlmock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{
		ledger: newFakeLedger(),
		creds: &fakeCreds{idents: map[string]identity.Identity{
			"650001": withID(identity.NewAdmin("650001", "Ada", "ada@college.edu", "admin-pw"), 1),
			"700002": withID(identity.NewTeacher("700002", "Tom", "tom@college.edu", "teacher-pw", nil), 2),
			"830003": withID(identity.NewStudent("830003", "Sam", "sam@college.edu", "student-pw", identity.StudentProfile{}), 3),
		}},
		ids:      &fakeIDs{next: map[identity.Role]int64{}},
		recorder: &captureRecorder{},
		mock:     mock,
	}
	h.issuer = auth.NewIssuer(auth.Settings{
		Secret:     "handler-test-secret",
		Issuer:     "college-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, h.ledger)

	h.router = gin.New()
	Routes{
		Guard:     auth.NewGuard(h.issuer, true),
		Auth:      NewAuthHandler(h.creds, h.issuer, auth.NewCookies(true), h.ledger, h.recorder),
		People:    NewPeopleHandler(identity.NewStore(db, nil), h.ids),
		Academics: NewAcademicsHandler(academics.NewRepository(db)),
		Board:     NewBoardHandler(board.NewRepository(db)),
	}.Register(h.router)
	return h
}

func withID(ident identity.Identity, id int64) identity.Identity {
	ident.NumericID = id
	return ident
}

// client keeps a cookie jar and echoes the double-submit csrf cookie.
type client struct {
	h       *harness
	cookies map[string]string
}

func (h *harness) client() *client {
	return &client{h: h, cookies: map[string]string{}}
}

func (cl *client) login(t *testing.T, loginID, password string) *httptest.ResponseRecorder {
	t.Helper()
	rec := cl.do(http.MethodPost, "/auth/login", gin.H{"login_id": loginID, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func (cl *client) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if method != http.MethodGet {
		csrfCookie := auth.AccessCSRFCookie
		if strings.HasPrefix(path, "/auth/refresh") || strings.HasPrefix(path, "/auth/logout") {
			csrfCookie = auth.RefreshCSRFCookie
		}
		if v := cl.cookies[csrfCookie]; v != "" {
			req.Header.Set(auth.CSRFHeader, v)
		}
	}

	rec := httptest.NewRecorder()
	cl.h.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck.Value
	}
	return rec
}

func (cl *client) snapshot() map[string]string {
	out := make(map[string]string, len(cl.cookies))
	for k, v := range cl.cookies {
		out[k] = v
	}
	return out
}

func (cl *client) restore(cookies map[string]string) {
	cl.cookies = make(map[string]string, len(cookies))
	for k, v := range cookies {
		cl.cookies[k] = v
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
