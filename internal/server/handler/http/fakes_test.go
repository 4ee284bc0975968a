package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/models"
)

type fakeAuthService struct {
	register func(username, email, password string, role models.Role) (models.User, error)
	login    func(username, password string) (models.User, error)
	exists   func(username, email string) (bool, bool, error)
	details  func(username string) (models.User, error)
}

func (f *fakeAuthService) Register(_ context.Context, username, email, password string, role models.Role) (models.User, error) {
	return f.register(username, email, password, role)
}

func (f *fakeAuthService) Login(_ context.Context, username, password string) (models.User, error) {
	return f.login(username, password)
}

func (f *fakeAuthService) UserExists(_ context.Context, username, email string) (bool, bool, error) {
	return f.exists(username, email)
}

func (f *fakeAuthService) UserDetails(_ context.Context, username string) (models.User, error) {
	return f.details(username)
}

type fakeHistoryService struct {
	record  func(username, in string, from int, out string, to int) (models.ConversionEntry, error)
	history func(username string) ([]models.ConversionEntry, error)
	recent  func(username string, limit int) ([]models.ConversionEntry, error)
	clear   func(username string) (int64, error)
}

func (f *fakeHistoryService) RecordConversion(_ context.Context, username, in string, from int, out string, to int) (models.ConversionEntry, error) {
	return f.record(username, in, from, out, to)
}

func (f *fakeHistoryService) History(_ context.Context, username string) ([]models.ConversionEntry, error) {
	return f.history(username)
}

func (f *fakeHistoryService) RecentHistory(_ context.Context, username string, limit int) ([]models.ConversionEntry, error) {
	return f.recent(username, limit)
}

func (f *fakeHistoryService) ClearHistory(_ context.Context, username string) (int64, error) {
	return f.clear(username)
}

type fakeCache struct {
	entries []string
	err     error
}

func (f *fakeCache) Load() ([]string, error) { return f.entries, f.err }

func (f *fakeCache) Add(entry string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append([]string{entry}, f.entries...)
	return nil
}

type fakeTutoringService struct {
	requestTutor func(student, tutor string) (models.TutorRequest, error)
	tutors       func() ([]string, error)
	forStudent   func(student string) ([]models.TutorRequest, error)
	forTutor     func(tutor string) ([]models.TutorRequest, error)
	accept       func(id int64, topic string) (models.Session, error)
	decline      func(id int64) (models.TutorRequest, error)
	sessions     func(username string, isTutor bool) ([]models.Session, error)
	complete     func(id int64) (models.Session, error)
	cancel       func(id int64) (models.Session, error)
}

func (f *fakeTutoringService) RequestTutor(_ context.Context, student, tutor string) (models.TutorRequest, error) {
	return f.requestTutor(student, tutor)
}

func (f *fakeTutoringService) AvailableTutors(context.Context) ([]string, error) {
	return f.tutors()
}

func (f *fakeTutoringService) RequestsForStudent(_ context.Context, student string) ([]models.TutorRequest, error) {
	return f.forStudent(student)
}

func (f *fakeTutoringService) RequestsForTutor(_ context.Context, tutor string) ([]models.TutorRequest, error) {
	return f.forTutor(tutor)
}

func (f *fakeTutoringService) AcceptRequest(_ context.Context, id int64, topic string) (models.Session, error) {
	return f.accept(id, topic)
}

func (f *fakeTutoringService) DeclineRequest(_ context.Context, id int64) (models.TutorRequest, error) {
	return f.decline(id)
}

func (f *fakeTutoringService) SessionsForUser(_ context.Context, username string, isTutor bool) ([]models.Session, error) {
	return f.sessions(username, isTutor)
}

func (f *fakeTutoringService) CompleteSession(_ context.Context, id int64) (models.Session, error) {
	return f.complete(id)
}

func (f *fakeTutoringService) CancelSession(_ context.Context, id int64) (models.Session, error) {
	return f.cancel(id)
}

type testAPI struct {
	auth     *fakeAuthService
	history  *fakeHistoryService
	cache    *fakeCache
	tutoring *fakeTutoringService
	handler  http.Handler
}

func newTestAPI() *testAPI {
	a := &testAPI{
		auth:     &fakeAuthService{},
		history:  &fakeHistoryService{},
		cache:    &fakeCache{},
		tutoring: &fakeTutoringService{},
	}
	a.handler = NewRouter(
		&AuthHandler{AuthService: a.auth},
		&HistoryHandler{HistoryService: a.history, Cache: a.cache},
		&TutoringHandler{TutoringService: a.tutoring},
		zap.NewNop(),
	)
	return a
}

// do sends a request from a loopback client. A non-empty body is sent as JSON.
func (a *testAPI) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}
