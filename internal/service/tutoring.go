package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/models"
)

// DefaultTopic names sessions accepted without an explicit topic.
const DefaultTopic = "General tutoring"

// TutoringRepository defines the persistence operations of the request and
// session workflow.
type TutoringRepository interface {
	CreateRequest(ctx context.Context, student, tutor string, now int64) (models.TutorRequest, error)
	ListRequestsByStudent(ctx context.Context, student string) ([]models.TutorRequest, error)
	ListRequestsByTutor(ctx context.Context, tutor string) ([]models.TutorRequest, error)
	// AcceptRequest must move the request to accepted and create its session atomically.
	AcceptRequest(ctx context.Context, id int64, topic string, now int64) (models.Session, error)
	DeclineRequest(ctx context.Context, id int64, now int64) (models.TutorRequest, error)
	ListSessions(ctx context.Context, username string, isTutor bool) ([]models.Session, error)
	UpdateSessionStatus(ctx context.Context, id int64, next models.SessionStatus, now int64) (models.Session, error)
}

// UserDirectory lists users by role.
type UserDirectory interface {
	ListUsernamesByRole(ctx context.Context, role models.Role) ([]string, error)
}

// TutoringService drives the tutor request state machine
// (pending -> accepted | declined) and the sessions created on acceptance.
type TutoringService struct {
	repo  TutoringRepository
	users UserDirectory
	log   *zap.Logger
	now   func() time.Time
}

// NewTutoringService constructs a TutoringService.
func NewTutoringService(repo TutoringRepository, users UserDirectory, log *zap.Logger) *TutoringService {
	return &TutoringService{repo: repo, users: users, log: log, now: time.Now}
}

// RequestTutor creates a pending request from student to tutor. It fails with
// models.ErrActiveRequestExists while a pending or accepted request for the
// pair exists; a declined one does not block.
func (s *TutoringService) RequestTutor(ctx context.Context, student, tutor string) (models.TutorRequest, error) {
	if student == "" || tutor == "" || student == tutor {
		return models.TutorRequest{}, models.ErrInvalidInput
	}
	req, err := s.repo.CreateRequest(ctx, student, tutor, s.now().UnixMilli())
	if err != nil {
		return models.TutorRequest{}, classify(s.log, "RequestTutor", err)
	}
	s.log.Info("tutor requested",
		zap.Int64("request_id", req.ID), zap.String("student", student), zap.String("tutor", tutor))
	return req, nil
}

// AvailableTutors returns every user with the tutor role. Tutors with an
// active request from the caller are not excluded.
func (s *TutoringService) AvailableTutors(ctx context.Context) ([]string, error) {
	tutors, err := s.users.ListUsernamesByRole(ctx, models.RoleTutor)
	if err != nil {
		return nil, classify(s.log, "AvailableTutors", err)
	}
	return tutors, nil
}

// RequestsForStudent returns the student's requests with their tutor and status.
func (s *TutoringService) RequestsForStudent(ctx context.Context, student string) ([]models.TutorRequest, error) {
	reqs, err := s.repo.ListRequestsByStudent(ctx, student)
	if err != nil {
		return nil, classify(s.log, "RequestsForStudent", err)
	}
	return reqs, nil
}

// RequestsForTutor returns the requests addressed to tutor with their student and status.
func (s *TutoringService) RequestsForTutor(ctx context.Context, tutor string) ([]models.TutorRequest, error) {
	reqs, err := s.repo.ListRequestsByTutor(ctx, tutor)
	if err != nil {
		return nil, classify(s.log, "RequestsForTutor", err)
	}
	return reqs, nil
}

// AcceptRequest is the only place a session comes into existence: it moves a
// pending request to accepted and schedules a session on topic.
func (s *TutoringService) AcceptRequest(ctx context.Context, requestID int64, topic string) (models.Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	sess, err := s.repo.AcceptRequest(ctx, requestID, topic, s.now().UnixMilli())
	if err != nil {
		return models.Session{}, classify(s.log, "AcceptRequest", err)
	}
	s.log.Info("tutor request accepted", zap.Int64("request_id", requestID), zap.Int64("session_id", sess.ID))
	return sess, nil
}

// DeclineRequest moves a pending request to declined.
func (s *TutoringService) DeclineRequest(ctx context.Context, requestID int64) (models.TutorRequest, error) {
	req, err := s.repo.DeclineRequest(ctx, requestID, s.now().UnixMilli())
	if err != nil {
		return models.TutorRequest{}, classify(s.log, "DeclineRequest", err)
	}
	s.log.Info("tutor request declined", zap.Int64("request_id", requestID))
	return req, nil
}

// SessionsForUser lists sessions from the tutor's view when isTutor is set,
// otherwise from the student's.
func (s *TutoringService) SessionsForUser(ctx context.Context, username string, isTutor bool) ([]models.Session, error) {
	sessions, err := s.repo.ListSessions(ctx, username, isTutor)
	if err != nil {
		return nil, classify(s.log, "SessionsForUser", err)
	}
	return sessions, nil
}

// CompleteSession marks a scheduled session completed.
func (s *TutoringService) CompleteSession(ctx context.Context, sessionID int64) (models.Session, error) {
	return s.finishSession(ctx, "CompleteSession", sessionID, models.SessionCompleted)
}

// CancelSession marks a scheduled session cancelled.
func (s *TutoringService) CancelSession(ctx context.Context, sessionID int64) (models.Session, error) {
	return s.finishSession(ctx, "CancelSession", sessionID, models.SessionCancelled)
}

func (s *TutoringService) finishSession(ctx context.Context, op string, id int64, next models.SessionStatus) (models.Session, error) {
	if !models.SessionScheduled.CanTransitionTo(next) {
		return models.Session{}, models.ErrInvalidTransition
	}
	sess, err := s.repo.UpdateSessionStatus(ctx, id, next, s.now().UnixMilli())
	if err != nil {
		return models.Session{}, classify(s.log, op, err)
	}
	return sess, nil
}
