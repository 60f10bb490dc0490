// Package service implements the submission page lifecycle: access check,
// page state loading, batch save and standalone comment deletion.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"submission_service/internal/api"
	"submission_service/internal/cache"
	"submission_service/internal/events"
	"submission_service/internal/form"
	"submission_service/internal/gate"
	"submission_service/internal/logging"
	"submission_service/internal/submit"
	"submission_service/internal/utils"
)

var (
	ErrSessionNotFound = errors.New("feedback session does not exist")
)

const (
	closingSoonWindow = 15 * time.Minute

	noticeClosingSoon = "Feedback Session Will Be Closing Soon!"
	noticeClosed      = "Feedback Session Closed"
	noticeNotOpen     = "Feedback Session Not Open"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	Delete(ctx context.Context, key string)
}

type ConfirmationProducer interface {
	SendConfirmation(ctx context.Context, confirmation events.SubmissionConfirmation) error
}

// PageRequest identifies one submission page: session coordinates plus the
// intent and context bag threaded through every upstream call.
type PageRequest struct {
	CourseID            string
	FeedbackSessionName string
	Intent              api.Intent
	Params              api.CallParams
}

// JoinParams is offered to an unregistered participant using a session link.
type JoinParams struct {
	EntityType string `json:"entitytype"`
	Key        string `json:"key"`
}

// PageState is everything the editing surface needs to render one
// submission page.
type PageState struct {
	CourseID            string                        `json:"courseId"`
	FeedbackSessionName string                        `json:"feedbackSessionName"`
	Instructions        string                        `json:"instructions"`
	TimeZone            string                        `json:"timeZone"`
	SubmissionStatus    api.SubmissionStatus          `json:"submissionStatus"`
	StatusNotice        string                        `json:"statusNotice,omitempty"`
	FormsDisabled       bool                          `json:"formsDisabled"`
	PersonName          string                        `json:"personName"`
	PersonEmail         string                        `json:"personEmail"`
	JoinParams          *JoinParams                   `json:"joinParams,omitempty"`
	Questions           []form.QuestionSubmissionForm `json:"questions"`
}

type SubmissionService struct {
	auth      api.AuthClient
	people    api.PersonClient
	sessions  api.SessionClient
	questions api.QuestionClient
	comments  api.CommentClient

	orchestrator *submit.Orchestrator
	responses    api.ResponseClient
	pageCache    Cache
	producer     ConfirmationProducer
	checker      form.EmptinessChecker
	logger       *logging.Logger

	loadRetries int
	loadBackoff time.Duration
}

func New(
	auth api.AuthClient,
	people api.PersonClient,
	sessions api.SessionClient,
	questions api.QuestionClient,
	responses api.ResponseClient,
	comments api.CommentClient,
	pageCache Cache,
	producer ConfirmationProducer,
	logger *logging.Logger,
) *SubmissionService {
	checker := form.NewDetailsChecker()
	return &SubmissionService{
		auth:         auth,
		people:       people,
		sessions:     sessions,
		questions:    questions,
		comments:     comments,
		responses:    responses,
		orchestrator: submit.NewOrchestrator(responses, comments, checker, logger),
		pageCache:    pageCache,
		producer:     producer,
		checker:      checker,
		logger:       logger,
		loadRetries:  3,
		loadBackoff:  200 * time.Millisecond,
	}
}

// CheckAccess runs the session access gate before any loading begins. For a
// link with a registration key the key's validity decides; without a key a
// logged-in user is required.
func (s *SubmissionService) CheckAccess(ctx context.Context, req PageRequest, nav gate.Navigator) (gate.Decision, error) {
	info, err := s.auth.GetAuthUser(ctx)
	if err != nil {
		return gate.DenyOther, fmt.Errorf("failed to fetch auth info: %w", err)
	}

	g := gate.New(nav)
	if req.Params.Key != "" {
		validity, err := s.auth.GetRegkeyValidity(ctx, req.CourseID, req.FeedbackSessionName, req.Params.Key, req.Intent)
		if err != nil {
			return gate.DenyOther, fmt.Errorf("failed to check registration key: %w", err)
		}
		return g.Check(validity), nil
	}

	return g.Check(api.RegkeyValidity{IsAllowedAccess: info.User != nil}), nil
}

// LoadPage loads session, questions, recipients, responses and comments, and
// builds the editable form tree. Transient upstream failures are retried
// with backoff; the assembled state is cached until the next save.
func (s *SubmissionService) LoadPage(ctx context.Context, req PageRequest) (*PageState, error) {
	cacheKey := cache.PageKey(req.CourseID, req.FeedbackSessionName, req.Intent, req.Params)
	if data, ok := s.pageCache.Get(ctx, cacheKey); ok {
		var state PageState
		if err := json.Unmarshal(data, &state); err == nil {
			return &state, nil
		}
	}

	session, err := utils.RetryWithBackoff(ctx, s.loadRetries, s.loadBackoff, func() (api.FeedbackSession, error) {
		return s.sessions.GetFeedbackSession(ctx, req.CourseID, req.FeedbackSessionName, req.Intent, req.Params)
	})
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load feedback session: %w", err)
	}

	name, email, err := s.loadPerson(ctx, req)
	if err != nil {
		return nil, err
	}

	tree, err := s.loadQuestions(ctx, req)
	if err != nil {
		return nil, err
	}

	notice, disabled := sessionNotice(session, time.Now())
	state := &PageState{
		CourseID:            session.CourseID,
		FeedbackSessionName: session.FeedbackSessionName,
		Instructions:        session.Instructions,
		TimeZone:            session.TimeZone,
		SubmissionStatus:    session.SubmissionStatus,
		StatusNotice:        notice,
		FormsDisabled:       disabled,
		PersonName:          name,
		PersonEmail:         email,
		Questions:           tree,
	}
	if req.Params.Key != "" && req.Intent == api.IntentStudentSubmission {
		state.JoinParams = &JoinParams{EntityType: "student", Key: req.Params.Key}
	}

	if data, err := json.Marshal(state); err == nil {
		s.pageCache.Set(ctx, cacheKey, data)
	}
	return state, nil
}

// SaveResponses runs the batch submission over a client-edited form tree and
// publishes a confirmation event once the report has settled.
func (s *SubmissionService) SaveResponses(ctx context.Context, req PageRequest, timezone string, tree []form.QuestionSubmissionForm) (*submit.Report, error) {
	name, email, err := s.loadPerson(ctx, req)
	if err != nil {
		return nil, err
	}

	report, err := s.orchestrator.Save(ctx, submit.SaveContext{
		CourseID:                req.CourseID,
		FeedbackSessionName:     req.FeedbackSessionName,
		FeedbackSessionTimezone: timezone,
		PersonEmail:             email,
		PersonName:              name,
		Intent:                  req.Intent,
		Params:                  req.Params,
	}, tree)
	if err != nil {
		return nil, err
	}

	s.pageCache.Delete(ctx, cache.PageKey(req.CourseID, req.FeedbackSessionName, req.Intent, req.Params))

	confirmation := events.SubmissionConfirmation{
		CourseID:            report.CourseID,
		FeedbackSessionName: report.FeedbackSessionName,
		PersonEmail:         report.PersonEmail,
		PersonName:          report.PersonName,
	}
	for questionID := range report.Answers {
		confirmation.SubmittedQuestionIDs = append(confirmation.SubmittedQuestionIDs, questionID)
	}
	for questionID := range report.FailToSaveQuestions {
		confirmation.FailedQuestionIDs = append(confirmation.FailedQuestionIDs, questionID)
	}
	if err := s.producer.SendConfirmation(ctx, confirmation); err != nil {
		s.logger.Error(ctx, "failed to publish submission confirmation", zap.Error(err))
	}

	return report, nil
}

// DeleteParticipantComment removes a persisted by-giver comment outside a
// batch save.
func (s *SubmissionService) DeleteParticipantComment(ctx context.Context, commentID int64, intent api.Intent, params api.CallParams) error {
	return s.comments.DeleteComment(ctx, commentID, intent, params)
}

// HasAnyResponseToSubmit reports whether a form tree carries anything worth
// saving.
func (s *SubmissionService) HasAnyResponseToSubmit(tree []form.QuestionSubmissionForm) bool {
	return form.HasAnyResponseToSubmit(tree, s.checker)
}

func (s *SubmissionService) loadPerson(ctx context.Context, req PageRequest) (name, email string, err error) {
	if req.Params.PreviewAs != "" {
		return req.Params.PreviewAs, req.Params.PreviewAs, nil
	}
	switch req.Intent {
	case api.IntentInstructorSubmission:
		instructor, err := s.people.GetInstructor(ctx, req.CourseID, req.Params.Key, req.Intent)
		if err != nil {
			return "", "", fmt.Errorf("failed to load instructor: %w", err)
		}
		return instructor.Name, instructor.Email, nil
	default:
		student, err := s.people.GetStudent(ctx, req.CourseID, req.Params.Key)
		if err != nil {
			return "", "", fmt.Errorf("failed to load student: %w", err)
		}
		return student.Name, student.Email, nil
	}
}

func (s *SubmissionService) loadQuestions(ctx context.Context, req PageRequest) ([]form.QuestionSubmissionForm, error) {
	questions, err := utils.RetryWithBackoff(ctx, s.loadRetries, s.loadBackoff, func() ([]api.FeedbackQuestion, error) {
		return s.questions.GetFeedbackQuestions(ctx, req.CourseID, req.FeedbackSessionName, req.Intent, req.Params)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback questions: %w", err)
	}

	recipientsByQuestion := make(map[string][]api.FeedbackQuestionRecipient, len(questions))
	responsesByQuestion := make(map[string][]api.FeedbackResponse, len(questions))
	for _, q := range questions {
		recipients, err := utils.RetryWithBackoff(ctx, s.loadRetries, s.loadBackoff, func() ([]api.FeedbackQuestionRecipient, error) {
			return s.questions.GetQuestionRecipients(ctx, q.FeedbackQuestionID, req.Intent, req.Params)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load recipients for question %s: %w", q.FeedbackQuestionID, err)
		}
		responses, err := utils.RetryWithBackoff(ctx, s.loadRetries, s.loadBackoff, func() ([]api.FeedbackResponse, error) {
			return s.responses.GetFeedbackResponses(ctx, q.FeedbackQuestionID, req.Intent, req.Params)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load responses for question %s: %w", q.FeedbackQuestionID, err)
		}
		recipientsByQuestion[q.FeedbackQuestionID] = recipients
		responsesByQuestion[q.FeedbackQuestionID] = responses
	}

	return form.Build(questions, recipientsByQuestion, responsesByQuestion), nil
}

func sessionNotice(session api.FeedbackSession, now time.Time) (notice string, formsDisabled bool) {
	switch session.SubmissionStatus {
	case api.SubmissionOpen:
		if session.SubmissionEndTimestamp-now.UnixMilli() < closingSoonWindow.Milliseconds() {
			return noticeClosingSoon, false
		}
		return "", false
	case api.SubmissionClosed:
		return noticeClosed, true
	case api.SubmissionVisibleNotOpen:
		return noticeNotOpen, true
	default:
		return "", true
	}
}
