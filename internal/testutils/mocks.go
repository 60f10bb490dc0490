// Package testutils holds hand-written testify mocks for the upstream
// collaborator interfaces.
package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"submission_service/internal/api"
	"submission_service/internal/events"
)

type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) GetAuthUser(ctx context.Context) (api.AuthInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.AuthInfo), args.Error(1)
}

func (m *MockAuthClient) GetRegkeyValidity(ctx context.Context, courseID, feedbackSessionName, key string, intent api.Intent) (api.RegkeyValidity, error) {
	args := m.Called(ctx, courseID, feedbackSessionName, key, intent)
	return args.Get(0).(api.RegkeyValidity), args.Error(1)
}

type MockPersonClient struct {
	mock.Mock
}

func (m *MockPersonClient) GetStudent(ctx context.Context, courseID, key string) (api.Student, error) {
	args := m.Called(ctx, courseID, key)
	return args.Get(0).(api.Student), args.Error(1)
}

func (m *MockPersonClient) GetInstructor(ctx context.Context, courseID, key string, intent api.Intent) (api.Instructor, error) {
	args := m.Called(ctx, courseID, key, intent)
	return args.Get(0).(api.Instructor), args.Error(1)
}

type MockSessionClient struct {
	mock.Mock
}

func (m *MockSessionClient) GetFeedbackSession(ctx context.Context, courseID, feedbackSessionName string, intent api.Intent, params api.CallParams) (api.FeedbackSession, error) {
	args := m.Called(ctx, courseID, feedbackSessionName, intent, params)
	return args.Get(0).(api.FeedbackSession), args.Error(1)
}

type MockQuestionClient struct {
	mock.Mock
}

func (m *MockQuestionClient) GetFeedbackQuestions(ctx context.Context, courseID, feedbackSessionName string, intent api.Intent, params api.CallParams) ([]api.FeedbackQuestion, error) {
	args := m.Called(ctx, courseID, feedbackSessionName, intent, params)
	return args.Get(0).([]api.FeedbackQuestion), args.Error(1)
}

func (m *MockQuestionClient) GetQuestionRecipients(ctx context.Context, questionID string, intent api.Intent, params api.CallParams) ([]api.FeedbackQuestionRecipient, error) {
	args := m.Called(ctx, questionID, intent, params)
	return args.Get(0).([]api.FeedbackQuestionRecipient), args.Error(1)
}

type MockResponseClient struct {
	mock.Mock
}

func (m *MockResponseClient) GetFeedbackResponses(ctx context.Context, questionID string, intent api.Intent, params api.CallParams) ([]api.FeedbackResponse, error) {
	args := m.Called(ctx, questionID, intent, params)
	return args.Get(0).([]api.FeedbackResponse), args.Error(1)
}

func (m *MockResponseClient) SubmitFeedbackResponses(ctx context.Context, questionID string, req api.SubmitResponsesRequest, intent api.Intent, params api.CallParams) ([]api.FeedbackResponse, error) {
	args := m.Called(ctx, questionID, req, intent, params)
	return args.Get(0).([]api.FeedbackResponse), args.Error(1)
}

type MockCommentClient struct {
	mock.Mock
}

func (m *MockCommentClient) CreateComment(ctx context.Context, req api.CommentRequest, responseID string, intent api.Intent, params api.CallParams) (api.FeedbackResponseComment, error) {
	args := m.Called(ctx, req, responseID, intent, params)
	return args.Get(0).(api.FeedbackResponseComment), args.Error(1)
}

func (m *MockCommentClient) UpdateComment(ctx context.Context, req api.CommentRequest, commentID int64, intent api.Intent, params api.CallParams) (api.FeedbackResponseComment, error) {
	args := m.Called(ctx, req, commentID, intent, params)
	return args.Get(0).(api.FeedbackResponseComment), args.Error(1)
}

func (m *MockCommentClient) DeleteComment(ctx context.Context, commentID int64, intent api.Intent, params api.CallParams) error {
	args := m.Called(ctx, commentID, intent, params)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, data []byte) {
	m.Called(ctx, key, data)
}

func (m *MockCache) Delete(ctx context.Context, key string) {
	m.Called(ctx, key)
}

type MockConfirmationProducer struct {
	mock.Mock
}

func (m *MockConfirmationProducer) SendConfirmation(ctx context.Context, confirmation events.SubmissionConfirmation) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}
