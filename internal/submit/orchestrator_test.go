package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"submission_service/internal/api"
	"submission_service/internal/form"
	"submission_service/internal/logging"
	"submission_service/internal/submit"
	"submission_service/internal/testutils"
)

var testSaveContext = submit.SaveContext{
	CourseID:            "CS3281",
	FeedbackSessionName: "First Session",
	PersonEmail:         "alice@tmms.com",
	PersonName:          "Alice Betsy",
	Intent:              api.IntentStudentSubmission,
	Params:              api.CallParams{Key: "reg-key"},
}

func newOrchestrator(responses *testutils.MockResponseClient, comments *testutils.MockCommentClient) *submit.Orchestrator {
	return submit.NewOrchestrator(responses, comments, form.NewDetailsChecker(), logging.New(zap.NewNop()))
}

func answeredEntry(recipient, responseID string) form.RecipientSubmissionForm {
	return form.RecipientSubmissionForm{
		RecipientIdentifier: recipient,
		ResponseID:          responseID,
		ResponseDetails:     json.RawMessage(`{"questionType":"MCQ","answer":"choice A"}`),
		IsValid:             true,
	}
}

func emptyEntry(recipient string) form.RecipientSubmissionForm {
	return form.RecipientSubmissionForm{
		RecipientIdentifier: recipient,
		ResponseDetails:     json.RawMessage(`{"questionType":"MCQ"}`),
		IsValid:             true,
	}
}

func question(id string, entries ...form.RecipientSubmissionForm) form.QuestionSubmissionForm {
	return form.QuestionSubmissionForm{
		FeedbackQuestionID:       id,
		QuestionType:             "MCQ",
		RecipientSubmissionForms: entries,
	}
}

func TestSave(t *testing.T) {
	t.Run("aggregates answers, unanswered and failures per question", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		tree := []form.QuestionSubmissionForm{
			question("q1", answeredEntry("bebopie", "")),
			question("q2", answeredEntry("bluesie", "")),
			question("q3", emptyEntry("bebopie")),
		}

		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, testSaveContext.Intent, testSaveContext.Params).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-1", RecipientIdentifier: "bebopie"}}, nil)
		responses.On("SubmitFeedbackResponses", mock.Anything, "q2", mock.Anything, testSaveContext.Intent, testSaveContext.Params).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-2", RecipientIdentifier: "bluesie"}}, nil)

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		responses.AssertNumberOfCalls(t, "SubmitFeedbackResponses", 2)
		assert.Equal(t, map[string]string{"q1": "", "q2": "", "q3": ""}, report.RequestIDs)
		assert.Equal(t, "CS3281", report.CourseID)
		assert.Equal(t, "First Session", report.FeedbackSessionName)
		assert.Equal(t, "alice@tmms.com", report.PersonEmail)
		assert.Equal(t, "Alice Betsy", report.PersonName)
		require.Contains(t, report.Answers, "q1")
		require.Contains(t, report.Answers, "q2")
		assert.NotContains(t, report.Answers, "q3")
		assert.Equal(t, []string{"q3"}, report.NotYetAnsweredQuestions)
		assert.Empty(t, report.FailToSaveQuestions)
	})

	t.Run("writes server-assigned response ids back into the tree", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		tree := []form.QuestionSubmissionForm{
			question("q1", answeredEntry("bebopie", ""), answeredEntry("bluesie", "old-id")),
		}
		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{
				{FeedbackResponseID: "new-id-1", RecipientIdentifier: "bebopie"},
				{FeedbackResponseID: "new-id-2", RecipientIdentifier: "bluesie"},
			}, nil)

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		assert.Equal(t, "new-id-1", report.Questions[0].RecipientSubmissionForms[0].ResponseID)
		assert.Equal(t, "new-id-2", report.Questions[0].RecipientSubmissionForms[1].ResponseID)
	})

	t.Run("one failing question does not block a succeeding one", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		tree := []form.QuestionSubmissionForm{
			question("q1", answeredEntry("bebopie", "")),
			question("q2", answeredEntry("bluesie", "")),
		}
		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse(nil), &api.APIError{StatusCode: 500, Message: "The server encountered an error"})
		responses.On("SubmitFeedbackResponses", mock.Anything, "q2", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-2", RecipientIdentifier: "bluesie"}}, nil)

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		assert.Equal(t, "The server encountered an error", report.FailToSaveQuestions["q1"])
		require.Contains(t, report.Answers, "q2")
		assert.NotContains(t, report.Answers, "q1")
		assert.Empty(t, report.NotYetAnsweredQuestions)
	})

	t.Run("submits one request per question covering all eligible recipients", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		tree := []form.QuestionSubmissionForm{
			question("q1", answeredEntry("bebopie", ""), emptyEntry("skipped"), answeredEntry("bluesie", "")),
		}
		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.MatchedBy(func(req api.SubmitResponsesRequest) bool {
			if len(req.Responses) != 2 {
				return false
			}
			return req.Responses[0].Recipient == "bebopie" && req.Responses[1].Recipient == "bluesie"
		}), mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{}, nil)

		_, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		responses.AssertNumberOfCalls(t, "SubmitFeedbackResponses", 1)
	})

	t.Run("creates comment for saved response after id write-back", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		entry := answeredEntry("bebopie", "")
		entry.CommentByGiver = &form.CommentRow{
			EditForm: form.CommentEditForm{CommentText: "comment text here"},
		}
		tree := []form.QuestionSubmissionForm{question("q1", entry)}

		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-1", RecipientIdentifier: "bebopie"}}, nil)
		created := api.FeedbackResponseComment{FeedbackResponseCommentID: 911, CommentText: "comment text here"}
		comments.On("CreateComment", mock.Anything, mock.Anything, "response-id-1", testSaveContext.Intent, testSaveContext.Params).
			Return(created, nil)

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		comments.AssertNumberOfCalls(t, "CreateComment", 1)
		row := report.Questions[0].RecipientSubmissionForms[0].CommentByGiver
		require.NotNil(t, row)
		require.NotNil(t, row.OriginalComment)
		assert.Equal(t, int64(911), row.OriginalComment.FeedbackResponseCommentID)
	})

	t.Run("comment failure does not disturb the recorded answer", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		entry := answeredEntry("bebopie", "")
		entry.CommentByGiver = &form.CommentRow{
			EditForm: form.CommentEditForm{CommentText: "comment text here"},
		}
		tree := []form.QuestionSubmissionForm{question("q1", entry)}

		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-1", RecipientIdentifier: "bebopie"}}, nil)
		comments.On("CreateComment", mock.Anything, mock.Anything, "response-id-1", mock.Anything, mock.Anything).
			Return(api.FeedbackResponseComment{}, errors.New("comment service down"))

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		require.Contains(t, report.Answers, "q1")
		assert.Empty(t, report.FailToSaveQuestions)
	})

	t.Run("omits a question whose submission persisted no responses", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		tree := []form.QuestionSubmissionForm{question("q3", answeredEntry("bebopie", ""))}
		responses.On("SubmitFeedbackResponses", mock.Anything, "q3", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{}, nil)

		report, err := o.Save(context.Background(), testSaveContext, tree)

		require.NoError(t, err)
		assert.NotContains(t, report.Answers, "q3")
		assert.Empty(t, report.FailToSaveQuestions)
		assert.Empty(t, report.NotYetAnsweredQuestions)
		assert.Equal(t, map[string]string{"q3": ""}, report.RequestIDs)
	})

	t.Run("rejects a reentrant save while one is pending", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		release := make(chan struct{})
		started := make(chan struct{})
		var once sync.Once
		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				once.Do(func() { close(started) })
				<-release
			}).
			Return([]api.FeedbackResponse{}, nil)

		tree := []form.QuestionSubmissionForm{question("q1", answeredEntry("bebopie", ""))}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := o.Save(context.Background(), testSaveContext, tree)
			assert.NoError(t, err)
		}()

		<-started
		_, err := o.Save(context.Background(), testSaveContext, tree)
		require.ErrorIs(t, err, submit.ErrSaveInFlight)

		close(release)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("first save did not settle")
		}

		// once idle again, a fresh save goes through
		_, err = o.Save(context.Background(), testSaveContext, tree)
		require.NoError(t, err)
	})

	t.Run("saves for distinct page sessions are not serialized", func(t *testing.T) {
		responses := &testutils.MockResponseClient{}
		comments := &testutils.MockCommentClient{}
		o := newOrchestrator(responses, comments)

		release := make(chan struct{})
		started := make(chan struct{})
		var once sync.Once
		responses.On("SubmitFeedbackResponses", mock.Anything, "q1", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				once.Do(func() { close(started) })
				<-release
			}).
			Return([]api.FeedbackResponse{}, nil)
		responses.On("SubmitFeedbackResponses", mock.Anything, "q2", mock.Anything, mock.Anything, mock.Anything).
			Return([]api.FeedbackResponse{{FeedbackResponseID: "response-id-2", RecipientIdentifier: "bluesie"}}, nil)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := o.Save(context.Background(), testSaveContext,
				[]form.QuestionSubmissionForm{question("q1", answeredEntry("bebopie", ""))})
			assert.NoError(t, err)
		}()

		<-started
		other := testSaveContext
		other.FeedbackSessionName = "Second Session"
		report, err := o.Save(context.Background(), other,
			[]form.QuestionSubmissionForm{question("q2", answeredEntry("bluesie", ""))})
		require.NoError(t, err)
		require.Contains(t, report.Answers, "q2")

		close(release)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("first save did not settle")
		}
	})
}
