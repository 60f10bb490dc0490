// Package form holds the editable submission form tree: the in-memory model
// built from server-loaded questions, recipients, responses and comments,
// plus the diff and validation rules applied to it at save time.
package form

import (
	"encoding/json"

	"submission_service/internal/api"
)

// CommentEditForm is the transient edit overlay over a persisted comment.
// Until saved it is distinct from the original.
type CommentEditForm struct {
	CommentText               string                      `json:"commentText"`
	IsUsingCustomVisibilities bool                        `json:"isUsingCustomVisibilities"`
	ShowCommentTo             []api.CommentVisibilityType `json:"showCommentTo"`
	ShowGiverNameTo           []api.CommentVisibilityType `json:"showGiverNameTo"`
}

// CommentRow pairs an optional persisted comment with its edit overlay.
type CommentRow struct {
	OriginalComment *api.FeedbackResponseComment `json:"originalComment,omitempty"`
	EditForm        CommentEditForm              `json:"commentEditFormModel"`
}

// RecipientSubmissionForm is one recipient's editable entry under a question.
// An empty ResponseID means the response is not yet persisted.
type RecipientSubmissionForm struct {
	RecipientIdentifier string          `json:"recipientIdentifier"`
	ResponseID          string          `json:"responseId"`
	ResponseDetails     json.RawMessage `json:"responseDetails"`
	IsValid             bool            `json:"isValid"`
	CommentByGiver      *CommentRow     `json:"commentByGiver,omitempty"`
}

type QuestionSubmissionForm struct {
	FeedbackQuestionID                      string                          `json:"feedbackQuestionId"`
	QuestionNumber                          int                             `json:"questionNumber"`
	QuestionBrief                           string                          `json:"questionBrief"`
	QuestionDescription                     string                          `json:"questionDescription"`
	QuestionType                            string                          `json:"questionType"`
	QuestionDetails                         json.RawMessage                 `json:"questionDetails"`
	GiverType                               api.ParticipantType             `json:"giverType"`
	RecipientType                           api.ParticipantType             `json:"recipientType"`
	RecipientList                           []api.FeedbackQuestionRecipient `json:"recipientList"`
	RecipientSubmissionForms                []RecipientSubmissionForm       `json:"recipientSubmissionForms"`
	NumberOfEntitiesToGiveFeedbackToSetting api.NumberOfEntitiesSetting     `json:"numberOfEntitiesToGiveFeedbackToSetting"`
	CustomNumberOfEntitiesToGiveFeedbackTo  int                             `json:"customNumberOfEntitiesToGiveFeedbackTo"`
	ShowResponsesTo                         []api.VisibilityType            `json:"showResponsesTo"`
	ShowGiverNameTo                         []api.VisibilityType            `json:"showGiverNameTo"`
	ShowRecipientNameTo                     []api.VisibilityType            `json:"showRecipientNameTo"`
}

// HasExistingAnswer reports whether any entry of the question is already
// persisted on the server.
func (q *QuestionSubmissionForm) HasExistingAnswer() bool {
	for i := range q.RecipientSubmissionForms {
		if q.RecipientSubmissionForms[i].ResponseID != "" {
			return true
		}
	}
	return false
}
