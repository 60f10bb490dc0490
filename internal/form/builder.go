package form

import (
	"encoding/json"
	"fmt"

	"submission_service/internal/api"
)

// Build transforms raw question, recipient and existing-response data into
// the editable submission form tree. Recipients and responses are keyed by
// question id. Building twice from identical inputs yields structurally
// equal trees.
func Build(
	questions []api.FeedbackQuestion,
	recipientsByQuestion map[string][]api.FeedbackQuestionRecipient,
	responsesByQuestion map[string][]api.FeedbackResponse,
) []QuestionSubmissionForm {
	tree := make([]QuestionSubmissionForm, 0, len(questions))
	for _, q := range questions {
		tree = append(tree, buildQuestion(q, recipientsByQuestion[q.FeedbackQuestionID], responsesByQuestion[q.FeedbackQuestionID]))
	}
	return tree
}

func buildQuestion(q api.FeedbackQuestion, recipients []api.FeedbackQuestionRecipient, responses []api.FeedbackResponse) QuestionSubmissionForm {
	model := QuestionSubmissionForm{
		FeedbackQuestionID:                      q.FeedbackQuestionID,
		QuestionNumber:                          q.QuestionNumber,
		QuestionBrief:                           q.QuestionBrief,
		QuestionDescription:                     q.QuestionDescription,
		QuestionType:                            q.QuestionType,
		QuestionDetails:                         q.QuestionDetails,
		GiverType:                               q.GiverType,
		RecipientType:                           q.RecipientType,
		RecipientList:                           recipients,
		RecipientSubmissionForms:                []RecipientSubmissionForm{},
		NumberOfEntitiesToGiveFeedbackToSetting: q.NumberOfEntitiesToGiveFeedbackToSetting,
		CustomNumberOfEntitiesToGiveFeedbackTo:  q.CustomNumberOfEntitiesToGiveFeedbackTo,
		ShowResponsesTo:                         q.ShowResponsesTo,
		ShowGiverNameTo:                         q.ShowGiverNameTo,
		ShowRecipientNameTo:                     q.ShowRecipientNameTo,
	}
	if model.RecipientList == nil {
		model.RecipientList = []api.FeedbackQuestionRecipient{}
	}

	fixed := requiresEntryPerRecipient(q.GiverType, q.RecipientType)
	for _, recipient := range model.RecipientList {
		existing := findResponseForRecipient(responses, recipient.Identifier)
		switch {
		case existing != nil:
			entry := RecipientSubmissionForm{
				RecipientIdentifier: recipient.Identifier,
				ResponseID:          existing.FeedbackResponseID,
				ResponseDetails:     existing.ResponseDetails,
				IsValid:             true,
			}
			if existing.GiverComment != nil {
				entry.CommentByGiver = BuildCommentRow(*existing.GiverComment)
			}
			model.RecipientSubmissionForms = append(model.RecipientSubmissionForms, entry)
		case fixed:
			model.RecipientSubmissionForms = append(model.RecipientSubmissionForms, RecipientSubmissionForm{
				RecipientIdentifier: recipient.Identifier,
				ResponseID:          "",
				ResponseDetails:     DefaultDetails(q.QuestionType),
				IsValid:             true,
			})
		}
	}
	return model
}

// requiresEntryPerRecipient reports whether every declared recipient must
// appear in the form even without an existing response: the recipient set is
// fixed by the participant-type pair rather than chosen by the giver.
func requiresEntryPerRecipient(giver, recipient api.ParticipantType) bool {
	switch recipient {
	case api.ParticipantSelf, api.ParticipantGiver, api.ParticipantOwnTeam,
		api.ParticipantOwnTeamMembers, api.ParticipantOwnTeamMembersIncludingSelf:
		return true
	}
	return giver == api.ParticipantOwnTeamMembers || giver == api.ParticipantOwnTeamMembersIncludingSelf
}

func findResponseForRecipient(responses []api.FeedbackResponse, recipientIdentifier string) *api.FeedbackResponse {
	for i := range responses {
		if responses[i].RecipientIdentifier == recipientIdentifier {
			return &responses[i]
		}
	}
	return nil
}

// BuildCommentRow builds the edit overlay for a persisted comment. The edit
// form starts from the original text and follows the question-level
// visibility, so the custom sets start empty.
func BuildCommentRow(comment api.FeedbackResponseComment) *CommentRow {
	original := comment
	return &CommentRow{
		OriginalComment: &original,
		EditForm: CommentEditForm{
			CommentText:               comment.CommentText,
			IsUsingCustomVisibilities: false,
			ShowCommentTo:             []api.CommentVisibilityType{},
			ShowGiverNameTo:           []api.CommentVisibilityType{},
		},
	}
}

// DefaultDetails is the default-for-type response payload used to seed an
// entry with no existing response.
func DefaultDetails(questionType string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"questionType":%q}`, questionType))
}
