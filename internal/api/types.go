package api

import "encoding/json"

// Intent distinguishes which participant role is performing a request.
type Intent string

const (
	IntentStudentSubmission    Intent = "STUDENT_SUBMISSION"
	IntentInstructorSubmission Intent = "INSTRUCTOR_SUBMISSION"
)

type SubmissionStatus string

const (
	SubmissionOpen           SubmissionStatus = "OPEN"
	SubmissionClosed         SubmissionStatus = "CLOSED"
	SubmissionVisibleNotOpen SubmissionStatus = "VISIBLE_NOT_OPEN"
	SubmissionNotVisible     SubmissionStatus = "NOT_VISIBLE"
)

type PublishStatus string

const (
	Published    PublishStatus = "PUBLISHED"
	NotPublished PublishStatus = "NOT_PUBLISHED"
)

type ParticipantType string

const (
	ParticipantSelf                        ParticipantType = "SELF"
	ParticipantStudents                    ParticipantType = "STUDENTS"
	ParticipantInstructors                 ParticipantType = "INSTRUCTORS"
	ParticipantTeams                       ParticipantType = "TEAMS"
	ParticipantOwnTeam                     ParticipantType = "OWN_TEAM"
	ParticipantOwnTeamMembers              ParticipantType = "OWN_TEAM_MEMBERS"
	ParticipantOwnTeamMembersIncludingSelf ParticipantType = "OWN_TEAM_MEMBERS_INCLUDING_SELF"
	ParticipantGiver                       ParticipantType = "GIVER"
	ParticipantReceiver                    ParticipantType = "RECEIVER"
)

type NumberOfEntitiesSetting string

const (
	NumberOfEntitiesUnlimited NumberOfEntitiesSetting = "UNLIMITED"
	NumberOfEntitiesCustom    NumberOfEntitiesSetting = "CUSTOM"
)

type VisibilityType string

type CommentVisibilityType string

type FeedbackSession struct {
	CourseID                 string           `json:"courseId"`
	FeedbackSessionName      string           `json:"feedbackSessionName"`
	Instructions             string           `json:"instructions"`
	TimeZone                 string           `json:"timeZone"`
	SubmissionStartTimestamp int64            `json:"submissionStartTimestamp"`
	SubmissionEndTimestamp   int64            `json:"submissionEndTimestamp"`
	GracePeriod              int64            `json:"gracePeriod"`
	SubmissionStatus         SubmissionStatus `json:"submissionStatus"`
	PublishStatus            PublishStatus    `json:"publishStatus"`
}

type FeedbackQuestion struct {
	FeedbackQuestionID                      string                  `json:"feedbackQuestionId"`
	QuestionNumber                          int                     `json:"questionNumber"`
	QuestionBrief                           string                  `json:"questionBrief"`
	QuestionDescription                     string                  `json:"questionDescription"`
	QuestionType                            string                  `json:"questionType"`
	QuestionDetails                         json.RawMessage         `json:"questionDetails"`
	GiverType                               ParticipantType         `json:"giverType"`
	RecipientType                           ParticipantType         `json:"recipientType"`
	NumberOfEntitiesToGiveFeedbackToSetting NumberOfEntitiesSetting `json:"numberOfEntitiesToGiveFeedbackToSetting"`
	CustomNumberOfEntitiesToGiveFeedbackTo  int                     `json:"customNumberOfEntitiesToGiveFeedbackTo"`
	ShowResponsesTo                         []VisibilityType        `json:"showResponsesTo"`
	ShowGiverNameTo                         []VisibilityType        `json:"showGiverNameTo"`
	ShowRecipientNameTo                     []VisibilityType        `json:"showRecipientNameTo"`
}

type FeedbackQuestionRecipient struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

type FeedbackResponse struct {
	FeedbackResponseID  string                   `json:"feedbackResponseId"`
	GiverIdentifier     string                   `json:"giverIdentifier"`
	RecipientIdentifier string                   `json:"recipientIdentifier"`
	ResponseDetails     json.RawMessage          `json:"responseDetails"`
	GiverComment        *FeedbackResponseComment `json:"giverComment,omitempty"`
}

type FeedbackResponseComment struct {
	FeedbackResponseCommentID             int64                   `json:"feedbackResponseCommentId"`
	CommentGiver                          string                  `json:"commentGiver"`
	LastEditorEmail                       string                  `json:"lastEditorEmail"`
	CommentText                           string                  `json:"commentText"`
	CreatedAt                             int64                   `json:"createdAt"`
	LastEditedAt                          int64                   `json:"lastEditedAt"`
	IsVisibilityFollowingFeedbackQuestion bool                    `json:"isVisibilityFollowingFeedbackQuestion"`
	ShowCommentTo                         []CommentVisibilityType `json:"showCommentTo"`
	ShowGiverNameTo                       []CommentVisibilityType `json:"showGiverNameTo"`
}

type AuthUser struct {
	ID           string `json:"id"`
	IsAdmin      bool   `json:"isAdmin"`
	IsInstructor bool   `json:"isInstructor"`
	IsStudent    bool   `json:"isStudent"`
}

type AuthInfo struct {
	Masquerade bool      `json:"masquerade"`
	User       *AuthUser `json:"user,omitempty"`
}

type RegkeyValidity struct {
	IsAllowedAccess bool `json:"isAllowedAccess"`
	IsUsed          bool `json:"isUsed"`
	IsValid         bool `json:"isValid"`
}

type Student struct {
	CourseID    string `json:"courseId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	TeamName    string `json:"teamName"`
	SectionName string `json:"sectionName"`
}

type Instructor struct {
	CourseID string `json:"courseId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// ResponseSubmitItem is one recipient's payload inside a per-question
// submission request.
type ResponseSubmitItem struct {
	Recipient       string          `json:"recipient"`
	ResponseDetails json.RawMessage `json:"responseDetails"`
}

type SubmitResponsesRequest struct {
	Responses []ResponseSubmitItem `json:"responses"`
}

type CommentRequest struct {
	CommentText     string                  `json:"commentText"`
	ShowCommentTo   []CommentVisibilityType `json:"showCommentTo"`
	ShowGiverNameTo []CommentVisibilityType `json:"showGiverNameTo"`
}

// CallParams is the context bag threaded through unchanged from page load.
type CallParams struct {
	Key             string
	ModeratedPerson string
	PreviewAs       string
}
