package submit

import (
	"submission_service/internal/api"
	"submission_service/internal/form"
)

// SaveContext carries the identifiers threaded through a save unchanged from
// page load.
type SaveContext struct {
	CourseID                string
	FeedbackSessionName     string
	FeedbackSessionTimezone string
	PersonEmail             string
	PersonName              string
	Intent                  api.Intent
	Params                  api.CallParams
}

// Report is the aggregated outcome of one save: one entry per question,
// success and failure recorded independently.
type Report struct {
	RequestIDs              map[string]string                 `json:"requestIds"`
	CourseID                string                            `json:"courseId"`
	FeedbackSessionName     string                            `json:"feedbackSessionName"`
	FeedbackSessionTimezone string                            `json:"feedbackSessionTimezone"`
	PersonEmail             string                            `json:"personEmail"`
	PersonName              string                            `json:"personName"`
	Questions               []form.QuestionSubmissionForm     `json:"questions"`
	Answers                 map[string][]api.FeedbackResponse `json:"answers"`
	NotYetAnsweredQuestions []string                          `json:"notYetAnsweredQuestions"`
	FailToSaveQuestions     map[string]string                 `json:"failToSaveQuestions"`
}
