package form

import "encoding/json"

// EmptinessChecker is the question-type-specific emptiness predicate for
// response detail payloads, supplied per question type.
type EmptinessChecker interface {
	IsResponseDetailsEmpty(questionType string, details json.RawMessage) bool
}

// HasAnyResponseToSubmit reports whether at least one entry across the tree
// carries non-empty response details. A question with zero entries
// contributes nothing.
func HasAnyResponseToSubmit(tree []QuestionSubmissionForm, checker EmptinessChecker) bool {
	for i := range tree {
		q := &tree[i]
		for j := range q.RecipientSubmissionForms {
			if !checker.IsResponseDetailsEmpty(q.QuestionType, q.RecipientSubmissionForms[j].ResponseDetails) {
				return true
			}
		}
	}
	return false
}

// IsEligibleToSubmit reports whether one recipient entry should be included
// in a submission request: non-empty details and structurally valid.
func IsEligibleToSubmit(questionType string, entry *RecipientSubmissionForm, checker EmptinessChecker) bool {
	if checker.IsResponseDetailsEmpty(questionType, entry.ResponseDetails) {
		return false
	}
	return entry.IsValid
}
