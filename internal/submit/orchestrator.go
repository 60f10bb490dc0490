// Package submit executes the save operation: a fan-out of independent
// per-question submission requests and per-response comment upserts, joined
// into a single aggregated report.
package submit

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"submission_service/internal/api"
	"submission_service/internal/cache"
	"submission_service/internal/form"
	"submission_service/internal/logging"
)

var (
	// ErrSaveInFlight rejects a reentrant save; two saves must never
	// interleave against the same form tree. Saves for distinct page
	// sessions proceed independently.
	ErrSaveInFlight = errors.New("a save is already in progress")
)

type Orchestrator struct {
	responses api.ResponseClient
	comments  api.CommentClient
	checker   form.EmptinessChecker
	logger    *logging.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(
	responses api.ResponseClient,
	comments api.CommentClient,
	checker form.EmptinessChecker,
	logger *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		responses: responses,
		comments:  comments,
		checker:   checker,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// questionOutcome is one goroutine's result slot. Each goroutine writes only
// its own slice index, so the fan-out needs no locking; the report maps are
// folded together after the join.
type questionOutcome struct {
	answers        []api.FeedbackResponse
	failMessage    string
	failed         bool
	notYetAnswered bool
}

// Save partitions the tree into eligible and skipped entries, submits one
// request per question with eligible entries, reconciles comment overlays
// after each question settles, and aggregates everything into one report.
// The report is produced only after every launched operation has settled;
// a failure of one question never blocks the others. Save never retries.
func (o *Orchestrator) Save(ctx context.Context, sc SaveContext, tree []form.QuestionSubmissionForm) (*Report, error) {
	key := cache.PageKey(sc.CourseID, sc.FeedbackSessionName, sc.Intent, sc.Params)
	o.mu.Lock()
	if _, busy := o.inFlight[key]; busy {
		o.mu.Unlock()
		return nil, ErrSaveInFlight
	}
	o.inFlight[key] = struct{}{}
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.inFlight, key)
		o.mu.Unlock()
	}()

	outcomes := make([]questionOutcome, len(tree))

	var wg sync.WaitGroup
	for i := range tree {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.saveQuestion(ctx, sc, &tree[i], &outcomes[i])
		}(i)
	}
	wg.Wait()

	report := &Report{
		RequestIDs:              make(map[string]string, len(tree)),
		CourseID:                sc.CourseID,
		FeedbackSessionName:     sc.FeedbackSessionName,
		FeedbackSessionTimezone: sc.FeedbackSessionTimezone,
		PersonEmail:             sc.PersonEmail,
		PersonName:              sc.PersonName,
		Questions:               tree,
		Answers:                 make(map[string][]api.FeedbackResponse),
		NotYetAnsweredQuestions: []string{},
		FailToSaveQuestions:     make(map[string]string),
	}
	for i := range tree {
		questionID := tree[i].FeedbackQuestionID
		report.RequestIDs[questionID] = ""
		outcome := &outcomes[i]
		switch {
		case outcome.failed:
			report.FailToSaveQuestions[questionID] = outcome.failMessage
		case outcome.notYetAnswered:
			report.NotYetAnsweredQuestions = append(report.NotYetAnsweredQuestions, questionID)
		case len(outcome.answers) > 0:
			report.Answers[questionID] = outcome.answers
		}
	}
	return report, nil
}

func (o *Orchestrator) saveQuestion(ctx context.Context, sc SaveContext, q *form.QuestionSubmissionForm, outcome *questionOutcome) {
	payload := api.SubmitResponsesRequest{}
	for i := range q.RecipientSubmissionForms {
		entry := &q.RecipientSubmissionForms[i]
		if form.IsEligibleToSubmit(q.QuestionType, entry, o.checker) {
			payload.Responses = append(payload.Responses, api.ResponseSubmitItem{
				Recipient:       entry.RecipientIdentifier,
				ResponseDetails: entry.ResponseDetails,
			})
		}
	}

	if len(payload.Responses) == 0 {
		if !q.HasExistingAnswer() {
			outcome.notYetAnswered = true
		}
		return
	}

	saved, err := o.responses.SubmitFeedbackResponses(ctx, q.FeedbackQuestionID, payload, sc.Intent, sc.Params)
	if err != nil {
		outcome.failed = true
		outcome.failMessage = api.ErrorMessage(err)
		o.logger.Error(ctx, "failed to submit responses for question",
			zap.String("question_id", q.FeedbackQuestionID),
			zap.Error(err),
		)
	} else {
		outcome.answers = saved
		writeBackResponseIDs(q, saved)
	}

	o.reconcileQuestionComments(ctx, sc, q)
}

// writeBackResponseIDs records the server-assigned response ids on the forms
// so subsequent comment operations have a valid target. An entry with no
// matching persisted response has been removed server-side: its id and any
// comment overlay are cleared.
func writeBackResponseIDs(q *form.QuestionSubmissionForm, saved []api.FeedbackResponse) {
	byRecipient := make(map[string]string, len(saved))
	for _, r := range saved {
		byRecipient[r.RecipientIdentifier] = r.FeedbackResponseID
	}
	for i := range q.RecipientSubmissionForms {
		entry := &q.RecipientSubmissionForms[i]
		entry.ResponseID = byRecipient[entry.RecipientIdentifier]
		if entry.ResponseID == "" {
			entry.CommentByGiver = nil
		}
	}
}

// reconcileQuestionComments runs the comment reconciliation for every entry
// carrying an edit overlay once the question's submission has settled.
// Comment operations run independently; an individual failure is attributed
// and logged but blocks nothing else.
func (o *Orchestrator) reconcileQuestionComments(ctx context.Context, sc SaveContext, q *form.QuestionSubmissionForm) {
	var wg sync.WaitGroup
	for i := range q.RecipientSubmissionForms {
		entry := &q.RecipientSubmissionForms[i]
		if entry.CommentByGiver == nil || entry.ResponseID == "" {
			continue
		}
		wg.Add(1)
		go func(entry *form.RecipientSubmissionForm) {
			defer wg.Done()
			if err := o.ReconcileComment(ctx, sc.Intent, sc.Params, entry); err != nil {
				o.logger.Error(ctx, "failed to save comment",
					zap.String("question_id", q.FeedbackQuestionID),
					zap.String("recipient", entry.RecipientIdentifier),
					zap.Error(err),
				)
			}
		}(entry)
	}
	wg.Wait()
}
