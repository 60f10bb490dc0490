package submit

import (
	"context"
	"strings"

	"submission_service/internal/api"
	"submission_service/internal/form"
)

// ReconcileComment decides create, update, delete or no-op for one comment
// edit overlay and mutates the entry in place on success:
//
//	no original, text filled  -> create, overlay rebuilt from the result
//	original, text filled     -> update by the original's id, overlay rebuilt
//	original, text empty      -> delete by the original's id, overlay cleared
//	no original, text empty   -> nothing to do
func (o *Orchestrator) ReconcileComment(ctx context.Context, intent api.Intent, params api.CallParams, entry *form.RecipientSubmissionForm) error {
	row := entry.CommentByGiver
	if row == nil {
		return nil
	}

	text := strings.TrimSpace(row.EditForm.CommentText)
	switch {
	case row.OriginalComment == nil && text != "":
		created, err := o.comments.CreateComment(ctx, commentPayload(row), entry.ResponseID, intent, params)
		if err != nil {
			return err
		}
		entry.CommentByGiver = form.BuildCommentRow(created)
	case row.OriginalComment != nil && text != "":
		updated, err := o.comments.UpdateComment(ctx, commentPayload(row), row.OriginalComment.FeedbackResponseCommentID, intent, params)
		if err != nil {
			return err
		}
		entry.CommentByGiver = form.BuildCommentRow(updated)
	case row.OriginalComment != nil:
		if err := o.comments.DeleteComment(ctx, row.OriginalComment.FeedbackResponseCommentID, intent, params); err != nil {
			return err
		}
		entry.CommentByGiver = nil
	}
	return nil
}

// commentPayload sends the custom visibility sets only when the overlay has
// opted out of the question-level default.
func commentPayload(row *form.CommentRow) api.CommentRequest {
	req := api.CommentRequest{
		CommentText:     row.EditForm.CommentText,
		ShowCommentTo:   []api.CommentVisibilityType{},
		ShowGiverNameTo: []api.CommentVisibilityType{},
	}
	if row.EditForm.IsUsingCustomVisibilities {
		req.ShowCommentTo = row.EditForm.ShowCommentTo
		req.ShowGiverNameTo = row.EditForm.ShowGiverNameTo
	}
	return req
}
