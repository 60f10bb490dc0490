package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"submission_service/internal/api"
	"submission_service/internal/ctxdata"
	"submission_service/internal/form"
	"submission_service/internal/gate"
	"submission_service/internal/logging"
	"submission_service/internal/service"
	"submission_service/internal/submit"
)

const (
	frontPagePath      = "/web/front"
	submissionPagePath = "/web/sessions/submission"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/page", h.GetPage)
	r.Post("/save", h.SaveResponses)
	r.Delete("/comments/{commentId}", h.DeleteComment)
}

// httpNavigator is the redirect collaborator for gate denials: one 302 per
// deny decision.
type httpNavigator struct {
	w   http.ResponseWriter
	r   *http.Request
	req service.PageRequest
}

func (n *httpNavigator) ToSessionSubmission() {
	q := url.Values{}
	q.Set("courseid", n.req.CourseID)
	q.Set("fsname", n.req.FeedbackSessionName)
	http.Redirect(n.w, n.r, submissionPagePath+"?"+q.Encode(), http.StatusFound)
}

func (n *httpNavigator) ToFrontWithError(message string) {
	q := url.Values{}
	q.Set("error", message)
	http.Redirect(n.w, n.r, frontPagePath+"?"+q.Encode(), http.StatusFound)
}

func (h *SubmissionHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	req := parsePageRequest(r)
	ctx := contextWithPerson(r.Context(), req)
	if req.CourseID == "" || req.FeedbackSessionName == "" {
		writeErrorJSON(w, http.StatusBadRequest, "courseid and fsname are required")
		return
	}

	nav := &httpNavigator{w: w, r: r, req: req}
	decision, err := h.svc.CheckAccess(ctx, req, nav)
	if err != nil {
		logError(ctx, "access check failed", err)
		writeErrorJSON(w, mapErr(err), "failed to verify access")
		return
	}
	if decision != gate.Allow {
		// redirect already written by the navigator
		return
	}

	state, err := h.svc.LoadPage(ctx, req)
	if err != nil {
		logError(ctx, "failed to load submission page", err)
		if errors.Is(err, service.ErrSessionNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "Feedback Session Does Not Exist!")
			return
		}
		writeErrorJSON(w, mapErr(err), "failed to load submission page")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

type saveRequest struct {
	FeedbackSessionTimezone string                        `json:"feedbackSessionTimezone"`
	Questions               []form.QuestionSubmissionForm `json:"questions"`
}

func (h *SubmissionHandler) SaveResponses(w http.ResponseWriter, r *http.Request) {
	req := parsePageRequest(r)
	ctx := contextWithPerson(r.Context(), req)
	if req.CourseID == "" || req.FeedbackSessionName == "" {
		writeErrorJSON(w, http.StatusBadRequest, "courseid and fsname are required")
		return
	}

	var body saveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.svc.SaveResponses(ctx, req, body.FeedbackSessionTimezone, body.Questions)
	if err != nil {
		logError(ctx, "failed to save responses", err)
		writeErrorJSON(w, mapErr(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *SubmissionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	req := parsePageRequest(r)
	ctx := contextWithPerson(r.Context(), req)

	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.svc.DeleteParticipantComment(ctx, commentID, req.Intent, req.Params); err != nil {
		logError(ctx, "failed to delete comment", err)
		writeErrorJSON(w, mapErr(err), "failed to delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func logError(ctx context.Context, msg string, err error) {
	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Error(ctx, msg, zap.Error(err))
	}
}

// contextWithPerson tags the request context with the acting person for log
// attribution: the moderated person when an instructor moderates, or the
// previewed identity.
func contextWithPerson(ctx context.Context, req service.PageRequest) context.Context {
	switch {
	case req.Params.ModeratedPerson != "":
		return ctxdata.WithPerson(ctx, req.Params.ModeratedPerson)
	case req.Params.PreviewAs != "":
		return ctxdata.WithPerson(ctx, req.Params.PreviewAs)
	default:
		return ctx
	}
}

func parsePageRequest(r *http.Request) service.PageRequest {
	q := r.URL.Query()
	intent := api.Intent(q.Get("intent"))
	if intent == "" {
		intent = api.IntentStudentSubmission
	}
	return service.PageRequest{
		CourseID:            q.Get("courseid"),
		FeedbackSessionName: q.Get("fsname"),
		Intent:              intent,
		Params: api.CallParams{
			Key:             q.Get("key"),
			ModeratedPerson: q.Get("moderatedperson"),
			PreviewAs:       q.Get("previewas"),
		},
	}
}

func mapErr(err error) int {
	if errors.Is(err, submit.ErrSaveInFlight) {
		return http.StatusConflict
	}
	if errors.Is(err, api.ErrNotFound) || errors.Is(err, service.ErrSessionNotFound) {
		return http.StatusNotFound
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
			return apiErr.StatusCode
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	data, _ := json.Marshal(payload)
	w.Write(data)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp, _ := json.Marshal(map[string]string{"error": message})
	w.Write(resp)
}
