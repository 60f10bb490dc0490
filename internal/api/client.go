package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Collaborator interfaces consumed by the submission core. The HTTP client
// below implements all of them against the upstream feedback API.

type AuthClient interface {
	GetAuthUser(ctx context.Context) (AuthInfo, error)
	GetRegkeyValidity(ctx context.Context, courseID, feedbackSessionName, key string, intent Intent) (RegkeyValidity, error)
}

type PersonClient interface {
	GetStudent(ctx context.Context, courseID, key string) (Student, error)
	GetInstructor(ctx context.Context, courseID, key string, intent Intent) (Instructor, error)
}

type SessionClient interface {
	GetFeedbackSession(ctx context.Context, courseID, feedbackSessionName string, intent Intent, params CallParams) (FeedbackSession, error)
}

type QuestionClient interface {
	GetFeedbackQuestions(ctx context.Context, courseID, feedbackSessionName string, intent Intent, params CallParams) ([]FeedbackQuestion, error)
	GetQuestionRecipients(ctx context.Context, questionID string, intent Intent, params CallParams) ([]FeedbackQuestionRecipient, error)
}

type ResponseClient interface {
	GetFeedbackResponses(ctx context.Context, questionID string, intent Intent, params CallParams) ([]FeedbackResponse, error)
	SubmitFeedbackResponses(ctx context.Context, questionID string, req SubmitResponsesRequest, intent Intent, params CallParams) ([]FeedbackResponse, error)
}

type CommentClient interface {
	CreateComment(ctx context.Context, req CommentRequest, responseID string, intent Intent, params CallParams) (FeedbackResponseComment, error)
	UpdateComment(ctx context.Context, req CommentRequest, commentID int64, intent Intent, params CallParams) (FeedbackResponseComment, error)
	DeleteComment(ctx context.Context, commentID int64, intent Intent, params CallParams) error
}

// Client is the HTTP implementation of every collaborator interface.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetAuthUser(ctx context.Context) (AuthInfo, error) {
	var out AuthInfo
	err := c.do(ctx, http.MethodGet, "/auth/user", nil, nil, &out)
	return out, err
}

func (c *Client) GetRegkeyValidity(ctx context.Context, courseID, feedbackSessionName, key string, intent Intent) (RegkeyValidity, error) {
	q := url.Values{}
	q.Set("courseid", courseID)
	q.Set("fsname", feedbackSessionName)
	q.Set("key", key)
	q.Set("intent", string(intent))
	var out RegkeyValidity
	err := c.do(ctx, http.MethodGet, "/auth/regkey", q, nil, &out)
	return out, err
}

func (c *Client) GetStudent(ctx context.Context, courseID, key string) (Student, error) {
	q := url.Values{}
	q.Set("courseid", courseID)
	if key != "" {
		q.Set("key", key)
	}
	var out Student
	err := c.do(ctx, http.MethodGet, "/student", q, nil, &out)
	return out, err
}

func (c *Client) GetInstructor(ctx context.Context, courseID, key string, intent Intent) (Instructor, error) {
	q := url.Values{}
	q.Set("courseid", courseID)
	if key != "" {
		q.Set("key", key)
	}
	q.Set("intent", string(intent))
	var out Instructor
	err := c.do(ctx, http.MethodGet, "/instructor", q, nil, &out)
	return out, err
}

func (c *Client) GetFeedbackSession(ctx context.Context, courseID, feedbackSessionName string, intent Intent, params CallParams) (FeedbackSession, error) {
	q := sessionQuery(courseID, feedbackSessionName, intent, params)
	q.Set("previewas", params.PreviewAs)
	var out FeedbackSession
	err := c.do(ctx, http.MethodGet, "/session", q, nil, &out)
	return out, err
}

func (c *Client) GetFeedbackQuestions(ctx context.Context, courseID, feedbackSessionName string, intent Intent, params CallParams) ([]FeedbackQuestion, error) {
	q := sessionQuery(courseID, feedbackSessionName, intent, params)
	q.Set("previewas", params.PreviewAs)
	var out struct {
		Questions []FeedbackQuestion `json:"questions"`
	}
	err := c.do(ctx, http.MethodGet, "/questions", q, nil, &out)
	return out.Questions, err
}

func (c *Client) GetQuestionRecipients(ctx context.Context, questionID string, intent Intent, params CallParams) ([]FeedbackQuestionRecipient, error) {
	q := callQuery(intent, params)
	var out struct {
		Recipients []FeedbackQuestionRecipient `json:"recipients"`
	}
	err := c.do(ctx, http.MethodGet, "/questions/"+url.PathEscape(questionID)+"/recipients", q, nil, &out)
	return out.Recipients, err
}

func (c *Client) GetFeedbackResponses(ctx context.Context, questionID string, intent Intent, params CallParams) ([]FeedbackResponse, error) {
	q := callQuery(intent, params)
	q.Set("questionid", questionID)
	var out struct {
		Responses []FeedbackResponse `json:"responses"`
	}
	err := c.do(ctx, http.MethodGet, "/responses", q, nil, &out)
	return out.Responses, err
}

func (c *Client) SubmitFeedbackResponses(ctx context.Context, questionID string, req SubmitResponsesRequest, intent Intent, params CallParams) ([]FeedbackResponse, error) {
	q := callQuery(intent, params)
	q.Set("questionid", questionID)
	var out struct {
		Responses []FeedbackResponse `json:"responses"`
	}
	err := c.do(ctx, http.MethodPut, "/responses", q, req, &out)
	return out.Responses, err
}

func (c *Client) CreateComment(ctx context.Context, req CommentRequest, responseID string, intent Intent, params CallParams) (FeedbackResponseComment, error) {
	q := callQuery(intent, params)
	var out FeedbackResponseComment
	err := c.do(ctx, http.MethodPost, "/responses/"+url.PathEscape(responseID)+"/comments", q, req, &out)
	return out, err
}

func (c *Client) UpdateComment(ctx context.Context, req CommentRequest, commentID int64, intent Intent, params CallParams) (FeedbackResponseComment, error) {
	q := callQuery(intent, params)
	var out FeedbackResponseComment
	err := c.do(ctx, http.MethodPut, "/comments/"+strconv.FormatInt(commentID, 10), q, req, &out)
	return out, err
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64, intent Intent, params CallParams) error {
	q := callQuery(intent, params)
	return c.do(ctx, http.MethodDelete, "/comments/"+strconv.FormatInt(commentID, 10), q, nil, nil)
}

func sessionQuery(courseID, feedbackSessionName string, intent Intent, params CallParams) url.Values {
	q := callQuery(intent, params)
	q.Set("courseid", courseID)
	q.Set("fsname", feedbackSessionName)
	return q
}

func callQuery(intent Intent, params CallParams) url.Values {
	q := url.Values{}
	q.Set("intent", string(intent))
	q.Set("key", params.Key)
	q.Set("moderatedperson", params.ModeratedPerson)
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: extractMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func extractMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
