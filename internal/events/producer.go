// Package events publishes submission confirmation messages for the
// notification tier to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
	Topic   string
}

// SubmissionConfirmation is emitted once per settled save.
type SubmissionConfirmation struct {
	EventID              string   `json:"event_id"`
	CourseID             string   `json:"course_id"`
	FeedbackSessionName  string   `json:"feedback_session_name"`
	PersonEmail          string   `json:"person_email"`
	PersonName           string   `json:"person_name"`
	SubmittedQuestionIDs []string `json:"submitted_question_ids"`
	FailedQuestionIDs    []string `json:"failed_question_ids"`
	SubmittedAt          int64    `json:"submitted_at"`
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(cfg Config) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topic: cfg.Topic}, nil
}

func (p *Producer) SendConfirmation(ctx context.Context, confirmation SubmissionConfirmation) error {
	if confirmation.EventID == "" {
		confirmation.EventID = uuid.NewString()
	}
	if confirmation.SubmittedAt == 0 {
		confirmation.SubmittedAt = time.Now().Unix()
	}

	msgBytes, err := json.Marshal(confirmation)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(confirmation.CourseID + "/" + confirmation.FeedbackSessionName),
		Value: msgBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
