package notifications

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
)

type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusSending JobStatus = "SENDING"
	JobStatusSent    JobStatus = "SENT"
	JobStatusFailed  JobStatus = "FAILED"
)

// ConfirmationJob is one pending confirmation email, as carried on the queue
type ConfirmationJob struct {
	ID         uuid.UUID         `json:"id"`
	Submission models.Submission `json:"submission"`
	Event      events.Event      `json:"event"`

	Status     JobStatus  `json:"status"`
	RetryCount int        `json:"retry_count"`
	LastError  *string    `json:"last_error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

// NewConfirmationJob creates a queued job
func NewConfirmationJob(sub models.Submission, ev events.Event) *ConfirmationJob {
	return &ConfirmationJob{
		ID:         uuid.New(),
		Submission: sub,
		Event:      ev,
		Status:     JobStatusQueued,
		CreatedAt:  time.Now().UTC(),
	}
}

// ToJSON serializes the job for the queue
func (j *ConfirmationJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// PartitionKey keeps all mail for one guest on one partition
func (j *ConfirmationJob) PartitionKey() string {
	return strings.ToLower(j.Submission.Email)
}

func (j *ConfirmationJob) MarkSent() {
	now := time.Now().UTC()
	j.Status = JobStatusSent
	j.SentAt = &now
	j.LastError = nil
}

func (j *ConfirmationJob) MarkFailed(err error) {
	msg := err.Error()
	j.Status = JobStatusFailed
	j.LastError = &msg
}
