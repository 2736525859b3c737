package domain

import (
	"time"

	"github.com/google/uuid"
)

// FetchStatus is the per-request pipeline state.
type FetchStatus string

const (
	StatusUnresolved FetchStatus = "unresolved"
	StatusResolving  FetchStatus = "resolving"
	StatusResolved   FetchStatus = "resolved"
	StatusAcquiring  FetchStatus = "acquiring"
	StatusAcquired   FetchStatus = "acquired"
	StatusDelivered  FetchStatus = "delivered"
	StatusRejected   FetchStatus = "rejected"
	StatusFailed     FetchStatus = "failed"
	StatusCleaned    FetchStatus = "cleaned"
)

// validTransitions encodes the request state machine. The three
// post-acquired outcomes all converge to cleaned; cleaned is terminal.
var validTransitions = map[FetchStatus][]FetchStatus{
	StatusUnresolved: {StatusResolving},
	StatusResolving:  {StatusResolved, StatusFailed},
	StatusResolved:   {StatusAcquiring},
	StatusAcquiring:  {StatusAcquired, StatusFailed},
	StatusAcquired:   {StatusDelivered, StatusRejected, StatusFailed},
	StatusDelivered:  {StatusCleaned},
	StatusRejected:   {StatusCleaned},
	StatusFailed:     {StatusCleaned},
	StatusCleaned:    {},
}

// CanTransition reports whether moving from one status to another is a
// legal state-machine step.
func CanTransition(from, to FetchStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransmissionMode is how a delivery collaborator should transmit an
// acquired file, selected purely from byte-size bands.
type TransmissionMode string

const (
	TransmitStreamed   TransmissionMode = "streamed"
	TransmitAttachment TransmissionMode = "attachment"
	TransmitRejected   TransmissionMode = "rejected"
)

// FetchRequest is one inbound URL moving through the pipeline. Persisted
// so history and statistics survive restarts; descriptors themselves are
// never cached or reused across requests.
type FetchRequest struct {
	ID           string           `json:"id" gorm:"primaryKey"`
	URL          string           `json:"url" gorm:"not null"`
	Platform     Platform         `json:"platform" gorm:"index"`
	Kind         ContentKind      `json:"kind"`
	Status       FetchStatus      `json:"status" gorm:"not null;index"`
	ContentID    string           `json:"content_id"`
	Title        string           `json:"title"`
	Author       string           `json:"author"`
	Duration     int              `json:"duration_seconds"`
	LikeCount    int64            `json:"like_count"`
	CommentCount int64            `json:"comment_count"`
	ViewCount    int64            `json:"view_count"`
	FilePath     string           `json:"file_path,omitempty"`
	ByteSize     int64            `json:"byte_size"`
	Mode         TransmissionMode `json:"transmission_mode,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty"`
}

// NewFetchRequest creates a request in the unresolved state.
func NewFetchRequest(url string) *FetchRequest {
	now := time.Now()
	return &FetchRequest{
		ID:        uuid.New().String(),
		URL:       url,
		Status:    StatusUnresolved,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// transition applies a status change only when the state machine allows
// it, so the mutators can never drift from the transition table. An
// illegal move leaves the request untouched.
func (r *FetchRequest) transition(to FetchStatus) bool {
	if !CanTransition(r.Status, to) {
		return false
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return true
}

// MarkResolving records the start of strategy-chain execution.
func (r *FetchRequest) MarkResolving() {
	if !r.transition(StatusResolving) {
		return
	}
	now := time.Now()
	r.StartedAt = &now
}

// MarkResolved copies the descriptor summary onto the request.
func (r *FetchRequest) MarkResolved(desc *ContentDescriptor) {
	if !r.transition(StatusResolved) {
		return
	}
	r.Platform = desc.Platform
	r.Kind = desc.Kind
	r.ContentID = desc.ID
	r.Title = desc.Title
	r.Author = desc.Author
	r.Duration = desc.Duration
	r.LikeCount = desc.LikeCount
	r.CommentCount = desc.CommentCount
	r.ViewCount = desc.ViewCount
}

// MarkAcquiring records the start of candidate/method iteration.
func (r *FetchRequest) MarkAcquiring() {
	r.transition(StatusAcquiring)
}

// MarkAcquired records the staged artifact.
func (r *FetchRequest) MarkAcquired(path string, size int64, kind ContentKind) {
	if !r.transition(StatusAcquired) {
		return
	}
	r.FilePath = path
	r.ByteSize = size
	r.Kind = kind
}

// MarkDelivered records the selected transmission mode.
func (r *FetchRequest) MarkDelivered(mode TransmissionMode) {
	if !r.transition(StatusDelivered) {
		return
	}
	now := time.Now()
	r.Mode = mode
	r.FinishedAt = &now
}

// MarkRejected records a size-policy rejection.
func (r *FetchRequest) MarkRejected(message string) {
	if !r.transition(StatusRejected) {
		return
	}
	now := time.Now()
	r.Mode = TransmitRejected
	r.ErrorMessage = message
	r.FinishedAt = &now
}

// MarkFailed records a terminal pipeline failure with its user-facing
// classified message.
func (r *FetchRequest) MarkFailed(err error) {
	if !r.transition(StatusFailed) {
		return
	}
	now := time.Now()
	r.ErrorMessage = UserMessage(err)
	r.FinishedAt = &now
}

// MarkCleaned records that staging artifacts were removed.
func (r *FetchRequest) MarkCleaned() {
	if !r.transition(StatusCleaned) {
		return
	}
	r.FilePath = ""
}

// IsTerminal reports whether the request reached its final state.
func (r *FetchRequest) IsTerminal() bool {
	return r.Status == StatusCleaned
}

// IsPending reports whether the request has not started processing.
func (r *FetchRequest) IsPending() bool {
	return r.Status == StatusUnresolved
}
