package application

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viralforge/project-tracker/internal/domain"
)

type Config struct {
	TokenTTL             time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	// PublishTimeout bounds how long a write waits on the event publisher after commit.
	PublishTimeout time.Duration
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by both register and login.
type AuthResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresIn int64     `json:"expiresIn"`
}

// Identity is the verified caller attached to a request.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

const dateLayout = "2006-01-02"

// Date is a calendar date carried as "YYYY-MM-DD" on the wire.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: domain.DateOnly(t)}
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", domain.ErrInvalidInput, raw)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: date must be a string", domain.ErrInvalidInput)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Amount is a decimal that serializes as a bare JSON number with two fraction digits.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: invalid decimal amount", domain.ErrInvalidInput)
	}
	return nil
}

// ProjectRequest is the body for create and update. Status is optional on both;
// on update an omitted status keeps the current value.
type ProjectRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Status          *string `json:"status"`
	AvailableBudget *Amount `json:"availableBudget"`
}

type ProjectQuery struct {
	Status       string
	NameContains string
}

type ProjectResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	AvailableBudget *Amount   `json:"availableBudget"`
	OwnerID         uuid.UUID `json:"ownerId"`
	TaskCount       int       `json:"taskCount"`
	DoneTaskCount   int       `json:"doneTaskCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TaskRequest is the body for create and update. A nil PredecessorTaskID
// on update detaches the current predecessor.
type TaskRequest struct {
	Description       string     `json:"description"`
	ProjectID         *uuid.UUID `json:"projectId"`
	StartDate         *Date      `json:"startDate"`
	EndDate           *Date      `json:"endDate"`
	PredecessorTaskID *uuid.UUID `json:"predecessorTaskId"`
	Status            *string    `json:"status"`
}

type TaskQuery struct {
	Status              string
	DescriptionContains string
}

type TaskResponse struct {
	ID                     uuid.UUID  `json:"id"`
	Description            string     `json:"description"`
	ProjectID              uuid.UUID  `json:"projectId"`
	ProjectName            string     `json:"projectName"`
	StartDate              *Date      `json:"startDate"`
	EndDate                *Date      `json:"endDate"`
	PredecessorTaskID      *uuid.UUID `json:"predecessorTaskId"`
	PredecessorDescription *string    `json:"predecessorDescription"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

func toProjectResponse(d domain.ProjectDetail) ProjectResponse {
	out := ProjectResponse{
		ID:            d.ProjectID,
		Name:          d.Name,
		Description:   d.Description,
		Status:        string(d.Status),
		OwnerID:       d.OwnerID,
		TaskCount:     d.TaskCount,
		DoneTaskCount: d.DoneTaskCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.AvailableBudget != nil {
		a := NewAmount(*d.AvailableBudget)
		out.AvailableBudget = &a
	}
	return out
}

func toTaskResponse(d domain.TaskDetail) TaskResponse {
	out := TaskResponse{
		ID:                d.TaskID,
		Description:       d.Description,
		ProjectID:         d.ProjectID,
		ProjectName:       d.ProjectName,
		PredecessorTaskID: d.PredecessorTaskID,
		Status:            string(d.Status),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.StartDate != nil {
		sd := NewDate(*d.StartDate)
		out.StartDate = &sd
	}
	if d.EndDate != nil {
		ed := NewDate(*d.EndDate)
		out.EndDate = &ed
	}
	if d.PredecessorTaskID != nil {
		desc := d.PredecessorDescription
		out.PredecessorDescription = &desc
	}
	return out
}

func dateTime(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := domain.DateOnly(d.Time)
	return &t
}
