package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/ports"
)

func logAttrs(operation, outcome string, attrs []any) []any {
	return append([]any{
		"service", serviceName,
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", outcome,
	}, attrs...)
}

// logResult logs success at Info, business rejections at Warn and anything else at Error.
func logResult(ctx context.Context, operation string, err error, attrs ...any) {
	logger := slog.Default()
	switch {
	case err == nil:
		logger.InfoContext(ctx, operation+" completed", logAttrs(operation, "success", attrs)...)
	case isBusinessError(err):
		logger.WarnContext(ctx, operation+" rejected", logAttrs(operation, "rejected", append(attrs, "reason", err.Error()))...)
	default:
		logger.ErrorContext(ctx, operation+" failed", logAttrs(operation, "failure", append(attrs, "error", err))...)
	}
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrConflict,
		domain.ErrUnauthorized,
		domain.ErrInvalidCredentials,
		domain.ErrAccountLocked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type eventEnvelope struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// publish emits an event after commit, waiting at most PublishTimeout.
// Failures are logged and never surface to the caller.
func (s *Service) publish(ctx context.Context, eventType, partitionKey string, data any) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(eventEnvelope{
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: s.nowFn(),
		Data:       data,
	})
	if err == nil {
		// Detached from request cancellation; bounded by PublishTimeout.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PublishTimeout)
		err = s.publisher.Publish(pubCtx, eventType, payload, partitionKey)
		cancel()
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "event publish failed",
			logAttrs("publish_event", "failure", []any{"event_type", eventType, "error", err})...)
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

func requireText(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	}
	return trimmed, nil
}

// maxBudget is the first value that no longer fits NUMERIC(15,2).
var maxBudget = decimal.New(1, 13)

func normalizeBudget(in *Amount) (*decimal.Decimal, error) {
	if in == nil {
		return nil, nil
	}
	d := in.Round(2)
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: available budget cannot be negative", domain.ErrInvalidInput)
	}
	if d.GreaterThanOrEqual(maxBudget) {
		return nil, fmt.Errorf("%w: available budget is too large", domain.ErrInvalidInput)
	}
	return &d, nil
}

func parseOptionalProjectStatus(raw *string) (*domain.ProjectStatus, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	status, err := domain.ParseProjectStatus(*raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func parseOptionalTaskStatus(raw *string) (*domain.TaskStatus, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	status, err := domain.ParseTaskStatus(*raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// loadOwnedProject checks existence first, then ownership.
func loadOwnedProject(ctx context.Context, repos ports.Repositories, projectID, ownerID uuid.UUID) (domain.Project, error) {
	project, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Project{}, fmt.Errorf("%w: project not found", domain.ErrNotFound)
		}
		return domain.Project{}, err
	}
	if !project.OwnedBy(ownerID) {
		return domain.Project{}, fmt.Errorf("%w: project belongs to another user", domain.ErrForbidden)
	}
	return project, nil
}

// loadOwnedTask resolves ownership through the task's project.
func loadOwnedTask(ctx context.Context, repos ports.Repositories, taskID, ownerID uuid.UUID) (domain.Task, error) {
	task, err := repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Task{}, fmt.Errorf("%w: task not found", domain.ErrNotFound)
		}
		return domain.Task{}, err
	}
	project, err := repos.Projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return domain.Task{}, err
	}
	if !project.OwnedBy(ownerID) {
		return domain.Task{}, fmt.Errorf("%w: task belongs to another user", domain.ErrForbidden)
	}
	return task, nil
}

// resolvePredecessor loads the candidate and checks it may precede taskID in projectID.
func resolvePredecessor(ctx context.Context, repos ports.Repositories, taskID, projectID uuid.UUID, predecessorID *uuid.UUID) (*uuid.UUID, error) {
	if predecessorID == nil || *predecessorID == uuid.Nil {
		return nil, nil
	}
	if taskID != uuid.Nil && *predecessorID == taskID {
		return nil, fmt.Errorf("%w: a task cannot be its own predecessor", domain.ErrInvalidInput)
	}
	candidate, err := repos.Tasks.GetByID(ctx, *predecessorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: predecessor task not found", domain.ErrNotFound)
		}
		return nil, err
	}
	if err := domain.CheckPredecessor(taskID, projectID, candidate); err != nil {
		return nil, err
	}
	id := candidate.TaskID
	return &id, nil
}
