package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/project-tracker/internal/domain"
)

func TestMappersRejectUnknownStatus(t *testing.T) {
	now := time.Now().UTC()
	project := projectModel{ProjectID: uuid.New(), OwnerID: uuid.New(), Name: "Website", Status: "ACTIVE", CreatedAt: now, UpdatedAt: now}

	got, err := toDomainProject(project)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectActive, got.Status)

	project.Status = "ARCHIVED"
	_, err = toDomainProjectDetail(projectDetailRow{Project: project, TaskCount: 1})
	require.ErrorContains(t, err, `unknown status "ARCHIVED"`)

	task := taskModel{TaskID: uuid.New(), ProjectID: project.ProjectID, Description: "Design", Status: "NOT_DONE", CreatedAt: now, UpdatedAt: now}
	detail, err := toDomainTaskDetail(taskDetailRow{Task: task, ProjectName: "Website"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskNotDone, detail.Status)

	task.Status = "not_done"
	_, err = toDomainTask(task)
	require.ErrorContains(t, err, `unknown status "not_done"`)
}
