package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatuses(t *testing.T) {
	ps, err := ParseProjectStatus(" inactive ")
	require.NoError(t, err)
	assert.Equal(t, ProjectInactive, ps)
	_, err = ParseProjectStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidInput)

	ts, err := ParseTaskStatus("not_done")
	require.NoError(t, err)
	assert.Equal(t, TaskNotDone, ts)
	_, err = ParseTaskStatus("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.False(t, ProjectStatus("active").Valid())
	assert.True(t, TaskDone.Valid())
}

func TestFilterModeTextWinsOverStatus(t *testing.T) {
	active := ProjectActive
	assert.Equal(t, FilterNone, ProjectFilter{}.Mode())
	assert.Equal(t, FilterByStatus, ProjectFilter{Status: &active}.Mode())
	assert.Equal(t, FilterByText, ProjectFilter{Status: &active, NameContains: "web"}.Mode())
	assert.Equal(t, FilterByStatus, ProjectFilter{Status: &active, NameContains: "   "}.Mode())

	done := TaskDone
	assert.Equal(t, FilterByText, TaskFilter{Status: &done, DescriptionContains: "x"}.Mode())
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%web%", ContainsPattern(" WEB "))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}

func TestValidateSchedule(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	assert.NoError(t, ValidateSchedule(nil, day(1)))
	assert.NoError(t, ValidateSchedule(day(3), day(3)))
	assert.ErrorIs(t, ValidateSchedule(day(4), day(3)), ErrInvalidInput)
}

func TestCheckPredecessor(t *testing.T) {
	projectID := uuid.New()
	candidate := Task{TaskID: uuid.New(), ProjectID: projectID}

	assert.NoError(t, CheckPredecessor(uuid.Nil, projectID, candidate))
	assert.ErrorIs(t, CheckPredecessor(candidate.TaskID, projectID, candidate), ErrInvalidInput)
	assert.ErrorIs(t, CheckPredecessor(uuid.New(), uuid.New(), candidate), ErrInvalidInput)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("passw0rd"))
	assert.ErrorIs(t, ValidatePassword("short1"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePassword("onlyletters"), ErrInvalidInput)
	assert.ErrorIs(t, ValidatePassword("1234567890"), ErrInvalidInput)
}

func TestDateOnlyTruncates(t *testing.T) {
	in := time.Date(2026, 5, 17, 23, 59, 1, 5, time.UTC)
	assert.Equal(t, time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
