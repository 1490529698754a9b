package application_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/project-tracker/internal/application"
	"github.com/viralforge/project-tracker/internal/domain"
	"github.com/viralforge/project-tracker/internal/testutil"
)

func TestConcurrentSameNameCreatesYieldOneWinner(t *testing.T) {
	t.Parallel()
	env := testutil.NewEnv(t)
	alice := register(t, env, "alice@example.com")

	const workers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, workers)
		ctx   = context.Background()
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = env.Service.CreateProject(ctx, alice, application.ProjectRequest{Name: "Website"})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	projects, err := env.Service.ListProjects(ctx, alice, application.ProjectQuery{})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}
