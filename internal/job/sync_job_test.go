package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/service"
)

type fakeRunner struct {
	calls    int
	deadline bool
	err      error
}

func (f *fakeRunner) SyncAll(ctx context.Context) ([]service.SyncResult, error) {
	f.calls++
	_, f.deadline = ctx.Deadline()
	return []service.SyncResult{{Resource: model.KindFilms, TotalUpstream: 6, TotalUpserted: 6}}, f.err
}

func TestSyncJobRunAppliesTimeout(t *testing.T) {
	r := &fakeRunner{}
	NewSyncJob(r, time.Minute).Run()
	assert.Equal(t, 1, r.calls)
	assert.True(t, r.deadline)

	r = &fakeRunner{err: errors.New("upstream down")}
	NewSyncJob(r, 0).Run()
	assert.Equal(t, 1, r.calls)
	assert.False(t, r.deadline)
}

func TestNewSchedulerValidatesSpec(t *testing.T) {
	j := NewSyncJob(&fakeRunner{}, 0)

	c, err := NewScheduler("@every 6h", j)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	c, err = NewScheduler("0 3 * * *", j)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = NewScheduler("every so often", j)
	assert.Error(t, err)
}
