package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

func newTestLedger(t *testing.T, budget int) (*Ledger, *repository.Memory, *utils.SessionCodec) {
	t.Helper()
	codec, err := utils.NewSessionCodec("s3cret", time.Hour)
	require.NoError(t, err)
	store := repository.NewMemory()
	l, err := NewLedger(codec, store, budget, 5*time.Minute)
	require.NoError(t, err)
	return l, store, codec
}

func TestNewLedgerValidatesArguments(t *testing.T) {
	codec, _ := utils.NewSessionCodec("s3cret", time.Hour)
	store := repository.NewMemory()

	_, err := NewLedger(nil, store, 5, time.Minute)
	assert.Error(t, err)
	_, err = NewLedger(codec, nil, 5, time.Minute)
	assert.Error(t, err)
	_, err = NewLedger(codec, store, 0, time.Minute)
	assert.Error(t, err)
	_, err = NewLedger(codec, store, 5, 0)
	assert.Error(t, err)
}

func TestIssueWritesBudgetedRow(t *testing.T) {
	l, store, codec := newTestLedger(t, 5)
	tok, err := codec.Mint("u-1", "a@x.com", "user")
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.WithClock(func() time.Time { return base }).Issue(context.Background(), "u-1", tok.Token))

	rows := store.Tokens()
	require.Len(t, rows, 1)
	assert.Equal(t, "u-1", rows[0].UserID)
	assert.Equal(t, tok.Token, rows[0].Token)
	assert.Equal(t, 5, rows[0].RemainingRequests)
	assert.Equal(t, base.Add(5*time.Minute), rows[0].ExpiresAt)
}

func TestBudgetExhaustion(t *testing.T) {
	ctx := context.Background()
	l, _, codec := newTestLedger(t, 3)
	tok, _ := codec.Mint("u-1", "a@x.com", "user")
	require.NoError(t, l.Issue(ctx, "u-1", tok.Token))

	for want := 2; want >= 0; want-- {
		g, err := l.CheckAndConsume(ctx, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", g.UserID)
		assert.Equal(t, want, g.Remaining)
	}
	_, err := l.CheckAndConsume(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExhausted)
}

func TestExpiredRowNeverMatches(t *testing.T) {
	ctx := context.Background()
	l, _, codec := newTestLedger(t, 5)
	tok, _ := codec.Mint("u-1", "a@x.com", "user")

	base := time.Now()
	require.NoError(t, l.WithClock(func() time.Time { return base }).Issue(ctx, "u-1", tok.Token))

	later := l.WithClock(func() time.Time { return base.Add(5*time.Minute + time.Second) })
	_, err := later.CheckAndConsume(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExhausted)

	_, err = l.WithClock(func() time.Time { return base.Add(time.Minute) }).CheckAndConsume(ctx, tok.Token)
	assert.NoError(t, err)
}

func TestLatestRowIsConsumed(t *testing.T) {
	ctx := context.Background()
	l, store, codec := newTestLedger(t, 2)
	tok, _ := codec.Mint("u-1", "a@x.com", "user")

	base := time.Now()
	require.NoError(t, l.WithClock(func() time.Time { return base }).Issue(ctx, "u-1", tok.Token))
	require.NoError(t, l.WithClock(func() time.Time { return base.Add(time.Second) }).Issue(ctx, "u-1", tok.Token))

	_, err := l.CheckAndConsume(ctx, tok.Token)
	require.NoError(t, err)
	rows := store.Tokens()
	assert.Equal(t, 2, rows[0].RemainingRequests)
	assert.Equal(t, 1, rows[1].RemainingRequests)
}

func TestInvalidTokensAreRejectedBeforeTheStore(t *testing.T) {
	ctx := context.Background()
	l, store, _ := newTestLedger(t, 5)

	other, _ := utils.NewSessionCodec("other", time.Hour)
	foreign, _ := other.Mint("u-1", "a@x.com", "user")
	require.NoError(t, store.Insert(ctx, &model.APIToken{
		UserID: "u-1", Token: foreign.Token, RemainingRequests: 5, ExpiresAt: time.Now().Add(time.Hour),
	}))

	for _, raw := range []string{"", "garbage", foreign.Token} {
		_, err := l.CheckAndConsume(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
	assert.Equal(t, 5, store.Tokens()[0].RemainingRequests)
}

type failingLedgerStore struct{ repository.Memory }

func (f *failingLedgerStore) ConsumeLatest(context.Context, string, time.Time) (model.APIToken, error) {
	return model.APIToken{}, errors.New("connection reset")
}

func TestStoreFailureIsNotAnAuthFailure(t *testing.T) {
	codec, _ := utils.NewSessionCodec("s3cret", time.Hour)
	l, err := NewLedger(codec, &failingLedgerStore{}, 5, time.Minute)
	require.NoError(t, err)
	tok, _ := codec.Mint("u-1", "a@x.com", "user")

	_, err = l.CheckAndConsume(context.Background(), tok.Token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExhausted)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestConcurrentConsumptionIsExactlyOncePerUnit(t *testing.T) {
	const budget, callers = 5, 40
	ctx := context.Background()
	l, store, codec := newTestLedger(t, budget)
	tok, _ := codec.Mint("u-1", "a@x.com", "user")
	require.NoError(t, l.Issue(ctx, "u-1", tok.Token))

	var ok, exhausted int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := l.CheckAndConsume(ctx, tok.Token)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, ErrTokenExhausted):
				atomic.AddInt32(&exhausted, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(budget), ok)
	assert.Equal(t, int32(callers-budget), exhausted)
	assert.Equal(t, 0, store.Tokens()[0].RemainingRequests)
}
