package ratio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dtnitsch/localfeed/models"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load(context.Context, string) (models.RatioPreferences, error) {
	return models.RatioPreferences{}, f.loadErr
}

func (f *failingStore) Save(context.Context, models.RatioPreferences) error {
	f.saves++
	return f.saveErr
}

func fixedClock(s *Service) {
	s.now = func() time.Time { return time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC) }
}

func TestServiceGetDefaults(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil)

	got, err := svc.Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences("u1"), got)
}

func TestServiceWriteThrough(t *testing.T) {
	ctx := context.Background()
	local, remote := NewMemoryStore(), NewMemoryStore()
	svc := NewService(local, remote, nil)
	fixedClock(svc)

	got, err := svc.SetLocal(ctx, "u1", 70)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Local)
	assert.Equal(t, 30, got.Topical)

	fromLocal, err := local.Load(ctx, "u1")
	require.NoError(t, err)
	fromRemote, err := remote.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, got, fromLocal)
	assert.Equal(t, got, fromRemote)
	assert.Equal(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), got.UpdatedAt)

	got, err = svc.SetTopical(ctx, "u1", 45)
	require.NoError(t, err)
	assert.Equal(t, 55, got.Local)
	assert.Equal(t, 45, got.Topical)
}

func TestServiceRemoteFillsLocalCache(t *testing.T) {
	ctx := context.Background()
	local, remote := NewMemoryStore(), NewMemoryStore()
	require.NoError(t, remote.Save(ctx, models.RatioPreferences{UserID: "u2", Local: 20, Topical: 80, Topic: "sport"}))
	svc := NewService(local, remote, nil)

	got, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Local)

	cached, err := local.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, got, cached)
}

func TestServiceRemoteFailureKeepsLocalWrite(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	local := NewMemoryStore()
	remote := &failingStore{loadErr: ErrNotFound, saveErr: errors.New("connection refused")}
	svc := NewService(local, remote, zap.New(core))

	got, err := svc.SetLocal(ctx, "u3", 65)

	require.ErrorIs(t, err, ErrRemoteSync)
	assert.Equal(t, 65, got.Local)
	stored, loadErr := local.Load(ctx, "u3")
	require.NoError(t, loadErr)
	assert.Equal(t, 65, stored.Local)
	assert.Equal(t, 1, remote.saves)
	assert.Equal(t, 1, logs.FilterMessage("remote preference upsert failed").Len())
}

func TestServiceRemoteLoadErrorFallsBackToDefaults(t *testing.T) {
	remote := &failingStore{loadErr: errors.New("timeout")}
	svc := NewService(NewMemoryStore(), remote, nil)

	got, err := svc.Get(context.Background(), "u4")

	require.NoError(t, err)
	assert.Equal(t, 50, got.Local)
}

func TestServiceLocalErrorIsReturned(t *testing.T) {
	local := &failingStore{loadErr: errors.New("disk gone")}
	svc := NewService(local, nil, nil)

	_, err := svc.Get(context.Background(), "u5")

	assert.Error(t, err)
}

func TestServiceApply(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryStore()
	svc := NewService(local, nil, nil)

	topical := 35
	got, err := svc.Apply(ctx, "u1", Update{Topical: &topical, Topic: "weather"})
	require.NoError(t, err)
	assert.Equal(t, 65, got.Local)
	assert.Equal(t, 35, got.Topical)
	assert.Equal(t, "weather", got.Topic)

	l, tp := 120, 10
	got, err = svc.Apply(ctx, "u1", Update{Local: &l, Topical: &tp})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Local)
	assert.Equal(t, 0, got.Topical)
	assert.Equal(t, "weather", got.Topic)

	assert.True(t, Update{}.Empty())
	assert.False(t, Update{Topic: "sport"}.Empty())
}

func TestServiceStoredReportsMissing(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), &failingStore{loadErr: errors.New("timeout")}, nil)

	_, err := svc.Stored(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetLocal(ctx, "u6", 10)
	require.NoError(t, err)
	got, err := svc.Stored(ctx, "u6")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Local)
}
