package prefs

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/localfeed/internal/clitest"
	"github.com/dtnitsch/localfeed/models"
)

func decode(t *testing.T, out string) models.RatioPreferences {
	t.Helper()
	var p models.RatioPreferences
	require.NoError(t, yaml.Unmarshal([]byte(out), &p))
	return p
}

func TestPrefsLifecycle(t *testing.T) {
	clitest.Isolate(t)

	out, err := clitest.Run(t, Command(), "prefs", "get", "ana")
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, "ana", got.UserID)
	assert.Equal(t, 50, got.Local)
	assert.Equal(t, 50, got.Topical)

	out, err = clitest.Run(t, Command(), "prefs", "set", "--local", "70", "ana")
	require.NoError(t, err)
	got = decode(t, out)
	assert.Equal(t, 70, got.Local)
	assert.Equal(t, 30, got.Topical)
	assert.False(t, got.UpdatedAt.IsZero())

	out, err = clitest.Run(t, Command(), "prefs", "set", "--topical", "45", "--topic", "weather", "ana")
	require.NoError(t, err)
	got = decode(t, out)
	assert.Equal(t, 55, got.Local)
	assert.Equal(t, "weather", got.Topic)

	out, err = clitest.Run(t, Command(), "prefs", "get", "ana")
	require.NoError(t, err)
	got = decode(t, out)
	assert.Equal(t, 55, got.Local)
	assert.Equal(t, 45, got.Topical)
	assert.Equal(t, "weather", got.Topic)
}

func TestPrefsSetClamps(t *testing.T) {
	clitest.Isolate(t)

	out, err := clitest.Run(t, Command(), "prefs", "set", "--local", "130", "bo")
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, 100, got.Local)
	assert.Equal(t, 0, got.Topical)
}

func TestPrefsSetErrors(t *testing.T) {
	clitest.Isolate(t)

	_, err := clitest.Run(t, Command(), "prefs", "set", "ana")
	assert.ErrorContains(t, err, "nothing to change")

	_, err = clitest.Run(t, Command(), "prefs", "set", "--local", "10", "--topical", "90", "ana")
	assert.ErrorContains(t, err, "not both")

	_, err = clitest.Run(t, Command(), "prefs", "get")
	assert.ErrorContains(t, err, "missing <user>")
}

func TestPrefsSetRemoteFailureKeepsLocal(t *testing.T) {
	clitest.Isolate(t)
	var calls atomic.Int32
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer remote.Close()
	t.Setenv("LOCALFEED_REMOTE_URL", remote.URL)

	out, err := clitest.Run(t, Command(), "prefs", "set", "--local", "20", "cy")
	require.NoError(t, err)
	assert.Equal(t, 20, decode(t, out).Local)
	assert.Positive(t, calls.Load())

	out, err = clitest.Run(t, Command(), "prefs", "get", "cy")
	require.NoError(t, err)
	assert.Equal(t, 20, decode(t, out).Local)
}

func TestPrefsTri(t *testing.T) {
	clitest.Isolate(t)

	out, err := clitest.Run(t, Command(), "prefs", "tri", "--weights", "50,30,20", "--fixed", "0", "--value", "60", "ana")
	require.NoError(t, err)
	assert.Equal(t, "user: ana\nweights: [60, 24, 16]\n", out)

	_, err = clitest.Run(t, Command(), "prefs", "tri", "--weights", "50,50", "--value", "10", "ana")
	assert.ErrorContains(t, err, "want 3 values")

	_, err = clitest.Run(t, Command(), "prefs", "tri", "--fixed", "3", "--value", "10", "ana")
	assert.ErrorContains(t, err, "must be 0, 1 or 2")
}
