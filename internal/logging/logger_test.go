package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/trainlog/pkg"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("ERROR"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("Info"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("unknown"))
	assert.Equal(t, logrus.TraceLevel, GetLevel(""))
}

func TestNewOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "service")

	w := newOutput(logFile, false)
	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(logFile + ".log")
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(content))

	w = newOutput(logFile+".log", true)
	_, ok := w.(*pkg.CombinedWriter)
	assert.True(t, ok)
}

func TestSentryHook_Fire(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)

	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.hub = sentry.NewHub(client, sentry.NewScope())
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	logger := logrus.New()
	entry := logrus.NewEntry(logger).WithField("activity", "123").WithError(errors.New("store down"))
	entry.Level = logrus.ErrorLevel
	entry.Message = "save activity"
	require.NoError(t, hook.Fire(entry))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelError, events[0].Level)
	assert.Equal(t, "123", events[0].Extra["activity"])
	assert.Equal(t, "save activity", events[0].Extra["message"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "store down", events[0].Exception[0].Value)
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.FatalLevel))
	assert.Equal(t, sentry.LevelError, sentryLevel(logrus.ErrorLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))
}
