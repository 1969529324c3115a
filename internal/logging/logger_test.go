package logging

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, s Settings) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Initialize(zap.New(core), s)
	t.Cleanup(func() { Initialize(nil, Settings{}) })
	return logs
}

func TestCategoriesSilentOutsideDebugMode(t *testing.T) {
	logs := observe(t, Settings{})

	Get(CategoryAssessment).Info("evaluated %d domains", 5)
	Get(CategoryProposer).Error("request failed")

	assert.Equal(t, 0, logs.Len())
	assert.False(t, IsCategoryEnabled(CategoryAssessment))
}

func TestCategoryToggles(t *testing.T) {
	logs := observe(t, Settings{DebugMode: true, Categories: map[string]bool{"audit": false}})

	Get(CategoryAssessment).Info("evaluated %d domains", 5)
	Get(CategoryAudit).Info("derived %d facts", 3)
	Get(CategoryBatch).With("files", 2).Debug("batch started")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "assessment", entries[0].LoggerName)
	assert.Equal(t, "evaluated 5 domains", entries[0].Message)
	assert.Equal(t, "batch", entries[1].LoggerName)
	assert.Equal(t, int64(2), entries[1].ContextMap()["files"])

	assert.True(t, IsCategoryEnabled(CategoryProposer))
	assert.False(t, IsCategoryEnabled(CategoryAudit))
}

func TestGetIsCachedUntilInitialize(t *testing.T) {
	observe(t, Settings{DebugMode: true})
	a := Get(CategoryBoot)
	assert.Same(t, a, Get(CategoryBoot))

	Initialize(zap.NewNop(), Settings{DebugMode: true})
	assert.NotSame(t, a, Get(CategoryBoot))
}

func TestConcurrentGet(t *testing.T) {
	logs := observe(t, Settings{DebugMode: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Get(CategoryBatch).Debug("item %d", i)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, logs.Len())
}

func TestTimer(t *testing.T) {
	logs := observe(t, Settings{DebugMode: true})

	StartTimer(CategoryAssessment, "evaluate").Stop()
	StartTimer(CategoryAssessment, "slow").StopWithThreshold(-time.Second)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	assert.Equal(t, "evaluate completed", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Contains(t, logs.All()[1].ContextMap(), "elapsed")
}

func TestBuild(t *testing.T) {
	t.Run("bad level", func(t *testing.T) {
		_, err := Build(Settings{Level: "loud"}, false)
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := Build(Settings{Format: "xml"}, false)
		assert.ErrorContains(t, err, "invalid log format")
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		l, err := Build(Settings{Level: "error"}, true)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robkit.log")
		l, err := Build(Settings{Level: "info", Format: "json", File: path}, false)
		require.NoError(t, err)
		t.Cleanup(func() { Initialize(nil, Settings{}) })

		Initialize(l, Settings{DebugMode: true})
		Get(CategoryBoot).Info("config loaded from %s", "robkit.yaml")
		Get(CategoryBoot).Debug("hidden below info")
		_ = Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"logger":"boot"`)
		assert.Contains(t, string(data), "config loaded from robkit.yaml")
		assert.NotContains(t, string(data), "hidden below info")
	})
}
