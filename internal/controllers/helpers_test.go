package controllers

import (
	"path/filepath"
	"testing"

	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestDB(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestMirror(t *testing.T) *cache.Mirror {
	t.Helper()
	return cache.NewMirror(filepath.Join(t.TempDir(), "mirror.json"), newTestLogger())
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New()
}
