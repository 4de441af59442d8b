package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerFormats(t *testing.T) {
	logger := NewLogger("debug", "json")
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Formatter)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", logger.GetLevel())
	}

	logger = NewLogger("info", "text")
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("Expected text formatter, got %T", logger.Formatter)
	}
}

func TestNewLoggerFallsBackOnUnknownValues(t *testing.T) {
	logger := NewLogger("shouting", "yaml")
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("Unknown level should fall back to info, got %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("Unknown format should fall back to text, got %T", logger.Formatter)
	}
}
