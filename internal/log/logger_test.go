package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestJSONFormatterOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	Configure(logger, buf, "info", "json")

	logger.WithField(ComponentField, "fetcher").Info("test message")

	var payload map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON output, got error: %v", err)
	}
	if payload["msg"] != "test message" {
		t.Fatalf("expected msg field to be 'test message', got %v", payload["msg"])
	}
	if payload[ComponentField] != "fetcher" {
		t.Fatalf("expected component field, got %v", payload[ComponentField])
	}
}

func TestPrettyFormatterPrefixesComponent(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "page loaded",
		Data: logrus.Fields{
			ComponentField: "session",
			"page":         2,
			"count":        8,
		},
	}

	out, err := (&PrettyFormatter{NoColor: true}).Format(entry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	line := string(out)
	if !strings.Contains(line, "[session] page loaded count=8 page=2") {
		t.Fatalf("unexpected pretty line: %q", line)
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	logger := logrus.New()
	Configure(logger, &bytes.Buffer{}, "loud", "text")
	if logger.Level != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.Level)
	}
}
