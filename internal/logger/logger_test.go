/*
 * Copyright (C) 2023 by Jason Figge
 */

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	log := New(&bytes.Buffer{})
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("formatter = %T, want text", log.Formatter)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	var buf bytes.Buffer
	log := New(&buf)
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", log.GetLevel())
	}
	log.WithField("component", "test").Debug("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output %q is not json: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["component"] != "test" {
		t.Fatalf("line = %v", line)
	}
}

func TestNewBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if log := New(&bytes.Buffer{}); log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info fallback", log.GetLevel())
	}
}
