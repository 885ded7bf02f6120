package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/czerwonk/pinggraph/config"
	"github.com/czerwonk/pinggraph/render"
	log "github.com/sirupsen/logrus"
)

type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Run(ctx context.Context) error {
	return r.err
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"servers": [], "probe_config": {"backend": "probing", "privileged": false}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStart(t *testing.T) {
	tests := []struct {
		name  string
		newUI func(*config.Config, render.Source) (renderer, error)
		want  int
	}{
		{
			"renderer quits",
			func(*config.Config, render.Source) (renderer, error) { return &fakeRenderer{}, nil },
			0,
		},
		{
			"renderer fails",
			func(*config.Config, render.Source) (renderer, error) {
				return &fakeRenderer{err: errors.New("cannot create window")}, nil
			},
			1,
		},
		{
			"renderer cannot be created",
			func(*config.Config, render.Source) (renderer, error) { return nil, errors.New("no terminal") },
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "pinggraph.log")
			*logFile = logPath
			defer func() { *logFile = "" }()

			if got := start(writeEmptyConfig(t), tt.newUI); got != tt.want {
				t.Errorf("start() = %d, want %d", got, tt.want)
			}

			// cleanup ran before returning
			if log.StandardLogger().Out != os.Stderr {
				t.Error("expected log output to be restored to stderr")
			}
			b, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(b), "Loaded config file") {
				t.Errorf("expected startup to be logged to the log file, got %q", string(b))
			}
		})
	}
}

func TestSetupLoggingDiscardsWithoutFile(t *testing.T) {
	closeLog, err := setupLogging("info", "")
	if err != nil {
		t.Fatal(err)
	}

	if log.StandardLogger().Out != io.Discard {
		t.Error("expected log output to be discarded while the graph is shown")
	}

	closeLog()
	if log.StandardLogger().Out != os.Stderr {
		t.Error("expected log output to be restored to stderr")
	}
}
