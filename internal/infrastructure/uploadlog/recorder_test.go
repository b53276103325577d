package uploadlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
)

func TestRecordAppendsFormattedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "upload_log.txt")
	fixed := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	recorder := NewFileRecorder(path).WithClock(func() time.Time { return fixed })

	outcomes := []domain.UploadOutcome{
		{Title: "First", Status: domain.StatusSuccess, MediaID: "MEDIA123"},
		{Title: "Second", Status: domain.StatusFailure, Detail: "errcode=40001"},
		{Title: "Third", Status: domain.StatusSkipped, Detail: "already uploaded in a previous run"},
	}
	for _, outcome := range outcomes {
		if err := recorder.Record(outcome); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d", len(lines))
	}

	if lines[0] != "2026-03-01 09:30:00 | 成功 | 标题：First | media_id: MEDIA123" {
		t.Fatalf("unexpected success line: %q", lines[0])
	}
	if lines[1] != "2026-03-01 09:30:00 | 失败 | 标题：Second | 原因: errcode=40001" {
		t.Fatalf("unexpected failure line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "跳过") {
		t.Fatalf("unexpected skip line: %q", lines[2])
	}
}

func TestRecordCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "upload_log.txt")
	recorder := NewFileRecorder(path)

	if err := recorder.Record(domain.UploadOutcome{Title: "T", Status: domain.StatusSuccess, MediaID: "M"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}
