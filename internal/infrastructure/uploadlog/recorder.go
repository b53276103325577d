package uploadlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// Status tokens and field labels keep the historical log file format, which
// downstream tooling parses.
const (
	statusSuccess = "成功"
	statusFailure = "失败"
	statusSkipped = "跳过"

	titleLabel  = "标题："
	reasonLabel = "原因: "
)

// FileRecorder appends one line per processed article to a text log.
type FileRecorder struct {
	path string
	now  func() time.Time
}

var _ ports.UploadRecorder = (*FileRecorder)(nil)

// NewFileRecorder wires a recorder around the log file path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path, now: time.Now}
}

// WithClock overrides the timestamp source for tests.
func (r *FileRecorder) WithClock(now func() time.Time) *FileRecorder {
	if now != nil {
		r.now = now
	}
	return r
}

// Record appends one formatted entry. The parent directory is created on
// first use.
func (r *FileRecorder) Record(outcome domain.UploadOutcome) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open upload log %s: %w", r.path, err)
	}
	defer file.Close()

	line := fmt.Sprintf("%s | %s | %s%s | %s\n",
		r.now().Format("2006-01-02 15:04:05"),
		statusToken(outcome.Status),
		titleLabel, outcome.Title,
		detailText(outcome),
	)

	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append upload log: %w", err)
	}

	return nil
}

func statusToken(status domain.UploadStatus) string {
	switch status {
	case domain.StatusSuccess:
		return statusSuccess
	case domain.StatusSkipped:
		return statusSkipped
	default:
		return statusFailure
	}
}

func detailText(outcome domain.UploadOutcome) string {
	if outcome.Status == domain.StatusSuccess {
		return "media_id: " + outcome.MediaID
	}
	return reasonLabel + outcome.Detail
}
