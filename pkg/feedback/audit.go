package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAuditLog is the JSONL file every generated review is appended to.
const DefaultAuditLog = "feedback_log.jsonl"

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Findings  []Finding `json:"findings"`
	Response  Review    `json:"response"`
	Model     string    `json:"model"`
	Timestamp string    `json:"timestamp"`
}

// AuditLog appends entries to a JSONL file.
type AuditLog struct {
	Path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	if path == "" {
		path = DefaultAuditLog
	}
	return &AuditLog{Path: path}
}

// Append writes one entry as a single line, filling in ID and Timestamp
// when they are empty.
func (l *AuditLog) Append(e AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}
