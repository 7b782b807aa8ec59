// Package audit appends ticket audit events to a JSON-lines file.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chamberirc/chamberbnc/internal/domain/ticket"
)

type entry struct {
	Time     string `json:"time"`
	Event    string `json:"event"`
	ID       uint   `json:"id"`
	Actor    string `json:"actor"`
	Mask     string `json:"mask,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status,omitempty"`
}

// FileLog opens the file for every record so that external log rotation
// needs no signal.
type FileLog struct {
	path string
	mu   sync.Mutex
}

func NewFileLog(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}
	return &FileLog{path: path}, nil
}

func (l *FileLog) Record(ctx context.Context, ev ticket.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(entry{
		Time:     ev.Time.UTC().Format(time.RFC3339),
		Event:    ev.Name,
		ID:       ev.TicketID,
		Actor:    ev.Actor,
		Mask:     ev.Mask,
		Assignee: ev.Assignee,
		Status:   ev.Status,
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}

// Discard drops every event; used when no audit log is configured.
type Discard struct{}

func (Discard) Record(context.Context, ticket.AuditEvent) error { return nil }
