package retry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Entry - недоставленное сообщение
type Entry struct {
	ID       string          `json:"id"`
	Target   string          `json:"target"` // broker, result_log
	Key      string          `json:"key,omitempty"`
	FailedAt time.Time       `json:"failed_at"`
	Attempts int             `json:"attempts"`
	Error    string          `json:"error"`
	Payload  json.RawMessage `json:"payload"`
}

// DeadLetters - файл с недоставленными сообщениями (JSON массив).
// Каждое изменение сразу записывается на диск.
type DeadLetters struct {
	mu      sync.Mutex
	path    string
	limit   int
	entries []Entry
	counter int
}

// OpenDeadLetters загружает файл если он существует
func OpenDeadLetters(path string, limit int) (*DeadLetters, error) {
	d := &DeadLetters{path: path, limit: limit}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d.entries); err != nil {
			return nil, fmt.Errorf("failed to parse dead letters %s: %w", path, err)
		}
	}
	return d, nil
}

// Add добавляет запись, при превышении лимита удаляет самые старые
func (d *DeadLetters) Add(entry Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counter++
	entry.ID = fmt.Sprintf("dl-%d-%d", entry.FailedAt.UnixNano(), d.counter)
	d.entries = append(d.entries, entry)

	if d.limit > 0 && len(d.entries) > d.limit {
		d.entries = d.entries[len(d.entries)-d.limit:]
	}
	return d.save()
}

// Entries возвращает копию записей в порядке добавления
func (d *DeadLetters) Entries() []Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Remove удаляет запись по ID
func (d *DeadLetters) Remove(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, e := range d.entries {
		if e.ID == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return true, d.save()
		}
	}
	return false, nil
}

// Len возвращает количество записей
func (d *DeadLetters) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *DeadLetters) save() error {
	entries := d.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dead letters: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dead letters: %w", err)
	}
	return nil
}
