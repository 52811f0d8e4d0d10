package repl

import (
	"bufio"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

const baseHistory = "history.utf8"

// Mode prefixes of history file lines.
const (
	renderPrefix = "R:"
	ctrlPrefix   = "C:"
)

// Entry is one history line and the mode it was entered in.
type Entry struct {
	Line string
	Mode inputMode
}

// History is the input history, persisted to a file. A History with an
// empty path is kept in memory only. It is safe for concurrent use.
type History struct {
	path    string
	mu      sync.RWMutex
	entries []Entry
}

// NewHistory returns a History stored at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those in the history file. A missing file
// is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := Entry{Line: line, Mode: modeRender}

		if s, ok := strings.CutPrefix(line, ctrlPrefix); ok {
			entry = Entry{Line: s, Mode: modeCtrl}
		} else if s, ok := strings.CutPrefix(line, renderPrefix); ok {
			entry.Line = s
		}

		h.entries = append(h.entries, entry)
	}

	return scanner.Err()
}

// Add appends line to the history, moving an identical earlier entry of the
// same mode to the end instead of repeating it.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry := Entry{Line: line, Mode: mode}
	h.entries = append(slices.DeleteFunc(h.entries, func(e Entry) bool {
		return e == entry
	}), entry)

	return h.save()
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return Entry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// save rewrites the history file. Must be called with h.mu held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	var sb strings.Builder

	for _, e := range h.entries {
		if e.Mode == modeCtrl {
			sb.WriteString(ctrlPrefix)
		} else {
			sb.WriteString(renderPrefix)
		}

		sb.WriteString(e.Line)
		sb.WriteByte('\n')
	}

	return atomic.WriteFile(h.path, strings.NewReader(sb.String()))
}
