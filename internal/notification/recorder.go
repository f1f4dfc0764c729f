package notification

import "sync"

// Entry is one recorded notification
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps every notification in memory. Tests use it to assert which
// messages an operation raised.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) NotifySuccess(message string) { r.add(LevelSuccess, message) }

func (r *Recorder) NotifyError(message string) { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages recorded at level, in order
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Successes returns the recorded success messages
func (r *Recorder) Successes() []string { return r.Messages(LevelSuccess) }

// Errors returns the recorded error messages
func (r *Recorder) Errors() []string { return r.Messages(LevelError) }

// Reset forgets everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
