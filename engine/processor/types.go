package processor

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path          string
	Modified      bool
	OriginalLines int
	NewLines      int
	// BackupPath is set when a backup copy exists for a modified file.
	BackupPath string
	// BackupCreated is false when BackupPath was kept from an earlier run.
	BackupCreated bool
	Err           error
}

// LinesRemoved is zero for unmodified files.
func (r FileResult) LinesRemoved() int {
	if !r.Modified {
		return 0
	}
	return r.OriginalLines - r.NewLines
}

// Summary aggregates a batch run.
type Summary struct {
	TotalFiles        int      `json:"totalFiles"`
	ProcessedFiles    int      `json:"processedFiles"`
	TotalLinesRemoved int      `json:"totalLinesRemoved"`
	BackupsCreated    int      `json:"backupsCreated"`
	Errors            []string `json:"errors"`
}

// HasErrors reports whether any file failed.
func (s Summary) HasErrors() bool {
	return len(s.Errors) > 0
}

// EventKind classifies a FileEvent.
type EventKind string

const (
	EventCleaned EventKind = "cleaned"
	EventSkipped EventKind = "skipped"
	EventFailed  EventKind = "failed"
)

// FileEvent is emitted once per processed file.
type FileEvent struct {
	Kind         EventKind
	Path         string
	Rel          string
	LinesRemoved int
	// BackedUp is true when this run created a backup copy.
	BackedUp bool
	Err          error
}

// Observer receives file events. Calls are serialized.
type Observer interface {
	OnFile(FileEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FileEvent)

func (f ObserverFunc) OnFile(e FileEvent) {
	f(e)
}
