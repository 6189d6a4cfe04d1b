package wheelpack

// ProgressEvent represents a progress update during a pack operation.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the archive member currently being written, if applicable.
	Path string

	// BytesDone is the number of uncompressed bytes archived so far.
	BytesDone uint64

	// EntriesDone is the number of archive entries written so far.
	EntriesDone int
}

// ProgressStage identifies the current phase of a pack operation.
type ProgressStage uint8

const (
	// StageEnumerating indicates the tree is being walked.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates an entry has been compressed and written.
	StageCompressing

	// StageFinalizing indicates the central directory is being written.
	StageFinalizing
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageCompressing:
		return "compressing"
	case StageFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during pack operations.
// Calls are made synchronously from the packing goroutine.
type ProgressFunc func(ProgressEvent)
