package workflows

// BatchIngestInput describes one upload request: the staged blob behind a
// signed download URL plus the public URL to attach to created documents.
type BatchIngestInput struct {
	FileName    string
	DownloadURL string
	PublicURL   string
	Category    string
}

// BatchProgress is exposed through a workflow query while a batch runs.
type BatchProgress struct {
	FileName    string `json:"file_name"`
	TotalFiles  int    `json:"total_files"`
	DoneFiles   int    `json:"done_files"`
	CurrentFile string `json:"current_file,omitempty"`
	CurrentStep string `json:"current_step"`
}

// fileResult is the outcome of one file, folded into the batch totals.
type fileResult struct {
	processed bool
	errors    []string
	chunks    int
	saved     int
	rejected  int
	autoFixed int
}
