package activities

import (
	"exambank/internal/models"
	"exambank/internal/questions"
)

type FetchUploadInput struct {
	DownloadURL string
	FileName    string
}

type FetchUploadOutput struct {
	Path string
	Size int64
}

type ExpandUploadInput struct {
	Path     string
	FileName string
}

// FileRef is one document staged on local disk for processing.
type FileRef struct {
	Name        string
	ArchivePath string
	Path        string
}

type ExpandUploadOutput struct {
	Files []FileRef
}

type ExtractTextInput struct {
	Path string
	Name string
}

type ExtractTextOutput struct {
	Text string
}

type RegisterDocumentInput struct {
	FileName    string
	ArchiveName string
	ArchivePath string
	Category    string
	PublicURL   string
}

type RegisterDocumentOutput struct {
	DocumentID   string
	Title        string
	Organization string
	Year         int
	Existed      bool
}

type ChunkTextInput struct {
	Text      string
	MaxTokens int
	Overlap   int
}

type ChunkTextOutput struct {
	Chunks []string
}

type IndexChunksInput struct {
	DocumentID   string
	FileName     string
	Organization string
	Year         int
	Chunks       []string
}

type IndexChunksOutput struct {
	Indexed int
	Failed  int
}

type ExtractQuestionsInput struct {
	DocumentID string
	Category   string
	Text       string
}

type ExtractQuestionsOutput struct {
	Candidates []questions.Candidate
}

type SaveQuestionsInput struct {
	DocumentID string
	Candidates []questions.Candidate
}

type SaveQuestionsOutput struct {
	Saved            int
	Rejected         int
	RejectedByReason map[string]int
}

type AutoFixInput struct {
	DocumentID string
}

type AutoFixOutput struct {
	Flagged  int
	Repaired int
}

type SyncOutput struct {
	Report models.SyncReport
}

type NotifyInput struct {
	ProcessedFiles     int
	QuestionsGenerated int
}
