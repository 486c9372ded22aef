package models

import "time"

// Document is one registered source document. Rows are immutable after
// creation except for the Processed flag; the ingest path never deletes
// them. Title is the dedup key.
type Document struct {
	DocumentID         string            `json:"document_id"`
	Title              string            `json:"title"`
	Category           string            `json:"category"`
	SourceOrganization string            `json:"source_organization"`
	Year               int               `json:"year"`
	SourceURL          string            `json:"source_url,omitempty"`
	Processed          bool              `json:"processed"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Document categories.
const (
	CategoryExam          = "exam"
	CategoryStudyMaterial = "study_material"
)

// QuestionRecord is one persisted multiple-choice question. OptionE is the
// only optional option; CorrectOption "E" requires it. The repair pass may
// overwrite fields in place, keyed by QuestionID.
type QuestionRecord struct {
	QuestionID    string    `json:"question_id"`
	DocumentID    string    `json:"document_id"`
	Stem          string    `json:"stem"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	OptionE       string    `json:"option_e,omitempty"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	SubjectArea   string    `json:"subject_area"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Chunk is one embedded retrieval segment. Chunks are written once and
// never updated; re-ingesting a document replaces its chunk set wholesale.
type Chunk struct {
	ChunkID    string            `json:"chunk_id"`
	DocumentID string            `json:"document_id"`
	ChunkIndex int               `json:"chunk_index"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ChunkResult is a vector-search hit joined with document provenance.
type ChunkResult struct {
	DocumentID   string  `json:"document_id"`
	Title        string  `json:"title"`
	Organization string  `json:"organization"`
	ChunkID      string  `json:"chunk_id"`
	Snippet      string  `json:"snippet"`
	Score        float64 `json:"score"`
	Content      string  `json:"content,omitempty"`
}

// SyncReport is the outcome of the post-batch consistency pass.
type SyncReport struct {
	Documents  int      `json:"documents"`
	Questions  int      `json:"questions"`
	Embeddings int      `json:"embeddings"`
	Fixes      []string `json:"fixes,omitempty"`
	Healthy    bool     `json:"healthy"`
}

// BatchResults is the aggregate outcome of one ingest batch.
//
// QuestionsAutoFixed counts records flagged for repair by the first audit
// pass, not records the model actually changed; a repair response that
// omits a record leaves it untouched but still counted.
type BatchResults struct {
	ProcessedFiles     int         `json:"processedFiles"`
	QuestionsGenerated int         `json:"questionsGenerated"`
	RAGChunks          int         `json:"ragChunks"`
	Errors             []string    `json:"errors"`
	QuestionsRejected  int         `json:"questionsRejected,omitempty"`
	QuestionsAutoFixed int         `json:"questionsAutoFixed,omitempty"`
	DBSync             *SyncReport `json:"dbSync,omitempty"`
}

// IngestResponse is the top-level return contract for an ingest request.
type IngestResponse struct {
	Success bool          `json:"success"`
	Results *BatchResults `json:"results,omitempty"`
	Error   string        `json:"error,omitempty"`
}
