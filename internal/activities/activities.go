package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"exambank/internal/config"
	"exambank/internal/extract"
	"exambank/internal/models"
	"exambank/internal/providers"
	"exambank/internal/questions"
	"exambank/internal/storage"
	"exambank/internal/util"
	"exambank/internal/vector"

	"github.com/google/uuid"
)

type Activities struct {
	cfg          config.Config
	documentRepo *storage.DocumentRepo
	questionRepo *storage.QuestionRepo
	chunkRepo    *storage.ChunkRepo
	usageRepo    *storage.UsageRepo
	syncRepo     *storage.SyncRepo
	providers    *providers.Manager
	httpClient   *http.Client
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:          cfg,
		documentRepo: storage.NewDocumentRepo(db),
		questionRepo: storage.NewQuestionRepo(db),
		chunkRepo:    storage.NewChunkRepo(db),
		usageRepo:    storage.NewUsageRepo(db),
		syncRepo:     storage.NewSyncRepo(db),
		providers:    pm,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// FetchUploadActivity downloads the blob behind the caller-supplied signed
// URL into the staging directory.
func (a *Activities) FetchUploadActivity(ctx context.Context, in FetchUploadInput) (FetchUploadOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.DownloadURL, nil)
	if err != nil {
		return FetchUploadOutput{}, fmt.Errorf("build download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return FetchUploadOutput{}, fmt.Errorf("download upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return FetchUploadOutput{}, fmt.Errorf("download upload: status %d", resp.StatusCode)
	}
	dir := filepath.Join(a.cfg.DataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FetchUploadOutput{}, fmt.Errorf("create staging dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+"-"+filepath.Base(in.FileName))
	f, err := os.Create(path)
	if err != nil {
		return FetchUploadOutput{}, fmt.Errorf("create staging file: %w", err)
	}
	defer f.Close()
	size, err := io.Copy(f, resp.Body)
	if err != nil {
		return FetchUploadOutput{}, fmt.Errorf("write staging file: %w", err)
	}
	return FetchUploadOutput{Path: path, Size: size}, nil
}

// ExpandUploadActivity resolves the staged blob into per-document files.
// Unsupported formats and unopenable containers are whole-batch errors.
func (a *Activities) ExpandUploadActivity(ctx context.Context, in ExpandUploadInput) (ExpandUploadOutput, error) {
	_ = ctx
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return ExpandUploadOutput{}, fmt.Errorf("read staged upload: %w", err)
	}
	entries, err := extract.Expand(in.FileName, data)
	if err != nil {
		return ExpandUploadOutput{}, err
	}
	dir := filepath.Join(filepath.Dir(in.Path), uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExpandUploadOutput{}, fmt.Errorf("create batch dir: %w", err)
	}
	out := ExpandUploadOutput{Files: make([]FileRef, 0, len(entries))}
	for i, e := range entries {
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, filepath.Base(e.Name)))
		if err := os.WriteFile(path, e.Data, 0o644); err != nil {
			return ExpandUploadOutput{}, fmt.Errorf("stage entry %s: %w", e.Name, err)
		}
		out.Files = append(out.Files, FileRef{Name: e.Name, ArchivePath: e.ArchivePath, Path: path})
	}
	return out, nil
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("read staged document: %w", err)
	}
	text, err := extract.Text(data)
	if err != nil {
		return ExtractTextOutput{}, err
	}
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) RegisterDocumentActivity(ctx context.Context, in RegisterDocumentInput) (RegisterDocumentOutput, error) {
	title := titleFromFilename(in.FileName)
	org := inferOrganization(in.FileName)
	year := inferYear(in.FileName, time.Now().Year())
	category := in.Category
	if category == "" {
		category = models.CategoryExam
	}
	doc := models.Document{
		Title:              title,
		Category:           category,
		SourceOrganization: org,
		Year:               year,
		SourceURL:          in.PublicURL,
		Processed:          true,
		Metadata: map[string]string{
			"archive_name": in.ArchiveName,
			"archive_path": in.ArchivePath,
			"filename":     in.FileName,
		},
	}
	stored, existed, err := a.documentRepo.CreateOrFetch(ctx, doc)
	if err != nil {
		return RegisterDocumentOutput{}, err
	}
	return RegisterDocumentOutput{
		DocumentID:   stored.DocumentID,
		Title:        stored.Title,
		Organization: stored.SourceOrganization,
		Year:         stored.Year,
		Existed:      existed,
	}, nil
}

func (a *Activities) ChunkTextActivity(ctx context.Context, in ChunkTextInput) (ChunkTextOutput, error) {
	_ = ctx
	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.ChunkMaxTokens
	}
	overlap := in.Overlap
	if overlap <= 0 {
		overlap = a.cfg.ChunkOverlap
	}
	return ChunkTextOutput{Chunks: util.ChunkText(in.Text, maxTokens, overlap)}, nil
}

// IndexChunksActivity embeds and persists a document's chunks one at a
// time. Existing chunk rows are replaced first so re-ingesting a title
// stays idempotent. A failed embedding is logged and skipped; a partially
// embedded document is acceptable.
func (a *Activities) IndexChunksActivity(ctx context.Context, in IndexChunksInput) (IndexChunksOutput, error) {
	if err := a.chunkRepo.DeleteByDocument(ctx, in.DocumentID); err != nil {
		return IndexChunksOutput{}, err
	}
	embedder := a.providers.Embedder()
	out := IndexChunksOutput{}
	total := len(in.Chunks)
	for i, content := range in.Chunks {
		vectors, info, err := embedder.Embed(ctx, providers.EmbedRequest{
			Operation: "embed_chunk",
			Inputs:    []string{content},
			Dimension: a.cfg.EmbedDim,
		})
		a.logUsage(ctx, "embed_chunk", in.DocumentID, info, err, len(content))
		var literal *string
		if err != nil || len(vectors) == 0 {
			log.Printf("embed chunk %d/%d for document %s failed: %v", i+1, total, in.DocumentID, err)
			out.Failed++
		} else {
			lit := vector.ToLiteral(vectors[0])
			literal = &lit
		}
		chunk := models.Chunk{
			DocumentID: in.DocumentID,
			ChunkIndex: i,
			Content:    content,
			Metadata: map[string]string{
				"filename":     in.FileName,
				"organization": in.Organization,
				"year":         fmt.Sprintf("%d", in.Year),
				"chunk_index":  fmt.Sprintf("%d", i),
				"chunk_total":  fmt.Sprintf("%d", total),
			},
		}
		if _, err := a.chunkRepo.Insert(ctx, chunk, literal); err != nil {
			log.Printf("persist chunk %d/%d for document %s failed: %v", i+1, total, in.DocumentID, err)
			out.Failed++
			continue
		}
		if literal != nil {
			out.Indexed++
		}
	}
	return out, nil
}

func (a *Activities) ExtractQuestionsActivity(ctx context.Context, in ExtractQuestionsInput) (ExtractQuestionsOutput, error) {
	text := questions.TruncateForPrompt(in.Text, a.cfg.ExtractCharBudget)
	system, user := questions.ExtractionPrompt(in.Category, text, a.cfg.MaxQuestionsPerDoc)
	resp, info, err := a.providers.Completor().Complete(ctx, providers.CompletionRequest{
		Operation: "extract_questions",
		System:    system,
		User:      user,
	})
	a.logUsage(ctx, "extract_questions", in.DocumentID, info, err, len(user))
	if err != nil {
		return ExtractQuestionsOutput{}, fmt.Errorf("question extraction call: %w", err)
	}
	return ExtractQuestionsOutput{Candidates: questions.ParseCandidates(resp.Text, a.cfg.MaxQuestionsPerDoc)}, nil
}

// SaveQuestionsActivity runs the rule engine over the candidates and
// persists the survivors. Duplicate stems are skipped without counting
// against the batch; everything else that fails a rule is rejected.
func (a *Activities) SaveQuestionsActivity(ctx context.Context, in SaveQuestionsInput) (SaveQuestionsOutput, error) {
	out := SaveQuestionsOutput{RejectedByReason: map[string]int{}}
	seen := map[string]bool{}
	stemExists := func(stem string) bool {
		if seen[stem] {
			return true
		}
		exists, err := a.questionRepo.StemExists(ctx, stem)
		if err != nil {
			log.Printf("stem lookup failed, treating as new: %v", err)
			return false
		}
		return exists
	}
	for _, c := range in.Candidates {
		verdict := questions.Validate(c, stemExists)
		switch verdict.Outcome {
		case questions.Rejected:
			out.Rejected++
			out.RejectedByReason[verdict.Reason]++
		case questions.Skipped:
			continue
		case questions.Accepted:
			v := verdict.Candidate
			rec := models.QuestionRecord{
				DocumentID:    in.DocumentID,
				Stem:          v.Stem,
				OptionA:       v.OptionA,
				OptionB:       v.OptionB,
				OptionC:       v.OptionC,
				OptionD:       v.OptionD,
				OptionE:       v.OptionE,
				CorrectOption: v.CorrectOption,
				Explanation:   v.Explanation,
				SubjectArea:   v.SubjectArea,
			}
			if _, err := a.questionRepo.Insert(ctx, rec); err != nil {
				return out, err
			}
			seen[v.Stem] = true
			out.Saved++
		}
	}
	return out, nil
}

// AutoFixActivity re-audits a document's stored questions and asks the
// model to repair the flagged ones in batches, looping until the audit
// comes back clean or the pass limit is hit. Flagged reports the first
// pass only. Batch-level model failures are logged and skipped.
func (a *Activities) AutoFixActivity(ctx context.Context, in AutoFixInput) (AutoFixOutput, error) {
	out := AutoFixOutput{}
	grounding, err := a.groundingChunks(ctx, in.DocumentID)
	if err != nil {
		log.Printf("load grounding chunks for %s failed: %v", in.DocumentID, err)
	}
	maxPasses := a.cfg.AutoFixMaxPasses
	if maxPasses <= 0 {
		maxPasses = 1
	}
	for pass := 0; pass < maxPasses; pass++ {
		records, err := a.questionRepo.ListByDocument(ctx, in.DocumentID)
		if err != nil {
			return out, err
		}
		flagged := questions.AuditAll(records)
		if pass == 0 {
			out.Flagged = len(flagged)
		}
		if len(flagged) == 0 {
			break
		}
		for _, batch := range questions.BatchFlagged(flagged, a.cfg.AutoFixBatchSize) {
			system, user := questions.RepairPrompt(batch, grounding)
			resp, info, err := a.providers.Completor().Complete(ctx, providers.CompletionRequest{
				Operation: "repair_questions",
				System:    system,
				User:      user,
			})
			a.logUsage(ctx, "repair_questions", in.DocumentID, info, err, len(user))
			if err != nil {
				log.Printf("repair batch for document %s failed: %v", in.DocumentID, err)
				continue
			}
			for _, fix := range questions.ParseFixes(resp.Text) {
				idx := *fix.Index
				if idx < 0 || idx >= len(batch) {
					continue
				}
				updated := questions.ApplyFix(batch[idx].Record, fix)
				if err := a.questionRepo.Update(ctx, updated); err != nil {
					log.Printf("persist repair for question %s failed: %v", updated.QuestionID, err)
					continue
				}
				out.Repaired++
			}
		}
	}
	return out, nil
}

const groundingCharBudget = 4000

func (a *Activities) groundingChunks(ctx context.Context, documentID string) ([]string, error) {
	chunks, err := a.chunkRepo.ListByDocument(ctx, documentID, a.cfg.AutoFixContextDocs)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(chunks))
	remaining := groundingCharBudget
	for _, c := range chunks {
		if remaining <= 0 {
			break
		}
		content := c.Content
		if len(content) > remaining {
			content = content[:remaining]
		}
		out = append(out, content)
		remaining -= len(content)
	}
	return out, nil
}

func (a *Activities) ConsistencySyncActivity(ctx context.Context) (SyncOutput, error) {
	report, err := a.syncRepo.Reconcile(ctx)
	if err != nil {
		return SyncOutput{}, err
	}
	return SyncOutput{Report: report}, nil
}

// NotifyActivity posts aggregate counts to the configured webhook. Doing
// nothing when no webhook is configured is fine; delivery is best-effort.
func (a *Activities) NotifyActivity(ctx context.Context, in NotifyInput) error {
	if a.cfg.NotifyWebhookURL == "" {
		return nil
	}
	payload, _ := json.Marshal(map[string]int{
		"processed_files":     in.ProcessedFiles,
		"questions_generated": in.QuestionsGenerated,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.NotifyWebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}

func (a *Activities) logUsage(ctx context.Context, operation, documentID string, info providers.ProviderInfo, callErr error, inputChars int) {
	status := "ok"
	errType := ""
	if callErr != nil {
		status = "failed"
		errType = string(providers.ClassifyError(callErr))
	}
	rec := storage.UsageRecord{
		CallID:     uuid.NewString(),
		Operation:  operation,
		DocumentID: documentID,
		Provider:   info.Name,
		Model:      info.Model,
		Status:     status,
		ErrorType:  errType,
		InputChars: inputChars,
	}
	if err := a.usageRepo.Insert(ctx, rec); err != nil {
		log.Printf("record usage for %s failed: %v", operation, err)
	}
}
