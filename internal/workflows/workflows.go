package workflows

import (
	"errors"
	"strings"
	"time"

	"exambank/internal/activities"
	"exambank/internal/extract"
	"exambank/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetBatchProgress = "GetBatchProgress"

// BatchIngestWorkflow processes one upload end to end, strictly
// sequentially: expand the blob, then per file extract, register, chunk,
// embed, extract questions, validate, and repair; finally reconcile the
// database and notify. Per-file failures land in the errors list; only an
// unsupported format or an unopenable container fails the whole batch.
func BatchIngestWorkflow(ctx workflow.Context, input BatchIngestInput) (models.IngestResponse, error) {
	progress := BatchProgress{FileName: input.FileName}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchProgress, error) {
		return progress, nil
	}); err != nil {
		return models.IngestResponse{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	progress.CurrentStep = "fetch_upload"
	var fetched activities.FetchUploadOutput
	if err := workflow.ExecuteActivity(ctx, "FetchUploadActivity", activities.FetchUploadInput{
		DownloadURL: input.DownloadURL,
		FileName:    input.FileName,
	}).Get(ctx, &fetched); err != nil {
		return fatal("could not fetch upload: " + rootMessage(err)), nil
	}

	progress.CurrentStep = "expand_upload"
	var expanded activities.ExpandUploadOutput
	if err := workflow.ExecuteActivity(ctx, "ExpandUploadActivity", activities.ExpandUploadInput{
		Path:     fetched.Path,
		FileName: input.FileName,
	}).Get(ctx, &expanded); err != nil {
		return fatal(rootMessage(err)), nil
	}
	progress.TotalFiles = len(expanded.Files)

	results := models.BatchResults{Errors: []string{}}
	for _, file := range expanded.Files {
		progress.CurrentFile = file.Name
		r := processFile(ctx, &progress, input, file)
		results = mergeFileResult(results, r)
		progress.DoneFiles++
	}

	progress.CurrentStep = "consistency_sync"
	var sync activities.SyncOutput
	if err := workflow.ExecuteActivity(ctx, "ConsistencySyncActivity").Get(ctx, &sync); err != nil {
		logger.Warn("consistency sync failed", "error", err)
	} else {
		results.DBSync = &sync.Report
	}

	if results.ProcessedFiles > 0 {
		progress.CurrentStep = "notify"
		if err := workflow.ExecuteActivity(ctx, "NotifyActivity", activities.NotifyInput{
			ProcessedFiles:     results.ProcessedFiles,
			QuestionsGenerated: results.QuestionsGenerated,
		}).Get(ctx, nil); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}
	progress.CurrentStep = "done"
	return models.IngestResponse{Success: true, Results: &results}, nil
}

// processFile runs the per-file pipeline and returns its isolated result.
// Nothing in here aborts the batch.
func processFile(ctx workflow.Context, progress *BatchProgress, input BatchIngestInput, file activities.FileRef) fileResult {
	logger := workflow.GetLogger(ctx)
	r := fileResult{}

	progress.CurrentStep = "extract_text"
	var text activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{
		Path: file.Path,
		Name: file.Name,
	}).Get(ctx, &text); err != nil {
		if isNoTextError(err) {
			r.errors = append(r.errors, extract.UnreadableWarning(file.Name))
		} else {
			r.errors = append(r.errors, "extraction failed for "+file.Name+": "+rootMessage(err))
		}
		return r
	}

	progress.CurrentStep = "register_document"
	var doc activities.RegisterDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "RegisterDocumentActivity", activities.RegisterDocumentInput{
		FileName:    file.Name,
		ArchiveName: input.FileName,
		ArchivePath: file.ArchivePath,
		Category:    input.Category,
		PublicURL:   input.PublicURL,
	}).Get(ctx, &doc); err != nil {
		r.errors = append(r.errors, "could not register "+file.Name+": "+rootMessage(err))
		return r
	}

	progress.CurrentStep = "chunk_text"
	var chunks activities.ChunkTextOutput
	if err := workflow.ExecuteActivity(ctx, "ChunkTextActivity", activities.ChunkTextInput{
		Text: text.Text,
	}).Get(ctx, &chunks); err != nil {
		r.errors = append(r.errors, "chunking failed for "+file.Name+": "+rootMessage(err))
		return r
	}

	progress.CurrentStep = "index_chunks"
	var indexed activities.IndexChunksOutput
	if err := workflow.ExecuteActivity(ctx, "IndexChunksActivity", activities.IndexChunksInput{
		DocumentID:   doc.DocumentID,
		FileName:     file.Name,
		Organization: doc.Organization,
		Year:         doc.Year,
		Chunks:       chunks.Chunks,
	}).Get(ctx, &indexed); err != nil {
		logger.Warn("chunk indexing failed", "file", file.Name, "error", err)
	} else {
		r.chunks = indexed.Indexed
	}

	r.processed = true

	// A reused document already has its question bank; only the embedding
	// path runs again for it.
	if doc.Existed {
		return r
	}

	progress.CurrentStep = "extract_questions"
	var extracted activities.ExtractQuestionsOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractQuestionsActivity", activities.ExtractQuestionsInput{
		DocumentID: doc.DocumentID,
		Category:   input.Category,
		Text:       text.Text,
	}).Get(ctx, &extracted); err != nil {
		r.errors = append(r.errors, "question extraction failed for "+file.Name+": "+rootMessage(err))
		return r
	}

	progress.CurrentStep = "save_questions"
	var saved activities.SaveQuestionsOutput
	if err := workflow.ExecuteActivity(ctx, "SaveQuestionsActivity", activities.SaveQuestionsInput{
		DocumentID: doc.DocumentID,
		Candidates: extracted.Candidates,
	}).Get(ctx, &saved); err != nil {
		r.errors = append(r.errors, "saving questions failed for "+file.Name+": "+rootMessage(err))
		return r
	}
	r.saved = saved.Saved
	r.rejected = saved.Rejected

	if saved.Saved > 0 {
		progress.CurrentStep = "auto_fix"
		var fixed activities.AutoFixOutput
		if err := workflow.ExecuteActivity(ctx, "AutoFixActivity", activities.AutoFixInput{
			DocumentID: doc.DocumentID,
		}).Get(ctx, &fixed); err != nil {
			logger.Warn("auto-fix pass failed", "file", file.Name, "error", err)
		} else {
			r.autoFixed = fixed.Flagged
		}
	}
	return r
}

// mergeFileResult folds one file's result into the batch totals. Pure, so
// moving to parallel file processing later only needs a merge order.
func mergeFileResult(acc models.BatchResults, r fileResult) models.BatchResults {
	if r.processed {
		acc.ProcessedFiles++
	}
	acc.QuestionsGenerated += r.saved
	acc.RAGChunks += r.chunks
	acc.QuestionsRejected += r.rejected
	acc.QuestionsAutoFixed += r.autoFixed
	acc.Errors = append(acc.Errors, r.errors...)
	return acc
}

func fatal(message string) models.IngestResponse {
	return models.IngestResponse{Success: false, Error: message}
}

func isNoTextError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no extractable text")
}

// rootMessage unwraps temporal's application error chain down to the
// original message.
func rootMessage(err error) string {
	msg := err.Error()
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg = e.Error()
	}
	return msg
}
