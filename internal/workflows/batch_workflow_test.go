package workflows

import (
	"context"
	"errors"
	"testing"

	"exambank/internal/activities"
	"exambank/internal/models"
	"exambank/internal/questions"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newBatchEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BatchIngestWorkflow)
	registerActivityName(env, "FetchUploadActivity", func(context.Context, activities.FetchUploadInput) (activities.FetchUploadOutput, error) {
		return activities.FetchUploadOutput{}, nil
	})
	registerActivityName(env, "ExpandUploadActivity", func(context.Context, activities.ExpandUploadInput) (activities.ExpandUploadOutput, error) {
		return activities.ExpandUploadOutput{}, nil
	})
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "RegisterDocumentActivity", func(context.Context, activities.RegisterDocumentInput) (activities.RegisterDocumentOutput, error) {
		return activities.RegisterDocumentOutput{}, nil
	})
	registerActivityName(env, "ChunkTextActivity", func(context.Context, activities.ChunkTextInput) (activities.ChunkTextOutput, error) {
		return activities.ChunkTextOutput{}, nil
	})
	registerActivityName(env, "IndexChunksActivity", func(context.Context, activities.IndexChunksInput) (activities.IndexChunksOutput, error) {
		return activities.IndexChunksOutput{}, nil
	})
	registerActivityName(env, "ExtractQuestionsActivity", func(context.Context, activities.ExtractQuestionsInput) (activities.ExtractQuestionsOutput, error) {
		return activities.ExtractQuestionsOutput{}, nil
	})
	registerActivityName(env, "SaveQuestionsActivity", func(context.Context, activities.SaveQuestionsInput) (activities.SaveQuestionsOutput, error) {
		return activities.SaveQuestionsOutput{}, nil
	})
	registerActivityName(env, "AutoFixActivity", func(context.Context, activities.AutoFixInput) (activities.AutoFixOutput, error) {
		return activities.AutoFixOutput{}, nil
	})
	registerActivityName(env, "ConsistencySyncActivity", func(context.Context) (activities.SyncOutput, error) {
		return activities.SyncOutput{}, nil
	})
	registerActivityName(env, "NotifyActivity", func(context.Context, activities.NotifyInput) error { return nil })
	return env
}

// A two-file container where the second file is an image-only scan: the
// readable file goes through the full pipeline, the unreadable one turns
// into a warning, and the batch still succeeds.
func TestBatchIngestWorkflowContainerPartialFailure(t *testing.T) {
	env := newBatchEnv(t)

	env.OnActivity("FetchUploadActivity", mock.Anything, mock.Anything).Return(activities.FetchUploadOutput{Path: "/tmp/batch.zip"}, nil)
	env.OnActivity("ExpandUploadActivity", mock.Anything, mock.Anything).Return(activities.ExpandUploadOutput{Files: []activities.FileRef{
		{Name: "usp_2019.pdf", ArchivePath: "provas/usp_2019.pdf", Path: "/tmp/f1.pdf"},
		{Name: "scanned.pdf", ArchivePath: "provas/scanned.pdf", Path: "/tmp/f2.pdf"},
	}}, nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{Path: "/tmp/f1.pdf", Name: "usp_2019.pdf"}).Return(activities.ExtractTextOutput{Text: "Question 1. A patient presents with chest pain."}, nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{Path: "/tmp/f2.pdf", Name: "scanned.pdf"}).Return(activities.ExtractTextOutput{}, errors.New("no extractable text"))
	env.OnActivity("RegisterDocumentActivity", mock.Anything, mock.Anything).Return(activities.RegisterDocumentOutput{DocumentID: "doc-1", Title: "usp 2019", Organization: "USP", Year: 2019}, nil)
	env.OnActivity("ChunkTextActivity", mock.Anything, mock.Anything).Return(activities.ChunkTextOutput{Chunks: []string{"c1", "c2", "c3", "c4"}}, nil)
	env.OnActivity("IndexChunksActivity", mock.Anything, mock.Anything).Return(activities.IndexChunksOutput{Indexed: 4}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, mock.Anything).Return(activities.ExtractQuestionsOutput{Candidates: make([]questions.Candidate, 5)}, nil)
	env.OnActivity("SaveQuestionsActivity", mock.Anything, mock.Anything).Return(activities.SaveQuestionsOutput{Saved: 3, Rejected: 2}, nil)
	env.OnActivity("AutoFixActivity", mock.Anything, activities.AutoFixInput{DocumentID: "doc-1"}).Return(activities.AutoFixOutput{Flagged: 1, Repaired: 1}, nil)
	env.OnActivity("ConsistencySyncActivity", mock.Anything).Return(activities.SyncOutput{Report: models.SyncReport{Documents: 1, Questions: 3, Embeddings: 4, Healthy: true}}, nil)
	env.OnActivity("NotifyActivity", mock.Anything, activities.NotifyInput{ProcessedFiles: 1, QuestionsGenerated: 3}).Return(nil)

	env.ExecuteWorkflow(BatchIngestWorkflow, BatchIngestInput{FileName: "batch.zip", DownloadURL: "https://example.com/batch.zip", Category: models.CategoryExam})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.IngestResponse
	require.NoError(t, env.GetWorkflowResult(&out))
	require.True(t, out.Success)
	require.NotNil(t, out.Results)
	require.Equal(t, 1, out.Results.ProcessedFiles)
	require.Equal(t, 3, out.Results.QuestionsGenerated)
	require.Equal(t, 4, out.Results.RAGChunks)
	require.Equal(t, 2, out.Results.QuestionsRejected)
	require.Equal(t, 1, out.Results.QuestionsAutoFixed)
	require.Len(t, out.Results.Errors, 1)
	require.Contains(t, out.Results.Errors[0], "scanned.pdf")
	require.Contains(t, out.Results.Errors[0], "no extractable text")
	require.NotNil(t, out.Results.DBSync)
	require.True(t, out.Results.DBSync.Healthy)
}

// Re-uploading a known title re-indexes embeddings but never re-runs the
// question path: the extraction and save activities must not be invoked.
func TestBatchIngestWorkflowReingestSkipsQuestionPath(t *testing.T) {
	env := newBatchEnv(t)

	env.OnActivity("FetchUploadActivity", mock.Anything, mock.Anything).Return(activities.FetchUploadOutput{Path: "/tmp/prova.pdf"}, nil)
	env.OnActivity("ExpandUploadActivity", mock.Anything, mock.Anything).Return(activities.ExpandUploadOutput{Files: []activities.FileRef{
		{Name: "prova.pdf", Path: "/tmp/prova.pdf"},
	}}, nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{Text: "same exam, uploaded again"}, nil)
	env.OnActivity("RegisterDocumentActivity", mock.Anything, mock.Anything).Return(activities.RegisterDocumentOutput{DocumentID: "doc-1", Existed: true}, nil)
	env.OnActivity("ChunkTextActivity", mock.Anything, mock.Anything).Return(activities.ChunkTextOutput{Chunks: []string{"c1"}}, nil)
	env.OnActivity("IndexChunksActivity", mock.Anything, mock.Anything).Return(activities.IndexChunksOutput{Indexed: 1}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, mock.Anything).Return(activities.ExtractQuestionsOutput{}, errors.New("question path must not run for an existing document"))
	env.OnActivity("ConsistencySyncActivity", mock.Anything).Return(activities.SyncOutput{Report: models.SyncReport{Healthy: true}}, nil)
	env.OnActivity("NotifyActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(BatchIngestWorkflow, BatchIngestInput{FileName: "prova.pdf", DownloadURL: "https://example.com/prova.pdf", Category: models.CategoryExam})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.IngestResponse
	require.NoError(t, env.GetWorkflowResult(&out))
	require.True(t, out.Success)
	require.Equal(t, 1, out.Results.ProcessedFiles)
	require.Equal(t, 1, out.Results.RAGChunks)
	require.Equal(t, 0, out.Results.QuestionsGenerated)
	require.Empty(t, out.Results.Errors)
}

// An upload in a format the pipeline does not understand fails the whole
// batch with success=false, before any per-file work happens.
func TestBatchIngestWorkflowUnsupportedFormatFailsBatch(t *testing.T) {
	env := newBatchEnv(t)

	env.OnActivity("FetchUploadActivity", mock.Anything, mock.Anything).Return(activities.FetchUploadOutput{Path: "/tmp/notes.docx"}, nil)
	env.OnActivity("ExpandUploadActivity", mock.Anything, mock.Anything).Return(activities.ExpandUploadOutput{}, errors.New("unsupported file format: notes.docx"))

	env.ExecuteWorkflow(BatchIngestWorkflow, BatchIngestInput{FileName: "notes.docx", DownloadURL: "https://example.com/notes.docx", Category: models.CategoryExam})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out models.IngestResponse
	require.NoError(t, env.GetWorkflowResult(&out))
	require.False(t, out.Success)
	require.Contains(t, out.Error, "unsupported file format")
	require.Nil(t, out.Results)
}
