package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exambank/internal/config"
	"exambank/internal/models"
	"exambank/internal/providers"
	"exambank/internal/storage"
	"exambank/internal/vector"
	"exambank/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg          config.Config
	db           *storage.DB
	documentRepo *storage.DocumentRepo
	questionRepo *storage.QuestionRepo
	searcher     *vector.Searcher
	providers    *providers.Manager
	temporal     tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:          cfg,
		db:           db,
		documentRepo: storage.NewDocumentRepo(db),
		questionRepo: storage.NewQuestionRepo(db),
		searcher:     vector.NewSearcher(db.Pool),
		providers:    pm,
		temporal:     tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/ingest/", s.handleIngestScoped)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleIngest runs the batch workflow synchronously and relays its
// structured result. success:false marks a whole-batch fatal condition;
// partial failures arrive inside results.errors with success:true.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("use POST"))
		return
	}
	var req struct {
		FileURL   string `json:"file_url"`
		FileName  string `json:"file_name"`
		PublicURL string `json:"public_url"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileURL == "" || req.FileName == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("file_url and file_name are required"))
		return
	}
	if req.Category == "" {
		req.Category = models.CategoryExam
	}

	run, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "ingest-" + uuid.NewString(),
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.BatchIngestWorkflow, workflows.BatchIngestInput{
		FileName:    req.FileName,
		DownloadURL: req.FileURL,
		PublicURL:   req.PublicURL,
		Category:    req.Category,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("start ingest: %w", err))
		return
	}
	var resp models.IngestResponse
	if err := run.Get(r.Context(), &resp); err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("ingest run: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleIngestScoped serves /ingest/{workflow_id}/progress by querying the
// running workflow; ingest itself is synchronous, so this is for callers
// polling from a second connection.
func (s *Server) handleIngestScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("use GET"))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/ingest/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "progress" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), parts[0], "", workflows.QueryGetBatchProgress)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("query batch progress: %w", err))
		return
	}
	var progress workflows.BatchProgress
	if err := resp.Get(&progress); err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("decode batch progress: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("use GET"))
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("q is required"))
		return
	}
	topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))

	vectors, _, err := s.providers.Embedder().Embed(r.Context(), providers.EmbedRequest{
		Operation: "embed_query",
		Inputs:    []string{query},
		Dimension: s.cfg.EmbedDim,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("embed query: %w", err))
		return
	}
	if len(vectors) == 0 {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("embed query: empty response"))
		return
	}
	results, err := s.searcher.SearchChunks(r.Context(), vectors[0], topK)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("use GET"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	docs, err := s.documentRepo.List(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDocumentScoped serves /documents/{id}/questions.
func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("use GET"))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/documents/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "questions" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	records, err := s.questionRepo.ListByDocument(r.Context(), parts[0])
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": records})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
