package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/asharma-dev/statement-pipeline/internal/api/middleware"
	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/config"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/gcsstore"
	"github.com/asharma-dev/statement-pipeline/internal/jobs"
	"github.com/asharma-dev/statement-pipeline/internal/ledger"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
	"github.com/asharma-dev/statement-pipeline/internal/normalize"
	"github.com/asharma-dev/statement-pipeline/internal/parser"
	"github.com/asharma-dev/statement-pipeline/internal/pipeline"
)

// Handlers carries the dependencies of the HTTP API.
type Handlers struct {
	cfg         config.Config
	chain       *parser.Chain
	categorizer *categorize.Categorizer
	ledger      ledger.Ledger
	publisher   jobs.Publisher
	jobStore    jobs.JobStore
	gcs         *gcsstore.Store
}

// New creates the handler set. publisher, jobStore and gcs may be nil;
// the async endpoints then report 503.
func New(cfg config.Config, chain *parser.Chain, cat *categorize.Categorizer, led ledger.Ledger, publisher jobs.Publisher, jobStore jobs.JobStore, gcs *gcsstore.Store) *Handlers {
	return &Handlers{
		cfg:         cfg,
		chain:       chain,
		categorizer: cat,
		ledger:      led,
		publisher:   publisher,
		jobStore:    jobStore,
		gcs:         gcs,
	}
}

// Router registers all routes on a fresh mux.
func (h *Handlers) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/statements/upload", h.UploadStatement)
	mux.HandleFunc("POST /api/statements/import", h.ImportTransactions)
	mux.HandleFunc("POST /api/statements/parse", h.EnqueueParse)
	mux.HandleFunc("GET /api/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)
	return mux
}

// Health responds to liveness probes.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accountFrom resolves the account identity for a request.
func accountFrom(r *http.Request) string {
	if id := r.Header.Get("X-Account-ID"); id != "" {
		return id
	}
	if id := r.URL.Query().Get("account"); id != "" {
		return id
	}
	return "default"
}

// UploadStatement accepts a multipart statement file, runs the
// ingestion pipeline synchronously and returns the ParseResult.
// Degraded results are still 200; the caller checks the flag.
func (h *Handlers) UploadStatement(w http.ResponseWriter, r *http.Request) {
	ctx := domain.WithAccount(r.Context(), accountFrom(r))

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+1)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "missing multipart field 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	pipe := pipeline.NewStatementPipeline(h.cfg.MaxUploadBytes, h.chain, h.categorizer, h.ledger)
	result, err := pipe.Run(ctx, header.Filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrExtractionFailure) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("statement parse failed")
		middleware.WriteError(w, http.StatusInternalServerError, "statement parse failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// importRequest is the body of POST /api/statements/import.
type importRequest struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// ImportTransactions commits a transaction batch to the ledger with
// per-transaction isolation and returns the indexed import report.
func (h *Handlers) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := domain.WithAccount(r.Context(), accountFrom(r))

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	txs := make([]domain.Transaction, len(req.Transactions))
	for i, tx := range req.Transactions {
		if tx.RawDate == "" {
			tx.RawDate = tx.DateISO
		}
		tx.DateISO = ""
		txs[i] = normalize.Apply(tx)
	}

	result := ledger.ImportBatch(ctx, h.ledger, txs)
	middleware.WriteJSON(w, http.StatusOK, result)
}

// parseRequest is the body of POST /api/statements/parse.
type parseRequest struct {
	GCSURI string `json:"gcs_uri"`
}

// EnqueueParse schedules an asynchronous parse of a GCS-stored
// statement.
func (h *Handlers) EnqueueParse(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "async parsing is not configured")
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if _, _, err := gcsstore.SplitURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ParseStatementJob{
		AccountID: accountFrom(r),
		GCSURI:    req.GCSURI,
		Filename:  gcsstore.Filename(req.GCSURI),
	}
	if err := h.publisher.PublishParseStatement(r.Context(), job); err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("enqueue parse: %v", err))
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob returns the state of one job.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobStore == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "job tracking is not configured")
		return
	}

	job, err := h.jobStore.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs returns jobs, optionally filtered by status and account.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobStore == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "job tracking is not configured")
		return
	}

	filter := jobs.JobFilter{
		AccountID: r.URL.Query().Get("account"),
		Status:    jobs.JobStatus(r.URL.Query().Get("status")),
		Limit:     50,
	}
	list, err := h.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"jobs": list})
}
