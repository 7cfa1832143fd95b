package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"curebird/internal/activities"
	"curebird/internal/analysis"
	"curebird/internal/app"
	"curebird/internal/config"
	"curebird/internal/extract"
	"curebird/internal/util"
	"curebird/internal/workflows"
)

// maxJobDocumentBytes keeps job inputs under Temporal's payload size limit.
const maxJobDocumentBytes = 2 << 20

// WorkflowClient is the part of the Temporal client the job endpoints use.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) tclient.WorkflowRun
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
}

type Server struct {
	cfg      config.Config
	app      *app.App
	temporal WorkflowClient
	logger   zerolog.Logger
}

// NewServer serves a's pipeline and assistant. tc may be nil, in which case
// the job endpoints answer 503.
func NewServer(a *app.App, tc WorkflowClient) *Server {
	return &Server{
		cfg:      a.Config,
		app:      a,
		temporal: tc,
		logger:   a.Logger.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/analyzer/process", s.handleProcess)
	mux.HandleFunc("POST /api/analyzer/jobs", s.handleStartJob)
	mux.HandleFunc("GET /api/analyzer/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /api/health-assistant/chat", s.handleChat)
	mux.HandleFunc("POST /api/health-assistant/clear", s.handleClear)
	mux.HandleFunc("GET /api/health-assistant/context", s.handleContext)
	mux.HandleFunc("POST /api/generate-summary", s.handleGenerateSummary)
	return withCORS(s.withRequestLog(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "temporal": s.temporal != nil})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readUpload(w, r)
	if err != nil {
		writeErr(w, uploadStatus(err), err)
		return
	}
	res, err := s.app.Pipeline.Run(r.Context(), doc)
	if err != nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("analysis abandoned: %w", err))
		return
	}
	writeJSON(w, resultStatus(res), res)
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, errJobsDisabled)
		return
	}
	doc, err := s.readUpload(w, r)
	if err != nil {
		writeErr(w, uploadStatus(err), err)
		return
	}
	if len(doc.Data) > maxJobDocumentBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: background jobs take at most %d bytes", util.ErrDocumentTooLarge, maxJobDocumentBytes))
		return
	}
	if doc.Kind() == extract.KindUnknown {
		writeJSON(w, http.StatusUnsupportedMediaType, analysis.UnsupportedResult())
		return
	}
	jobID := "analysis-" + uuid.NewString()
	run, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       jobID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.DocumentAnalysisWorkflow, workflows.DocumentAnalysisInput{
		JobID:    jobID,
		Document: activities.DocumentPayload{Name: doc.Name, MediaType: doc.MediaType, Data: doc.Data},
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("start workflow: %w", err))
		return
	}
	s.logger.Info().Str("job_id", run.GetID()).Str("run_id", run.GetRunID()).Str("document", doc.Name).Msg("job.started")
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": run.GetID(), "run_id": run.GetRunID(), "status": "processing"})
}

// handleGetJob reports progress for running jobs and the Result once the
// workflow has completed.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, errJobsDisabled)
		return
	}
	jobID := r.PathValue("id")
	desc, err := s.temporal.DescribeWorkflowExecution(r.Context(), jobID, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	state := desc.GetWorkflowExecutionInfo().GetStatus()
	switch state {
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		var res analysis.Result
		if err := s.temporal.GetWorkflow(r.Context(), jobID, "").Get(r.Context(), &res); err != nil {
			writeErr(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "status": "completed", "result": res})
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		var st workflows.AnalysisStatus
		val, err := s.temporal.QueryWorkflow(r.Context(), jobID, "", workflows.QueryGetAnalysisStatus)
		if err == nil {
			err = val.Get(&st)
		}
		if err != nil {
			writeErr(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "status": "processing", "progress": st})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "status": "failed", "workflow_status": state.String()})
	}
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	MedicalContext string `json:"medical_context"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	res := s.app.Assistant.GenerateResponse(r.Context(), req.ConversationID, req.Message, req.MedicalContext)
	switch {
	case res.Success:
		writeJSON(w, http.StatusOK, res)
	case res.Error == "empty_message":
		writeJSON(w, http.StatusBadRequest, res)
	default:
		writeJSON(w, http.StatusBadGateway, res)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("conversation_id is required"))
		return
	}
	cleared := s.app.Assistant.ClearConversation(req.ConversationID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": cleared})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	view := s.app.Diseases.View(r.Context())
	if !view.Success {
		writeJSON(w, http.StatusServiceUnavailable, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGenerateSummary accepts record texts as JSON {"records": [...]} or
// as a multipart form with repeated "records" fields and "files" uploads.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	var (
		texts []string
		docs  []extract.Document
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit())
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeErr(w, uploadStatus(err), fmt.Errorf("invalid multipart form: %w", err))
			return
		}
		texts = r.MultipartForm.Value["records"]
		for _, fh := range r.MultipartForm.File["files"] {
			doc, err := readPart(fh)
			if err != nil {
				writeErr(w, http.StatusBadRequest, err)
				return
			}
			docs = append(docs, doc)
		}
	} else {
		var req struct {
			Records []string `json:"records"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		texts = req.Records
	}
	summary := s.app.History.SummarizeHistory(r.Context(), texts, docs)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": summary})
}

var (
	errJobsDisabled = errors.New("background jobs are not configured")
	errNoFile       = fmt.Errorf("no file provided: %w", util.ErrEmptyDocument)
)

func (s *Server) uploadLimit() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (extract.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadLimit())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return extract.Document{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return extract.Document{}, errNoFile
	}
	return readPart(files[0])
}

func readPart(fh *multipart.FileHeader) (extract.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Document{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return extract.Document{}, errNoFile
	}
	return extract.NewDocument(fh.Filename, fh.Header.Get("Content-Type"), data), nil
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, util.ErrDocumentTooLarge) || strings.Contains(err.Error(), "request body too large") {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func resultStatus(res analysis.Result) int {
	switch res.Status {
	case analysis.StatusUnsupported:
		return http.StatusUnsupportedMediaType
	case analysis.StatusNotMedical:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

// toAPIError maps a status to a user-safe message. Raw error text is never
// returned to clients.
func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "CB-API-4000"

	switch {
	case status == http.StatusServiceUnavailable:
		code = "CB-API-5030"
		msg = "Service temporarily unavailable. Please retry shortly."
		if errors.Is(err, errJobsDisabled) {
			msg = "Background analysis jobs are not enabled on this server."
		}
	case status == http.StatusBadGateway:
		code = "CB-API-5020"
		msg = "Upstream service unavailable. Retry shortly."
	case status >= 500:
		code = "CB-API-5000"
		msg = "Internal server error. Please retry or check service logs."
	case status == http.StatusBadRequest:
		code = "CB-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "CB-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusRequestEntityTooLarge:
		code = "CB-API-4013"
		msg = "Uploaded file is too large."
	}

	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case errors.Is(err, util.ErrEmptyDocument):
			msg = "No file was uploaded."
		case errors.Is(err, util.ErrDocumentTooLarge):
			msg = "Document is too large for background analysis. Use the synchronous endpoint."
		case strings.Contains(low, "conversation_id is required"):
			msg = "A conversation id is required."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}
	return apiError{Code: code, Message: msg}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Info().Str("req_id", reqID).Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", rec.status).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("http.request")
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
