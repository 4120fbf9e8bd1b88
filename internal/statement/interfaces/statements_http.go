package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ctacte-backend/internal/audit"
	"ctacte-backend/internal/observability/metrics"
	"ctacte-backend/internal/statement/application"
	statement "ctacte-backend/internal/statement/domain"
	"ctacte-backend/internal/statement/infrastructure/excel"
)

// MovementHistory supplies a customer's movement rows for the daily path.
type MovementHistory interface {
	HistoryByCustomer(ctx context.Context, customerName string, cutoff time.Time) ([]statement.Movement, error)
}

// StatementHandler handles the statement generation APIs.
type StatementHandler struct {
	batch        *application.BatchService
	history      MovementHistory
	clock        statement.Clock
	uploadDir    string
	zipName      string
	lookbackDays int
	auditLogger  audit.Logger
	logger       *logrus.Logger
}

// NewStatementHandler constructs a handler.
func NewStatementHandler(batch *application.BatchService, history MovementHistory, clock statement.Clock, cfg application.Config, auditLogger audit.Logger, logger *logrus.Logger) (*StatementHandler, error) {
	if batch == nil {
		return nil, errors.New("statement handler: nil batch service")
	}
	if clock == nil {
		clock = statement.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StatementHandler{
		batch:        batch,
		history:      history,
		clock:        clock,
		uploadDir:    cfg.UploadDir,
		zipName:      cfg.ZipName,
		lookbackDays: cfg.LookbackDays,
		auditLogger:  auditLogger,
		logger:       logger,
	}, nil
}

// ServeHTTP handles routes under /api/v1/statements.
func (h *StatementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/statements/upload":
		h.handleUpload(w, r)
	case "/api/v1/statements/generate":
		h.handleGenerate(w, r)
	case "/api/v1/statements/json":
		h.handleRecords(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *StatementHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() { metrics.ObserveUpload(result, time.Since(start)) }()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		result = metrics.ResultError
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		result = metrics.ResultError
		respondError(w, http.StatusBadRequest, "no file received")
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		result = metrics.ResultError
		respondError(w, http.StatusBadRequest, "only .xlsx uploads are accepted")
		return
	}

	allowList, err := parseCustomerList(firstNonEmpty(r.FormValue("customers"), r.FormValue("razonesSociales")))
	if err != nil {
		result = metrics.ResultError
		respondError(w, http.StatusBadRequest, "invalid customers list")
		return
	}

	savedPath, err := h.saveUpload(header.Filename, file)
	if err != nil {
		result = metrics.ResultError
		h.logger.WithError(err).Error("saving upload failed")
		respondError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	tableHeader, rows, err := excel.ReadTable(savedPath)
	if err != nil {
		result = metrics.ResultError
		h.respondBatchError(w, err)
		return
	}

	paths, err := h.batch.GenerateFromTable(r.Context(), tableHeader, rows, allowList)
	if err != nil {
		result = metrics.ResultError
		h.respondBatchError(w, err)
		return
	}
	if len(paths) == 0 {
		result = metrics.ResultError
		respondError(w, http.StatusUnprocessableEntity, "no PDFs generated")
		return
	}

	h.logAudit(r, "statements.upload", header.Filename, len(paths), map[string]any{
		"customers": allowList,
	})
	h.streamZip(w, paths)
}

func (h *StatementHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	var req struct {
		Customers []string `json:"customers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Customers) == 0 {
		respondError(w, http.StatusBadRequest, "customers is required")
		return
	}

	names := append([]string(nil), req.Customers...)
	sort.Strings(names)
	cutoff := h.clock.Now().AddDate(0, 0, -h.lookbackDays)

	var movements []statement.Movement
	for _, name := range names {
		rows, err := h.history.HistoryByCustomer(r.Context(), name, cutoff)
		if err != nil {
			h.logger.WithField("customer", name).WithError(err).Error("movement query failed")
			respondError(w, http.StatusInternalServerError, "movement query failed")
			return
		}
		movements = append(movements, rows...)
	}

	paths, err := h.batch.GenerateAging(r.Context(), movements)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}
	if len(paths) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "no PDFs generated")
		return
	}

	h.logAudit(r, "statements.generate", strings.Join(names, ","), len(paths), map[string]any{
		"customers": names,
	})
	h.streamZip(w, paths)
}

func (h *StatementHandler) handleRecords(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	var req struct {
		Data map[string][]map[string]any `json:"data"`
	}
	if err := decoder.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	records := make(map[string][]statement.Record, len(req.Data))
	for code, rows := range req.Data {
		converted := make([]statement.Record, 0, len(rows))
		for _, row := range rows {
			converted = append(converted, stringifyRecord(row))
		}
		records[code] = converted
	}

	paths, err := h.batch.GenerateFromRecords(r.Context(), records)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}
	if len(paths) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "no PDFs generated")
		return
	}

	h.logAudit(r, "statements.json", fmt.Sprintf("%d customers", len(records)), len(paths), nil)
	h.streamZip(w, paths)
}

func (h *StatementHandler) saveUpload(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.uploadDir, statement.SanitizeName(filepath.Base(name)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

func (h *StatementHandler) streamZip(w http.ResponseWriter, paths []string) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.zipName))
	if err := writeZip(w, paths); err != nil {
		h.logger.WithError(err).Error("zip streaming failed")
	}
}

func (h *StatementHandler) respondBatchError(w http.ResponseWriter, err error) {
	var schemaErr *statement.SchemaError
	switch {
	case errors.Is(err, statement.ErrNoData):
		respondError(w, http.StatusBadRequest, "no input data")
	case errors.As(err, &schemaErr):
		respondError(w, http.StatusBadRequest, schemaErr.Error())
	default:
		h.logger.WithError(err).Error("statement batch failed")
		respondError(w, http.StatusInternalServerError, "statement generation failed")
	}
}

func (h *StatementHandler) logAudit(r *http.Request, action, resource string, artifacts int, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var metadata json.RawMessage
	if meta != nil {
		metadata, _ = json.Marshal(meta)
	}
	entry := audit.Entry{
		Action:    action,
		Resource:  resource,
		Artifacts: artifacts,
		Metadata:  metadata,
		IP:        audit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.WithError(err).Warn("audit log failed")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func parseCustomerList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringifyRecord(row map[string]any) statement.Record {
	record := make(statement.Record, len(row))
	for key, value := range row {
		switch v := value.(type) {
		case nil:
			record[key] = ""
		case string:
			record[key] = v
		case json.Number:
			record[key] = v.String()
		case bool:
			if v {
				record[key] = "true"
			} else {
				record[key] = "false"
			}
		default:
			record[key] = fmt.Sprint(v)
		}
	}
	return record
}
