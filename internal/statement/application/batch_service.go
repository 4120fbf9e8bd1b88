package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"ctacte-backend/internal/observability/metrics"
	statement "ctacte-backend/internal/statement/domain"
)

// Renderer turns one customer statement into document bytes. The document
// date is the batch's logical clock reading, not wall time, so two runs over
// identical input produce byte-identical artifacts.
type Renderer interface {
	Render(stmt statement.Statement, docDate time.Time) ([]byte, error)
}

// BatchService drives the per-customer pipeline (prepare, classify, compose,
// write) across a full movement table. One run is synchronous and
// single-threaded; customers are independent of each other.
type BatchService struct {
	renderer Renderer
	outDir   string
	clock    statement.Clock
	logger   *logrus.Logger
}

// NewBatchService constructs a batch service writing artifacts under outDir.
func NewBatchService(renderer Renderer, outDir string, clock statement.Clock, logger *logrus.Logger) (*BatchService, error) {
	if renderer == nil {
		return nil, errors.New("batch service: nil renderer")
	}
	if outDir == "" {
		return nil, errors.New("batch service: empty output dir")
	}
	if clock == nil {
		clock = statement.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BatchService{renderer: renderer, outDir: outDir, clock: clock, logger: logger}, nil
}

type customerGroup struct {
	name string
	rows []statement.Movement
}

// GenerateFromTable runs the spreadsheet upload path: ledger classification,
// customers in their order of appearance in the source, optionally filtered
// by an allow-list of display names. A missing required column fails the
// whole batch here since all customers share one header.
func (s *BatchService) GenerateFromTable(ctx context.Context, header []string, rows [][]string, allowList []string) ([]string, error) {
	start := time.Now()
	movements, err := statement.ParseRows(header, rows)
	if err != nil {
		metrics.ObserveBatch(string(statement.ModeLedger), metrics.ResultError, time.Since(start))
		return nil, err
	}

	allowed := map[string]bool{}
	for _, name := range allowList {
		allowed[name] = true
	}

	var groups []customerGroup
	index := map[string]int{}
	for _, m := range movements {
		if len(allowList) > 0 && !allowed[m.CustomerName] {
			continue
		}
		i, ok := index[m.CustomerName]
		if !ok {
			i = len(groups)
			index[m.CustomerName] = i
			groups = append(groups, customerGroup{name: m.CustomerName})
		}
		groups[i].rows = append(groups[i].rows, m)
	}

	return s.run(ctx, groups, statement.ModeLedger, start)
}

// GenerateFromRecords runs the ad-hoc JSON path: per-customer record slices,
// ledger classification. Each customer's slice carries its own schema, so a
// missing column skips only that customer. Customers are processed in
// code order for determinism (the JSON object carries no order).
func (s *BatchService) GenerateFromRecords(ctx context.Context, records map[string][]statement.Record) ([]string, error) {
	start := time.Now()
	if len(records) == 0 {
		metrics.ObserveBatch(string(statement.ModeLedger), metrics.ResultError, time.Since(start))
		return nil, statement.ErrNoData
	}

	codes := make([]string, 0, len(records))
	for code := range records {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var groups []customerGroup
	for _, code := range codes {
		if len(records[code]) == 0 {
			s.logger.WithField("customer", code).Warn("no records for customer, skipping")
			metrics.IncCustomerSkipped("empty")
			continue
		}
		rows, err := statement.ParseRecords(code, records[code])
		if err != nil {
			s.logger.WithField("customer", code).WithError(err).Warn("skipping customer")
			metrics.IncCustomerSkipped("schema")
			continue
		}
		groups = append(groups, customerGroup{name: rows[0].CustomerName, rows: rows})
	}

	return s.run(ctx, groups, statement.ModeLedger, start)
}

// GenerateAging runs the daily query path: typed movements fresh from the
// database, aging classification, customers in alphabetical order.
func (s *BatchService) GenerateAging(ctx context.Context, movements []statement.Movement) ([]string, error) {
	start := time.Now()
	if len(movements) == 0 {
		metrics.ObserveBatch(string(statement.ModeAging), metrics.ResultError, time.Since(start))
		return nil, statement.ErrNoData
	}

	byName := map[string][]statement.Movement{}
	for _, m := range movements {
		byName[m.CustomerName] = append(byName[m.CustomerName], m)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]customerGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, customerGroup{name: name, rows: byName[name]})
	}

	return s.run(ctx, groups, statement.ModeAging, start)
}

func (s *BatchService) run(ctx context.Context, groups []customerGroup, mode statement.Mode, start time.Time) ([]string, error) {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		metrics.ObserveBatch(string(mode), metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("batch service: create output dir: %w", err)
	}

	now := s.clock.Now()
	paths := make([]string, 0, len(groups))
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			metrics.ObserveBatch(string(mode), metrics.ResultError, time.Since(start))
			return paths, err
		}
		path, ok := s.generateOne(group, mode, now)
		if ok {
			paths = append(paths, path)
		}
	}

	metrics.ObserveBatch(string(mode), metrics.ResultSuccess, time.Since(start))
	s.logger.WithFields(logrus.Fields{
		"mode":      string(mode),
		"customers": len(groups),
		"artifacts": len(paths),
	}).Info("statement batch finished")
	return paths, nil
}

func (s *BatchService) generateOne(group customerGroup, mode statement.Mode, now time.Time) (string, bool) {
	log := s.logger.WithField("customer", group.name)
	if group.name == "" {
		log.Warn("customer without display name, skipping")
		metrics.IncCustomerSkipped("unnamed")
		return "", false
	}

	rows := make([]statement.Movement, len(group.rows))
	copy(rows, group.rows)
	statement.SortMovements(rows)

	var stmt statement.Statement
	switch mode {
	case statement.ModeAging:
		stmt = statement.ClassifyAging(rows, now)
	default:
		stmt = statement.ClassifyLedger(rows)
	}

	total := 0
	for _, b := range stmt.Buckets {
		total += len(b.Rows)
	}
	if total == 0 {
		log.Info("no qualifying rows, skipping")
		metrics.IncCustomerSkipped("empty")
		return "", false
	}

	buildStart := time.Now()
	data, err := s.renderer.Render(stmt, now)
	if err != nil {
		log.WithError(err).Error("render failed, skipping customer")
		metrics.ObservePDFBuild(string(mode), metrics.ResultError, time.Since(buildStart))
		metrics.IncCustomerSkipped("render")
		return "", false
	}
	metrics.ObservePDFBuild(string(mode), metrics.ResultSuccess, time.Since(buildStart))

	path := filepath.Join(s.outDir, statement.SanitizeName(group.name)+".pdf")
	if err := writeAtomic(path, data); err != nil {
		log.WithError(err).Error("artifact write failed, skipping customer")
		metrics.IncCustomerSkipped("write")
		return "", false
	}
	metrics.IncArtifact()
	log.WithField("artifact", path).Info("statement generated")
	return path, true
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so an aborted write cannot leave a truncated artifact.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
