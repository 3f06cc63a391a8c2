// Package pipeline runs the per-page cleanup loop: prompt the backend with
// each page's candidates, recover the JSON array from its reply, correct
// primitive-shaped replies once, validate records, and write the result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/scanstack/qclean/internal/backend"
	"github.com/scanstack/qclean/internal/candidates"
	"github.com/scanstack/qclean/internal/extract"
	"github.com/scanstack/qclean/internal/prompts"
	"github.com/scanstack/qclean/internal/prompts/cleanup"
	"github.com/scanstack/qclean/internal/records"
)

// retryBudgetPerPage bounds corrective requests: at most one extra model
// call per page, whatever the retry itself returns.
const retryBudgetPerPage = 1

// Backend is the completion client the pipeline drives.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds pipeline settings. Template must already be resolved to its
// final text (embedded default or external file).
type Config struct {
	CandidatesPath string
	OutputPath     string
	Template       string
	DumpDir        string
	DefaultPage    int

	// LimitPages processes only the first N page batches when > 0.
	LimitPages int
}

// Pipeline processes candidate batches page by page, strictly sequentially.
type Pipeline struct {
	cfg       Config
	backend   Backend
	validator *records.Validator
	schema    *jsonschema.Schema
	logger    *slog.Logger
}

// New creates a pipeline. The canonical output schema is compiled here so a
// broken schema fails before any model call.
func New(cfg Config, be Backend, logger *slog.Logger) (*Pipeline, error) {
	if cfg.DefaultPage == 0 {
		cfg.DefaultPage = 1
	}
	schema, err := cleanup.CompileSchema()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		backend:   be,
		validator: records.NewValidator(logger),
		schema:    schema,
		logger:    logger,
	}, nil
}

// Run executes the whole pipeline. Only transport failures, an empty
// candidate set, and output-write failures abort the run; everything else is
// page-scoped and logged.
func (p *Pipeline) Run(ctx context.Context) error {
	cands, err := candidates.Load(p.cfg.CandidatesPath, p.cfg.DefaultPage, p.logger)
	if err != nil {
		return err
	}

	batches := candidates.GroupByPage(cands)
	p.logger.Info("loaded candidates",
		"candidates", len(cands), "pages", len(batches))

	if p.cfg.LimitPages > 0 && len(batches) > p.cfg.LimitPages {
		p.logger.Info("limiting run", "pages", p.cfg.LimitPages)
		batches = batches[:p.cfg.LimitPages]
	}

	var accepted []json.RawMessage
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageRecords, err := p.processPage(ctx, batch)
		if err != nil {
			return err
		}
		accepted = append(accepted, pageRecords...)
	}

	p.checkOutputShape(accepted)

	if err := records.WriteOutput(p.cfg.OutputPath, accepted); err != nil {
		return err
	}
	p.logger.Info("wrote output",
		"path", p.cfg.OutputPath, "records", len(accepted))
	return nil
}

// processPage handles one page batch. A nil, nil return means the page was
// skipped; only fatal errors come back as err.
func (p *Pipeline) processPage(ctx context.Context, batch candidates.PageBatch) ([]json.RawMessage, error) {
	logger := p.logger.With("page", batch.Page)

	batchJSON, err := json.Marshal(batch.Candidates)
	if err != nil {
		logger.Error("failed to serialize batch, skipping page", "error", err)
		return nil, nil
	}

	prompt, found := prompts.Substitute(p.cfg.Template, cleanup.CandidatesToken, string(batchJSON))
	if !found {
		logger.Warn("prompt template has no candidates placeholder, sending it unmodified",
			"token", cleanup.CandidatesToken)
	}

	raw, err := p.complete(ctx, logger, prompt, batch.Page, "")
	if err != nil || raw == "" {
		return nil, err
	}

	arrayText, ok := extract.Array(raw)
	if !ok {
		logger.Error("no JSON array found in backend response, skipping page",
			"response_bytes", len(raw))
		return nil, nil
	}

	shape, elems := extract.Classify(arrayText)
	switch shape {
	case extract.ShapeParseFailed:
		logger.Error("extracted text is not a JSON array, skipping page")
		return nil, nil
	case extract.ShapePrimitiveArray:
		arrayText, err = p.correctShape(ctx, logger, batch.Page, string(batchJSON), arrayText)
		if err != nil {
			return nil, err
		}
		// No shape re-validation on the corrected text: the budget is
		// spent, whatever came back goes through record validation.
		var reShape extract.Shape
		reShape, elems = extract.Classify(arrayText)
		if reShape == extract.ShapeParseFailed {
			logger.Error("corrected response is not a JSON array, skipping page")
			return nil, nil
		}
	}

	pageRecords := p.validator.Filter(batch.Page, elems)
	logger.Info("page processed",
		"shape", shape.String(), "elements", len(elems), "accepted", len(pageRecords))
	return pageRecords, nil
}

// correctShape issues the single corrective request for a primitive-shaped
// array. It returns the replacement array text, or the original when the
// retry yields nothing usable.
func (p *Pipeline) correctShape(ctx context.Context, logger *slog.Logger, page int, batchJSON, original string) (string, error) {
	budget := retryBudgetPerPage
	if budget <= 0 {
		return original, nil
	}
	budget--

	logger.Warn("backend returned an array of primitives, issuing corrective request")

	schemaJSON, err := cleanup.SchemaJSON()
	if err != nil {
		logger.Error("failed to render schema for corrective prompt", "error", err)
		return original, nil
	}

	prompt, _ := prompts.Substitute(cleanup.CorrectivePrompt(), cleanup.SchemaToken, schemaJSON)
	prompt, _ = prompts.Substitute(prompt, cleanup.CandidatesToken, batchJSON)

	raw, err := p.complete(ctx, logger, prompt, page, "_retry")
	if err != nil {
		return "", err
	}
	if raw == "" {
		// Backend rejected the retry; fall through with the original text,
		// which record validation will reject element by element.
		return original, nil
	}

	if corrected, ok := extract.Array(raw); ok {
		return corrected, nil
	}
	logger.Warn("corrective response contained no JSON array, keeping original")
	return original, nil
}

// complete wraps a backend call with the failure policy: status errors skip
// the page (returns "", nil), transport errors abort the run.
func (p *Pipeline) complete(ctx context.Context, logger *slog.Logger, prompt string, page int, suffix string) (string, error) {
	raw, err := p.backend.Complete(ctx, prompt)
	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			logger.Error("backend rejected request, skipping page",
				"status", statusErr.StatusCode, "request_id", statusErr.RequestID)
			return "", nil
		}
		return "", err
	}

	p.dumpResponse(logger, page, suffix, raw)
	return raw, nil
}

// dumpResponse persists a raw backend response for diagnostics. Disabled
// when no dump dir is configured; failures are log-only.
func (p *Pipeline) dumpResponse(logger *slog.Logger, page int, suffix, raw string) {
	if p.cfg.DumpDir == "" {
		return
	}
	if err := os.MkdirAll(p.cfg.DumpDir, 0o755); err != nil {
		logger.Warn("failed to create dump dir", "dir", p.cfg.DumpDir, "error", err)
		return
	}

	name := fmt.Sprintf("page_%d_%s%s.txt", page, uuid.New().String()[:8], suffix)
	path := filepath.Join(p.cfg.DumpDir, name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		logger.Warn("failed to write response dump", "path", path, "error", err)
	}
}

// checkOutputShape validates the final array against the canonical schema.
// Advisory only: accepted records may legitimately carry extra or oddly
// typed fields (the validator passes them through), so mismatches are
// logged, never fatal.
func (p *Pipeline) checkOutputShape(accepted []json.RawMessage) {
	if len(accepted) == 0 {
		return
	}
	data, err := json.Marshal(accepted)
	if err != nil {
		return
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	if err := p.schema.Validate(doc); err != nil {
		p.logger.Warn("output does not fully conform to the question schema", "error", err)
	}
}
