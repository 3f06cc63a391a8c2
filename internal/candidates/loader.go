package candidates

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ErrNoCandidates is returned when the candidates file yields no parseable
// records. The caller treats this as fatal: there is nothing to clean up.
var ErrNoCandidates = errors.New("no candidate records loaded")

// maxLineBytes bounds a single candidate line. Dense pages can carry a lot of
// OCR blocks, so this is well above bufio's default.
const maxLineBytes = 4 * 1024 * 1024

// rawCandidate defers page interpretation: the merge step normally writes a
// JSON number, but the field may be absent or malformed.
type rawCandidate struct {
	Page    json.RawMessage   `json:"page"`
	QNum    *string           `json:"qnum"`
	Blocks  []json.RawMessage `json:"blocks"`
	ConfAvg *int              `json:"conf_avg"`
}

// Load reads line-delimited candidate records from path. Blank lines are
// skipped silently; lines that fail to parse are skipped with a warning.
// Records with a missing or non-numeric page field get defaultPage.
func Load(path string, defaultPage int, logger *slog.Logger) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates file: %w", err)
	}
	defer f.Close()

	var out []Candidate
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw rawCandidate
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			logger.Warn("skipping malformed candidate line",
				"path", path, "line", lineNum, "error", err)
			continue
		}

		out = append(out, Candidate{
			Page:    resolvePage(raw.Page, defaultPage),
			QNum:    raw.QNum,
			Blocks:  raw.Blocks,
			ConfAvg: raw.ConfAvg,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates file: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCandidates, path)
	}
	return out, nil
}

// resolvePage interprets a raw page value. JSON numbers and numeric strings
// are accepted; anything else falls back to def.
func resolvePage(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}

	return def
}
