package candidates

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_SkipsBlankAndMalformedLines(t *testing.T) {
	content := `{"page":1,"qnum":"1","blocks":[{"text":"What is OCR?"}]}


not json at all
{"page":2,"qnum":null,"blocks":[]}
{broken
`
	cands, err := Load(writeFixture(t, content), 1, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	if cands[0].Page != 1 || cands[1].Page != 2 {
		t.Fatalf("unexpected pages: %d, %d", cands[0].Page, cands[1].Page)
	}
	if cands[0].QNum == nil || *cands[0].QNum != "1" {
		t.Fatalf("unexpected qnum: %v", cands[0].QNum)
	}
	if cands[1].QNum != nil {
		t.Fatalf("expected nil qnum, got %q", *cands[1].QNum)
	}
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	content := `{"page":3,"blocks":[]}
{"page":1,"blocks":[]}
{"page":2,"blocks":[]}
`
	cands, err := Load(writeFixture(t, content), 1, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []int{3, 1, 2}
	for i, c := range cands {
		if c.Page != want[i] {
			t.Errorf("candidate %d: page = %d, want %d", i, c.Page, want[i])
		}
	}
}

func TestLoad_DefaultsPage(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"missing", `{"qnum":"1","blocks":[]}`, 1},
		{"null", `{"page":null,"blocks":[]}`, 1},
		{"non-numeric string", `{"page":"cover","blocks":[]}`, 1},
		{"object", `{"page":{"n":2},"blocks":[]}`, 1},
		{"number", `{"page":7,"blocks":[]}`, 7},
		{"float", `{"page":7.0,"blocks":[]}`, 7},
		{"numeric string", `{"page":" 12 ","blocks":[]}`, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands, err := Load(writeFixture(t, tt.line+"\n"), 1, testLogger())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cands[0].Page != tt.want {
				t.Errorf("page = %d, want %d", cands[0].Page, tt.want)
			}
		})
	}
}

func TestLoad_EmptyFileIsNoCandidates(t *testing.T) {
	_, err := Load(writeFixture(t, "\n   \n\n"), 1, testLogger())
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonl"), 1, testLogger())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoad_BlocksPassedThroughVerbatim(t *testing.T) {
	content := `{"page":1,"qnum":"1","blocks":[{"lang":"hindi","text":"प्रश्न","bbox":{"left":10,"top":20},"conf":88}]}
`
	cands, err := Load(writeFixture(t, content), 1, testLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cands[0].Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(cands[0].Blocks))
	}
	got := string(cands[0].Blocks[0])
	want := `{"lang":"hindi","text":"प्रश्न","bbox":{"left":10,"top":20},"conf":88}`
	if got != want {
		t.Errorf("block not preserved verbatim:\n got %s\nwant %s", got, want)
	}
}
