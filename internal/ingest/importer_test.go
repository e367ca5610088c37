package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/pipeline"
)

type memBlobs struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memBlobs) Put(_ context.Context, fileID string, data []byte, filename, contentType string) (*entity.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[fileID] = data
	return &entity.Upload{FileID: fileID, FileName: filename, ContentType: contentType, Length: int64(len(data))}, nil
}

type scriptedExtractor struct {
	mu     sync.Mutex
	models []string
}

func (s *scriptedExtractor) ExtractPDF(_ context.Context, model string, pdf []byte) (*pipeline.Result, error) {
	s.mu.Lock()
	s.models = append(s.models, model)
	s.mu.Unlock()
	if string(pdf) == "broken" {
		return nil, errors.New("no valid JSON found")
	}
	return &pipeline.Result{
		Provider: constants.ProviderGemini,
		FellBack: string(pdf) == "fallback",
		Fields: entity.ExtractedFields{
			Vendor:  entity.Vendor{Name: "Acme"},
			Invoice: entity.Invoice{Number: string(pdf), Date: "2024-01-01", Currency: "USD", LineItems: []entity.LineItem{}},
		},
	}, nil
}

type memInvoices struct {
	mu   sync.Mutex
	docs []map[string]any
}

func (m *memInvoices) Create(_ context.Context, doc map[string]any) (*entity.InvoiceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	return &entity.InvoiceDocument{ID: uuid.NewString(), FileID: doc["fileId"].(string)}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestImportDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "A-1")
	writeFile(t, filepath.Join(root, "nested", "b.PDF"), "fallback")
	writeFile(t, filepath.Join(root, "nested", "c.pdf"), "broken")
	writeFile(t, filepath.Join(root, "notes.txt"), "skip me")
	writeFile(t, filepath.Join(root, ".hidden", "d.pdf"), "hidden")

	blobs := &memBlobs{}
	ex := &scriptedExtractor{}
	inv := &memInvoices{}
	imp := NewImporter(Config{Model: "groq", Workers: 3, SkipHidden: true}, blobs, ex, inv, nil)

	results, stats, err := imp.ImportDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.FellBack)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Len(t, results, 3)

	byName := map[string]FileResult{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.NotEmpty(t, byName["a.pdf"].InvoiceID)
	assert.True(t, byName["b.PDF"].FellBack)
	assert.Contains(t, byName["c.pdf"].Err, "no valid JSON found")
	assert.NotEmpty(t, byName["c.pdf"].FileID, "blob is stored before extraction")

	assert.Len(t, blobs.files, 3)
	assert.Equal(t, []string{"groq", "groq", "groq"}, ex.models)

	numbers := []string{}
	for _, d := range inv.docs {
		numbers = append(numbers, d["invoice"].(map[string]any)["number"].(string))
		assert.NotEmpty(t, d["fileName"])
		assert.Equal(t, "Acme", d["vendor"].(map[string]any)["name"])
	}
	sort.Strings(numbers)
	assert.Equal(t, []string{"A-1", "fallback"}, numbers)
}

func TestImportDirectory_RequiresRoot(t *testing.T) {
	imp := NewImporter(Config{}, &memBlobs{}, &scriptedExtractor{}, &memInvoices{}, nil)
	_, _, err := imp.ImportDirectory(context.Background(), "  ")
	assert.Error(t, err)
}

func TestImportPath_Rejects(t *testing.T) {
	dir := t.TempDir()
	imp := NewImporter(Config{Model: "gemini"}, &memBlobs{}, &scriptedExtractor{}, &memInvoices{}, nil)

	txt := filepath.Join(dir, "x.txt")
	writeFile(t, txt, "x")
	_, err := imp.ImportPath(context.Background(), txt)
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = imp.ImportPath(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/b.pdf"))
	assert.False(t, IsHidden("."))
}

type blockingExtractor struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingExtractor) ExtractPDF(ctx context.Context, _ string, _ []byte) (*pipeline.Result, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestImportDirectory_CancelStopsRunningFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "A-1")

	ex := &blockingExtractor{started: make(chan struct{})}
	imp := NewImporter(Config{Model: "gemini", Workers: 1, Timeout: time.Minute}, &memBlobs{}, ex, &memInvoices{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ex.started
		cancel()
	}()

	type outcome struct {
		results []FileResult
		stats   DirStats
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, stats, err := imp.ImportDirectory(ctx, root)
		done <- outcome{results, stats, err}
	}()

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, uint32(1), out.stats.Failed)
		require.Len(t, out.results, 1)
		assert.Contains(t, out.results[0].Err, context.Canceled.Error())
	case <-time.After(5 * time.Second):
		t.Fatal("import kept running after cancellation")
	}
}
