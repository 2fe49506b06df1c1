package scraper

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"emojiscraper/pkg/config"
	"emojiscraper/pkg/errors"
	"emojiscraper/pkg/exporter"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
	"emojiscraper/pkg/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDeliverer struct {
	mu        sync.Mutex
	artifacts []models.Artifact
	err       error
}

func (c *captureDeliverer) Deliver(_ context.Context, a models.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.artifacts = append(c.artifacts, a)
	return nil
}

func (c *captureDeliverer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.artifacts)
}

func (c *captureDeliverer) last() models.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifacts[len(c.artifacts)-1]
}

type recordingTUI struct {
	mu         sync.Mutex
	registered []models.EmojiRecord
	scanErrors int
	saved      int
	failed     int
}

func (r *recordingTUI) Registered(rec models.EmojiRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, rec)
}

func (r *recordingTUI) ScanFailed(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanErrors++
}

func (r *recordingTUI) Saved(string, int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved++
}

func (r *recordingTUI) SaveFailed(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *recordingTUI) LogInfo(string, ...interface{})    {}
func (r *recordingTUI) LogWarning(string, ...interface{}) {}
func (r *recordingTUI) LogError(string, ...interface{})   {}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scan.Interval = time.Millisecond
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config, p *page.Static) (*Scraper, *captureDeliverer, *logger.TestLogger) {
	t.Helper()
	deliverer := &captureDeliverer{}
	log := logger.NewTestLogger()
	s, err := NewWithLogger(cfg, p, deliverer, log)
	require.NoError(t, err)
	return s, deliverer, log
}

func runAsync(s *Scraper, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRunCollectsUntilSave(t *testing.T) {
	p := page.NewStatic(
		page.EmojiButton("1", "joy", ":joy: from Alpha"),
		page.EmojiButton("2", "x", ":x: from Beta"),
	)
	s, deliverer, log := newTestScraper(t, testConfig(), p)

	done := runAsync(s, context.Background())
	require.Eventually(t, func() bool { return s.State().Len() == 2 }, 2*time.Second, time.Millisecond)

	p.Append(page.EmojiButton("3", "y", ":y: from Alpha"))
	require.Eventually(t, func() bool { return s.State().Len() == 3 }, 2*time.Second, time.Millisecond)

	res, err := s.Save(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitRun(t, done))

	assert.Equal(t, 3, res.Emojis)
	assert.Equal(t, 2, res.Servers)
	require.Equal(t, 1, deliverer.count())

	data, err := exporter.Unmarshal(deliverer.last().Data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, data.Servers)
	assert.Equal(t, "y", data.Emojis[2].Name)

	assert.True(t, log.HasMessage("Saving emoji data"))
	assert.True(t, log.HasMessage(`Registered emoji "joy" of server "Alpha"`))

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestScanHaltsAfterSave(t *testing.T) {
	p := page.NewStatic(page.EmojiButton("1", "joy", ":joy: from Alpha"))
	s, _, _ := newTestScraper(t, testConfig(), p)

	done := runAsync(s, context.Background())
	require.Eventually(t, func() bool { return s.State().Len() == 1 }, 2*time.Second, time.Millisecond)

	_, err := s.Save(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitRun(t, done))
	assert.True(t, s.Scheduler().Stopped())

	calls := p.Calls()
	p.Append(page.EmojiButton("2", "late", ":late: from Beta"))
	time.Sleep(20 * time.Millisecond)

	// a tick that was already queued does nothing
	require.NoError(t, s.scan(context.Background()))

	assert.Equal(t, calls, p.Calls())
	assert.Equal(t, 1, s.State().Len())
}

func TestSaveOnceIsSingleShot(t *testing.T) {
	p := page.NewStatic(page.EmojiButton("1", "joy", ":joy: from Alpha"))
	s, deliverer, _ := newTestScraper(t, testConfig(), p)

	assert.True(t, s.SaveOnce())
	assert.False(t, s.SaveOnce())
	assert.False(t, s.SaveOnce())
	assert.Equal(t, 1, deliverer.count())

	// manual saves stay available
	_, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, deliverer.count())
}

func TestSaveIsIdempotentOnData(t *testing.T) {
	s, deliverer, _ := newTestScraper(t, testConfig(), page.NewStatic(page.EmojiButton("1", "joy", ":joy: from Alpha")))
	require.NoError(t, s.scan(context.Background()))

	_, err := s.Save(context.Background())
	require.NoError(t, err)
	first := deliverer.last().Data
	_, err = s.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, deliverer.last().Data)
}

func TestExtractionFailureFailFast(t *testing.T) {
	broken := &page.Node{Tag: "button", Attrs: map[string]string{"data-id": "2"}}
	p := page.NewStatic(page.EmojiButton("1", "joy", ":joy: from Alpha"), broken)

	cfg := testConfig()
	cfg.Scan.FailFast = true
	s, deliverer, _ := newTestScraper(t, cfg, p)

	err := waitRun(t, runAsync(s, context.Background()))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrMissingStructure))
	assert.True(t, s.State().Has("1"))
	assert.Zero(t, deliverer.count())
}

func TestExtractionFailureKeepsScanning(t *testing.T) {
	broken := &page.Node{Tag: "button", Attrs: map[string]string{"data-id": "2"}}
	p := page.NewStatic(broken)
	s, _, log := newTestScraper(t, testConfig(), p)
	tui := &recordingTUI{}
	s.SetTUI(tui)

	done := runAsync(s, context.Background())
	require.Eventually(t, func() bool { return s.Scheduler().Invocations() >= 3 }, 2*time.Second, time.Millisecond)

	// the page recovers
	p.Set(page.EmojiButton("2", "fixed", ":fixed: from Alpha"))
	require.Eventually(t, func() bool { return s.State().Len() == 1 }, 2*time.Second, time.Millisecond)

	_, err := s.Save(context.Background())
	require.NoError(t, err)
	require.NoError(t, waitRun(t, done))

	assert.NotEmpty(t, log.GetMessagesByLevel("ERROR"))
	assert.True(t, log.HasMessage("Scan aborted"))

	tui.mu.Lock()
	defer tui.mu.Unlock()
	assert.GreaterOrEqual(t, tui.scanErrors, 2)
	assert.Len(t, tui.registered, 1)
	assert.Equal(t, 1, tui.saved)
}

func TestInterruptSavesCollectedData(t *testing.T) {
	p := page.NewStatic(page.EmojiButton("1", "joy", ":joy: from Alpha"))
	s, deliverer, _ := newTestScraper(t, testConfig(), p)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(s, ctx)
	require.Eventually(t, func() bool { return s.State().Len() == 1 }, 2*time.Second, time.Millisecond)
	cancel()

	require.NoError(t, waitRun(t, done))
	assert.Equal(t, 1, deliverer.count())
}

func TestInterruptWithoutSave(t *testing.T) {
	cfg := testConfig()
	cfg.Export.SaveOnInterrupt = false
	s, deliverer, _ := newTestScraper(t, cfg, page.NewStatic())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(s, ctx)
	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, waitRun(t, done), context.Canceled)
	assert.Zero(t, deliverer.count())
	assert.True(t, s.Scheduler().Stopped())
}

func TestSaveDeliveryFailure(t *testing.T) {
	p := page.NewStatic()
	deliverer := &captureDeliverer{err: stderrors.New("disk full")}
	s, err := NewWithLogger(testConfig(), p, deliverer, logger.NewTestLogger())
	require.NoError(t, err)
	tui := &recordingTUI{}
	s.SetTUI(tui)

	done := runAsync(s, context.Background())
	require.Eventually(t, func() bool { return p.Calls() > 0 }, 2*time.Second, time.Millisecond)

	_, err = s.Save(context.Background())
	assert.Error(t, err)
	assert.Error(t, waitRun(t, done))

	_, resErr := s.Result()
	assert.Error(t, resErr)
	tui.mu.Lock()
	defer tui.mu.Unlock()
	assert.Equal(t, 1, tui.failed)
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Scan.LabelPattern = "no group"
	_, err := New(cfg, page.NewStatic(), &captureDeliverer{})
	assert.Error(t, err)
}

func TestCustomFileName(t *testing.T) {
	cfg := testConfig()
	cfg.Export.FileName = "custom.json"
	s, deliverer, _ := newTestScraper(t, cfg, page.NewStatic())

	_, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom.json", deliverer.last().Name)
}

func TestSummary(t *testing.T) {
	assert.Nil(t, Summary(nil))
	sum := Summary(&exporter.Result{FileName: "emoji-data.json", Servers: 1, Emojis: 2, Bytes: 3})
	assert.Equal(t, "emoji-data.json", sum["file"])
	assert.Equal(t, 2, sum["emojis"])
}
