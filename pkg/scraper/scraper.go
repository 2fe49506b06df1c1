package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"emojiscraper/pkg/collector"
	"emojiscraper/pkg/config"
	"emojiscraper/pkg/exporter"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
	"emojiscraper/pkg/scheduler"
	"emojiscraper/pkg/trigger"
	"emojiscraper/pkg/ui"
)

// interruptSaveTimeout bounds the save that runs after the run context ends.
const interruptSaveTimeout = 30 * time.Second

// Scraper orchestrates scanning and exporting
type Scraper struct {
	config    *config.Config
	state     *collector.State
	scanner   *collector.Scanner
	scheduler *scheduler.Scheduler
	exporter  *exporter.Exporter
	logger    logger.Logger
	tui       ui.TUI
	notifier  *ui.Notifier

	// mu serializes scan and save handlers
	mu       sync.Mutex
	saved    bool
	result   *exporter.Result
	saveErr  error
	saveDone chan struct{}
	doneOnce sync.Once
	keyOnce  func() bool
}

// New creates a Scraper reading page and delivering through deliverer.
func New(cfg *config.Config, page collector.Page, deliverer exporter.Deliverer) (*Scraper, error) {
	return NewWithLogger(cfg, page, deliverer, logger.GetLogger())
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, page collector.Page, deliverer exporter.Deliverer, log logger.Logger) (*Scraper, error) {
	extractor, err := collector.NewPatternExtractor(cfg.Scan.LabelPattern)
	if err != nil {
		return nil, err
	}

	state := collector.NewState()

	scanner := collector.NewScanner(page, state, extractor, log)
	scanner.SetAttributes(collector.Attributes{
		ID:    cfg.Scan.IDAttribute,
		Name:  cfg.Scan.NameAttribute,
		Label: cfg.Scan.LabelAttribute,
	})

	sched := scheduler.New(cfg.Scan.Interval)
	sched.SetLogger(log)
	sched.SetFailFast(cfg.Scan.FailFast)

	exp := exporter.New(state, sched, deliverer, log)
	exp.SetFileName(cfg.Export.FileName)

	s := &Scraper{
		config:    cfg,
		state:     state,
		scanner:   scanner,
		scheduler: sched,
		exporter:  exp,
		logger:    log,
		saveDone:  make(chan struct{}),
	}
	s.keyOnce = trigger.Once(func() { _, _ = s.Save(context.Background()) })

	scanner.SetObserver(s.onRegistered)
	sched.SetErrorHandler(s.onScanError)

	return s, nil
}

// SetTUI sets the terminal UI for the scraper
func (s *Scraper) SetTUI(t ui.TUI) {
	s.tui = t
}

// SetNotifier enables desktop notifications after the save
func (s *Scraper) SetNotifier(n *ui.Notifier) {
	s.notifier = n
}

// State returns the collected state
func (s *Scraper) State() *collector.State {
	return s.state
}

// Scheduler returns the scan scheduler
func (s *Scraper) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Done is closed once the first save has finished
func (s *Scraper) Done() <-chan struct{} {
	return s.saveDone
}

// Result returns the outcome of the most recent save
func (s *Scraper) Result() (*exporter.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.saveErr
}

// Run scans until a save stops the scheduler and returns the save error. When
// ctx ends first and export.save_on_interrupt is set, the data collected so
// far is saved before returning.
func (s *Scraper) Run(ctx context.Context) error {
	if s.tui == nil {
		ui.PrintBanner()
	} else {
		s.tui.LogInfo("%s", ui.Banner)
	}

	logger.LogComponentStart(s.logger, "collector", map[string]interface{}{
		"interval":  s.scheduler.Interval().String(),
		"selector":  s.config.Scan.Selector,
		"fail_fast": s.config.Scan.FailFast,
	})

	err := s.scheduler.Run(ctx, s.scan)

	switch {
	case err == nil:
		s.mu.Lock()
		saved := s.saved
		s.mu.Unlock()
		if !saved {
			logger.LogComponentStop(s.logger, "collector", "stopped")
			return nil
		}
		// stopped by a save, wait for it to finish
		<-s.saveDone
		_, saveErr := s.Result()
		logger.LogComponentStop(s.logger, "collector", "saved")
		return saveErr

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return s.finishInterrupted(err)

	default:
		logger.LogComponentStop(s.logger, "collector", "scan failed")
		return err
	}
}

func (s *Scraper) finishInterrupted(cause error) error {
	s.mu.Lock()
	saved := s.saved
	s.mu.Unlock()

	if saved {
		<-s.saveDone
		_, saveErr := s.Result()
		logger.LogComponentStop(s.logger, "collector", "saved")
		return saveErr
	}

	if !s.config.Export.SaveOnInterrupt {
		s.scheduler.Stop()
		logger.LogComponentStop(s.logger, "collector", "interrupted")
		return cause
	}

	s.logger.Warn("Interrupted, saving collected emojis")
	ctx, cancel := context.WithTimeout(context.Background(), interruptSaveTimeout)
	defer cancel()
	_, err := s.Save(ctx)
	logger.LogComponentStop(s.logger, "collector", "interrupted")
	return err
}

// scan is the scheduled handler
func (s *Scraper) scan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved {
		return nil
	}

	_, err := s.scanner.Scan(ctx)
	return err
}

// Save exports the collected data. It may be called any number of times; the
// scheduler stays stopped after the first call.
func (s *Scraper) Save(ctx context.Context) (*exporter.Result, error) {
	s.mu.Lock()
	s.saved = true
	res, err := s.exporter.Save(ctx)
	s.result, s.saveErr = res, err
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.saveDone) })
	s.report(res, err)
	return res, err
}

// SaveOnce runs Save for the first call only and reports whether this call
// performed it. It backs the single-shot key press triggers.
func (s *Scraper) SaveOnce() bool {
	return s.keyOnce()
}

// Summary describes the saved export for callers outside Go, such as the
// page binding.
func Summary(res *exporter.Result) map[string]interface{} {
	if res == nil {
		return nil
	}
	return map[string]interface{}{
		"file":    res.FileName,
		"servers": res.Servers,
		"emojis":  res.Emojis,
		"bytes":   res.Bytes,
	}
}

func (s *Scraper) report(res *exporter.Result, err error) {
	if err != nil {
		s.logger.WithError(err).Error("Failed to save emoji data")
		if s.tui != nil {
			s.tui.SaveFailed(err)
		}
		if s.notifier != nil {
			s.notifier.SendError("Save failed", err.Error())
		}
		return
	}

	s.logger.InfoWithFields("Emoji data saved", map[string]interface{}{
		"file":    res.FileName,
		"servers": res.Servers,
		"emojis":  res.Emojis,
		"bytes":   res.Bytes,
	})
	if s.tui != nil {
		s.tui.Saved(res.FileName, res.Servers, res.Emojis, res.Bytes)
	}
	if s.notifier != nil {
		s.notifier.SendSuccess("Emoji data saved",
			fmt.Sprintf("%d emojis from %d servers in %s", res.Emojis, res.Servers, res.FileName))
	}
}

func (s *Scraper) onRegistered(rec models.EmojiRecord) {
	if s.tui != nil {
		s.tui.Registered(rec)
	}
}

func (s *Scraper) onScanError(err error) {
	logger.LogScanFailure(s.logger, err, s.state.Len())
	if s.tui != nil {
		s.tui.ScanFailed(err)
	}
}
