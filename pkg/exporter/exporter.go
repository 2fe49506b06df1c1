package exporter

import (
	"context"
	"fmt"
	"time"

	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
)

// Source supplies the data to export.
type Source interface {
	Snapshot() models.EmojiData
}

// Stopper halts the periodic scan before the export is built.
type Stopper interface {
	Stop()
}

// Deliverer hands a finished artifact to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, artifact models.Artifact) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, artifact models.Artifact) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, artifact models.Artifact) error {
	return f(ctx, artifact)
}

// Result describes a completed export.
type Result struct {
	FileName string
	Servers  int
	Emojis   int
	Bytes    int
	SavedAt  time.Time
	Data     []byte
}

// Exporter builds and delivers emoji-data.json.
type Exporter struct {
	source    Source
	stopper   Stopper
	deliverer Deliverer
	fileName  string
	logger    logger.Logger
}

// New creates an exporter. stopper may be nil.
func New(source Source, stopper Stopper, deliverer Deliverer, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Exporter{
		source:    source,
		stopper:   stopper,
		deliverer: deliverer,
		fileName:  models.ExportFileName,
		logger:    log,
	}
}

// SetFileName overrides the artifact name.
func (e *Exporter) SetFileName(name string) {
	if name != "" {
		e.fileName = name
	}
}

// Build serializes the current state without stopping or delivering.
func (e *Exporter) Build() (models.EmojiData, []byte, error) {
	data := e.source.Snapshot()
	raw, err := Marshal(data)
	if err != nil {
		return data, nil, err
	}
	return data, raw, nil
}

// Save stops the scheduler, serializes the state and delivers it. Delivery
// errors are returned as is.
func (e *Exporter) Save(ctx context.Context) (*Result, error) {
	if e.stopper != nil {
		e.stopper.Stop()
	}

	e.logger.Info("Saving emoji data")

	data, raw, err := e.Build()
	if err != nil {
		return nil, err
	}

	artifact := models.Artifact{
		Name:     e.fileName,
		MIMEType: models.ExportMIMEType,
		Data:     raw,
	}
	if err := e.deliverer.Deliver(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to deliver %s: %w", e.fileName, err)
	}

	return &Result{
		FileName: e.fileName,
		Servers:  len(data.Servers),
		Emojis:   len(data.Emojis),
		Bytes:    len(raw),
		SavedAt:  time.Now(),
		Data:     raw,
	}, nil
}
