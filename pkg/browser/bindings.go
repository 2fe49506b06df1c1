package browser

import (
	"context"
	"fmt"

	"emojiscraper/pkg/logger"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// SaveFunc is the name of the function exposed to the page.
const SaveFunc = "save"

// keypressSource is the argument the key listener passes to the save
// function; a call typed into the console passes nothing.
const keypressSource = "keypress"

// keypressScript registers a listener that fires on the first key press only.
const keypressScript = `() => {
	document.addEventListener("keypress", () => window.` + SaveFunc + `("` + keypressSource + `"), { once: true });
}`

// Handlers are called from the page. Manual runs on every console call of
// save(), Keypress on the first key press.
type Handlers struct {
	Manual   func(ctx context.Context) (interface{}, error)
	Keypress func(ctx context.Context) (interface{}, error)
}

// Bindings connects the page's save() function and key listener to Go.
type Bindings struct {
	handlers Handlers
	logger   logger.Logger
	stop     func() error
}

// NewBindings creates bindings for the given handlers.
func NewBindings(h Handlers, log logger.Logger) *Bindings {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Bindings{handlers: h, logger: log}
}

// Install exposes save() on page and registers the one-shot key listener.
func (b *Bindings) Install(ctx context.Context, page *rod.Page) error {
	stop, err := page.Expose(SaveFunc, func(req gson.JSON) (interface{}, error) {
		return b.Dispatch(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("browser: expose %s: %w", SaveFunc, err)
	}
	b.stop = stop

	if _, err := page.Context(ctx).Eval(keypressScript); err != nil {
		return fmt.Errorf("browser: install key listener: %w", err)
	}

	b.logger.WithField("function", SaveFunc+"()").Debug("Page bindings installed")
	return nil
}

// Dispatch routes one call of the exposed function.
func (b *Bindings) Dispatch(ctx context.Context, req gson.JSON) (interface{}, error) {
	handler := b.handlers.Manual
	source := "console"
	if req.Str() == keypressSource {
		handler = b.handlers.Keypress
		source = keypressSource
	}
	if handler == nil {
		return nil, fmt.Errorf("no handler for %s", source)
	}

	b.logger.WithField("source", source).Debug("Save requested from page")
	res, err := handler(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Remove withdraws the exposed function.
func (b *Bindings) Remove() error {
	if b.stop == nil {
		return nil
	}
	return b.stop()
}
