package collector

import (
	"context"
	"fmt"

	"emojiscraper/pkg/errors"
	"emojiscraper/pkg/logger"
	"emojiscraper/pkg/models"
)

// Attributes names the DOM attributes the scanner reads.
type Attributes struct {
	ID    string
	Name  string
	Label string
}

// DefaultAttributes returns the attribute names used by the chat client.
func DefaultAttributes() Attributes {
	return Attributes{ID: "data-id", Name: "data-name", Label: "aria-label"}
}

// Observer is told about every newly registered record.
type Observer func(rec models.EmojiRecord)

// Scanner registers emoji found on a Page into a State.
type Scanner struct {
	page      Page
	state     *State
	extractor ServerExtractor
	attrs     Attributes
	logger    logger.Logger
	observer  Observer
}

// NewScanner creates a scanner. A nil extractor selects DefaultExtractor and
// a nil logger discards output.
func NewScanner(page Page, state *State, extractor ServerExtractor, log logger.Logger) *Scanner {
	if extractor == nil {
		extractor = DefaultExtractor()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Scanner{
		page:      page,
		state:     state,
		extractor: extractor,
		attrs:     DefaultAttributes(),
		logger:    log,
	}
}

// SetAttributes overrides the attribute names read from each element.
func (s *Scanner) SetAttributes(attrs Attributes) {
	s.attrs = attrs
}

// SetObserver installs a callback run after each registration.
func (s *Scanner) SetObserver(o Observer) {
	s.observer = o
}

// State returns the state the scanner writes into.
func (s *Scanner) State() *State {
	return s.state
}

// Scan performs one pass over the page and returns how many records were
// added. The first element with a missing or unmatched label aborts the rest
// of the pass with a *errors.MissingStructureError; records registered
// earlier in the pass are kept.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	candidates, err := s.page.Candidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query emoji elements: %w", err)
	}

	added := 0
	for _, el := range candidates {
		id, _ := el.Attr(s.attrs.ID)
		if id == "" || s.state.Has(id) {
			continue
		}

		rec, err := s.extract(id, el)
		if err != nil {
			return added, err
		}

		if !s.state.Register(rec) {
			continue
		}
		added++
		logger.LogRegistered(s.logger, rec)
		if s.observer != nil {
			s.observer(rec)
		}
	}

	return added, nil
}

func (s *Scanner) extract(id string, el Element) (models.EmojiRecord, error) {
	name, _ := el.Attr(s.attrs.Name)

	child, ok := el.FirstChild()
	if !ok {
		return models.EmojiRecord{}, &errors.MissingStructureError{ElementID: id, Reason: "no first child element"}
	}
	label, ok := child.Attr(s.attrs.Label)
	if !ok {
		return models.EmojiRecord{}, &errors.MissingStructureError{ElementID: id, Reason: "first child has no " + s.attrs.Label}
	}
	server, ok := s.extractor.Extract(label)
	if !ok {
		return models.EmojiRecord{}, &errors.MissingStructureError{ElementID: id, Reason: "label does not name a server", Label: label}
	}

	return models.EmojiRecord{ID: id, Name: name, Server: server}, nil
}
