// Package workspace manages the directory the offline commands work in: the
// exported emoji-data.json, the include.txt selection, the emojis/ image
// directory and the mosaic sources/ and output directories.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"emojiscraper/pkg/exporter"
	"emojiscraper/pkg/include"
	"emojiscraper/pkg/models"
)

const (
	IncludeFile     = "include.txt"
	EmojisDir       = "emojis"
	SourcesDir      = "sources"
	OutputImagesDir = "output-images"
	OutputTextDir   = "output-text"
)

// Workspace is a directory laid out for the offline commands.
type Workspace struct {
	Dir string
}

// New returns the workspace rooted at dir. Nothing is touched on disk.
func New(dir string) *Workspace {
	return &Workspace{Dir: dir}
}

// DataPath is the location of emoji-data.json.
func (w *Workspace) DataPath() string {
	return filepath.Join(w.Dir, models.ExportFileName)
}

// IncludePath is the location of include.txt.
func (w *Workspace) IncludePath() string {
	return filepath.Join(w.Dir, IncludeFile)
}

// EmojisDir is where downloaded images go.
func (w *Workspace) EmojisDir() string {
	return filepath.Join(w.Dir, EmojisDir)
}

// SourcePath resolves a mosaic source. Bare names are looked up in
// sources/; anything with a directory part is used as given.
func (w *Workspace) SourcePath(name string) string {
	if filepath.Base(name) == name {
		return filepath.Join(w.Dir, SourcesDir, name)
	}
	return name
}

// OutputImagesDir holds composite mosaics.
func (w *Workspace) OutputImagesDir() string {
	return filepath.Join(w.Dir, OutputImagesDir)
}

// OutputTextDir holds text mosaics.
func (w *Workspace) OutputTextDir() string {
	return filepath.Join(w.Dir, OutputTextDir)
}

// Init creates the workspace directories and a default include.txt. Existing
// files are left alone.
func (w *Workspace) Init() error {
	for _, dir := range []string{EmojisDir, SourcesDir, OutputImagesDir, OutputTextDir} {
		if err := os.MkdirAll(filepath.Join(w.Dir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
	}

	if _, err := os.Stat(w.IncludePath()); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", IncludeFile, err)
	}

	if err := os.WriteFile(w.IncludePath(), []byte(include.Default), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", IncludeFile, err)
	}
	return nil
}

// LoadEmojiData reads the exported emoji-data.json.
func (w *Workspace) LoadEmojiData() (models.EmojiData, error) {
	raw, err := os.ReadFile(w.DataPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.EmojiData{}, fmt.Errorf("no %s in %s, run collect first: %w", models.ExportFileName, w.Dir, err)
		}
		return models.EmojiData{}, fmt.Errorf("failed to read emoji data: %w", err)
	}

	data, err := exporter.Unmarshal(raw)
	if err != nil {
		return models.EmojiData{}, fmt.Errorf("failed to parse %s: %w", w.DataPath(), err)
	}
	for _, e := range data.Emojis {
		if err := models.ValidateEmojiID(e.ID); err != nil {
			return models.EmojiData{}, fmt.Errorf("%s: emoji %q: %w", w.DataPath(), e.Name, err)
		}
	}
	return data, nil
}

// LoadInclude reads include.txt.
func (w *Workspace) LoadInclude() (string, error) {
	raw, err := os.ReadFile(w.IncludePath())
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", IncludeFile, err)
	}
	return string(raw), nil
}

// Emojis returns the emojis selected by include.txt, in emoji-data.json order.
func (w *Workspace) Emojis() ([]models.EmojiRecord, error) {
	data, err := w.LoadEmojiData()
	if err != nil {
		return nil, err
	}
	text, err := w.LoadInclude()
	if err != nil {
		return nil, err
	}

	emojis, err := include.Filter(data, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", IncludeFile, err)
	}
	return emojis, nil
}
