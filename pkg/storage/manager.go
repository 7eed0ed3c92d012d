package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Manager owns one output folder and writes images into it atomically
type Manager struct {
	fs        afero.Fs
	outputDir string
	created   bool
}

// NewManager creates the output folder (with parents) when it is missing
func NewManager(fs afero.Fs, outputDir string) (*Manager, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	exists, err := afero.DirExists(fs, outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect output directory: %w", err)
	}
	if !exists {
		if err := fs.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &Manager{
		fs:        fs,
		outputDir: outputDir,
		created:   !exists,
	}, nil
}

// SaveImage streams r into <outputDir>/<name> through a temporary file and
// returns the final path and the number of bytes written. An existing file
// with the same name is replaced.
func (m *Manager) SaveImage(r io.Reader, name string) (string, int64, error) {
	filename := filepath.Join(m.outputDir, name)
	tempFile := filename + ".tmp"

	out, err := m.fs.Create(tempFile)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		m.fs.Remove(tempFile)
		return "", n, fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		m.fs.Remove(tempFile)
		return "", n, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := m.fs.Rename(tempFile, filename); err != nil {
		m.fs.Remove(tempFile)
		return "", n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, n, nil
}

// Exists reports whether name is already present in the output folder
func (m *Manager) Exists(name string) bool {
	_, err := m.fs.Stat(filepath.Join(m.outputDir, name))
	return err == nil || !os.IsNotExist(err)
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Created reports whether NewManager had to create the output directory
func (m *Manager) Created() bool {
	return m.created
}
