// Package report writes plan reports to disk: PDFs fetched from the backend
// and locally rendered projection PDFs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPDFName is the file name used when the user doesn't pick one.
const DefaultPDFName = "HolinFlow_Report.pdf"

// ResolvePath returns out if set, otherwise DefaultPDFName inside dir
// (the working directory if dir is empty).
func ResolvePath(dir, out string) string {
	if out != "" {
		return out
	}
	return filepath.Join(dir, DefaultPDFName)
}

// SaveFile writes data to path through a temp file in the same directory
// and a rename, so a failed save never leaves a partial file behind.
func SaveFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hflow-*.part")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting report mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}
