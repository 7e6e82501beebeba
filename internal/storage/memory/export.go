// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

// IncidentExport is the root JSON structure of an export file
type IncidentExport struct {
	Incident   string         `json:"incident"`
	ExportedAt time.Time      `json:"exportedAt"`
	Drawings   []core.Drawing `json:"drawings"`
}

// exportFileName turns an incident name into a safe file name
func exportFileName(incident string, compress bool) string {
	name := strings.ReplaceAll(incident, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if compress {
		return name + ".json.gz"
	}
	return name + ".json"
}

// exportJSON writes the incident collection to <OutputDir>/<incident>.json[.gz]
func (b *Backend) exportJSON(incident string) error {
	export := IncidentExport{
		Incident:   incident,
		ExportedAt: time.Now().UTC(),
		Drawings:   b.incidents[incident],
	}
	if export.Drawings == nil {
		export.Drawings = []core.Drawing{}
	}

	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(incident, b.cfg.CompressOutput))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

// readExport loads the export of an incident, preferring the configured format
func (b *Backend) readExport(incident string) (IncidentExport, error) {
	var export IncidentExport

	path := filepath.Join(b.cfg.OutputDir, exportFileName(incident, b.cfg.CompressOutput))
	f, err := os.Open(path)
	if err != nil {
		path = filepath.Join(b.cfg.OutputDir, exportFileName(incident, !b.cfg.CompressOutput))
		f, err = os.Open(path)
		if err != nil {
			return export, err
		}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return export, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return export, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return export, nil
}

func (b *Backend) writeJSON(path string, data IncidentExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data IncidentExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
