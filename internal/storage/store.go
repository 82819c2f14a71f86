package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/san-kum/mandelscope/internal/export"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/metrics"
	"github.com/san-kum/mandelscope/internal/render"
)

const (
	metadataFile = "metadata.json"
	imageFile    = "image.png"
	countsFile   = "counts.csv"
)

// Store keeps finished renders on disk, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Timestamp time.Time                `json:"timestamp"`
	Params    fractal.RenderParameters `json:"params"`
	Bounds    fractal.Rect             `json:"bounds"`
	Backend   string                   `json:"backend"`
	ElapsedMs int64                    `json:"elapsed_ms"`
	Metrics   map[string]float64       `json:"metrics"`
}

// Save writes the frame's image, iteration counts and metadata under a new
// run directory and returns the run ID.
func (s *Store) Save(name string, frame *render.Frame, backend string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("storage: nil frame")
	}
	if name == "" {
		name = "render"
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%s", sanitize(name), now.Format("20060102-150405.000000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Params:    frame.Params,
		Bounds:    fractal.Bounds(frame.Params),
		Backend:   backend,
		ElapsedMs: frame.Elapsed.Milliseconds(),
		Metrics:   metrics.Summarize(frame.Iterations),
	}

	data, err := sonic.ConfigStd.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), data, 0644); err != nil {
		return "", err
	}

	if err := export.WritePNGFile(filepath.Join(runDir, imageFile), frame.Pixels); err != nil {
		return "", err
	}

	if err := writeCounts(filepath.Join(runDir, countsFile), frame.Iterations); err != nil {
		return "", err
	}

	return runID, nil
}

// writeCounts stores one CSV record per image row.
func writeCounts(path string, buf fractal.IterationBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeCounts(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeCounts(w io.Writer, buf fractal.IterationBuffer) error {
	cw := csv.NewWriter(w)
	row := make([]string, buf.Width)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			row[x] = strconv.Itoa(buf.At(x, y))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := sonic.ConfigStd.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadCounts reads back the iteration buffer of a run.
func (s *Store) LoadCounts(runID string) (fractal.IterationBuffer, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return fractal.IterationBuffer{}, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, countsFile))
	if err != nil {
		return fractal.IterationBuffer{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = meta.Params.Width
	records, err := r.ReadAll()
	if err != nil {
		return fractal.IterationBuffer{}, err
	}
	if len(records) != meta.Params.Height {
		return fractal.IterationBuffer{}, fmt.Errorf("storage: %s has %d rows, want %d: %w",
			runID, len(records), meta.Params.Height, fractal.ErrInvalidDimension)
	}

	buf := fractal.NewIterationBuffer(meta.Params.Width, meta.Params.Height, meta.Params.MaxIterations)
	for y, record := range records {
		for x, field := range record {
			n, err := strconv.Atoi(field)
			if err != nil {
				return fractal.IterationBuffer{}, fmt.Errorf("storage: %s row %d: %w", runID, y, err)
			}
			buf.Counts[y*buf.Width+x] = n
		}
	}
	return buf, nil
}

// ImagePath returns where the run's PNG lives.
func (s *Store) ImagePath(runID string) string {
	return filepath.Join(s.baseDir, runID, imageFile)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}
