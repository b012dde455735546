// Package output publishes ranked results to the configured sink: the console,
// partitioned JSON, CSV or Parquet files (locally or on S3), or Kafka.
package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/chrisdamba/foodmatch/internal/models"
)

type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// New picks the destination for cfg. Kafka wins over the file formats when
// enabled. Console output goes to console.
func New(ctx context.Context, cfg *models.Config, console io.Writer, logger *slog.Logger) (Destination, error) {
	if cfg.Kafka.Enabled {
		producer, err := NewSaramaProducer(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		return NewKafkaOutput(producer, cfg.Kafka.Topic), nil
	}

	switch cfg.Output.Format {
	case "parquet":
		return NewParquetOutput(ctx, cfg.Output, logger)
	case "json":
		return NewJSONOutput(cfg.Output.Path, cfg.Output.Folder), nil
	case "csv":
		return NewCSVOutput(cfg.Output.Path, cfg.Output.Folder), nil
	case "console", "":
		return NewConsoleOutput(console), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Output.Format)
	}
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput appends one JSON document per line to
// <path>/<folder>/<topic>/year=/month=/day=/hour=/data.json.
type JSONOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	timestamp, err := eventTimestamp(msg)
	if err != nil {
		return err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, msg); err != nil {
		return err
	}
	compact.WriteByte('\n')

	partition := partitionPath(timestamp)
	fileKey := topic + "_" + partition

	j.mu.Lock()
	defer j.mu.Unlock()

	file, ok := j.files[fileKey]
	if !ok {
		fullPath := filepath.Join(j.basePath, j.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	_, err = file.Write(compact.Bytes())
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var firstErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(j.files, key)
	}
	return firstErr
}

// CSVOutput writes the same partition layout as JSONOutput with one column per
// event field, sorted by name. The header is written once per file.
type CSVOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
	writers  map[string]*csv.Writer
	headers  map[string][]string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
		writers:  make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(msg))
	decoder.UseNumber()
	var event map[string]interface{}
	if err := decoder.Decode(&event); err != nil {
		return err
	}
	timestamp, err := eventTimestamp(msg)
	if err != nil {
		return err
	}

	partition := partitionPath(timestamp)
	fileKey := topic + "_" + partition

	c.mu.Lock()
	defer c.mu.Unlock()

	csvWriter, ok := c.writers[fileKey]
	if !ok {
		fullPath := filepath.Join(c.basePath, c.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err := os.OpenFile(filepath.Join(fullPath, "data.csv"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return err
		}
		csvWriter = csv.NewWriter(file)
		headers := c.getHeaders(event)
		if info.Size() == 0 {
			if err := csvWriter.Write(headers); err != nil {
				file.Close()
				return err
			}
		}
		c.files[fileKey] = file
		c.writers[fileKey] = csvWriter
		c.headers[fileKey] = headers
	}

	row := make([]string, len(c.headers[fileKey]))
	for i, header := range c.headers[fileKey] {
		if value, ok := event[header]; ok && value != nil {
			row[i] = fmt.Sprintf("%v", value)
		}
	}
	if err := csvWriter.Write(row); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) getHeaders(event map[string]interface{}) []string {
	headers := make([]string, 0, len(event))
	for key := range event {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for key, csvWriter := range c.writers {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := c.files[key].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.writers, key)
		delete(c.files, key)
	}
	return firstErr
}
