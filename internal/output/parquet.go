package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/chrisdamba/foodmatch/internal/cloudwriter"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/lucsky/cuid"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// ParquetOutput keeps one open writer per topic and hour partition. Every run
// writes new part files, so earlier runs are never overwritten.
type ParquetOutput struct {
	basePath           string
	folder             string
	logger             *slog.Logger
	mu                 sync.Mutex
	writers            map[string]*writer.ParquetWriter
	writerMutexes      map[string]*sync.Mutex
	files              map[string]source.ParquetFile
	ctx                context.Context
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetOutput(ctx context.Context, cfg models.OutputConfig, logger *slog.Logger) (*ParquetOutput, error) {
	var factory cloudwriter.CloudWriterFactory
	if cfg.Destination == "cloud" {
		var err error
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err = cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
	}
	return newParquetOutput(ctx, cfg, factory, logger), nil
}

func newParquetOutput(ctx context.Context, cfg models.OutputConfig, factory cloudwriter.CloudWriterFactory, logger *slog.Logger) *ParquetOutput {
	return &ParquetOutput{
		basePath:           cfg.Path,
		folder:             cfg.Folder,
		logger:             logger,
		writers:            make(map[string]*writer.ParquetWriter),
		writerMutexes:      make(map[string]*sync.Mutex),
		files:              make(map[string]source.ParquetFile),
		ctx:                ctx,
		cloudWriterFactory: factory,
		cloudBucketName:    cfg.CloudStorage.BucketName,
	}
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	event, err := decodeEvent(topic, msg)
	if err != nil {
		return err
	}

	partition := partitionPath(event.Timestamp)
	writerKey := topic + "_" + partition

	p.mu.Lock()
	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.createNewWriter(writerKey, topic, partition)
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}
	writerMutex := p.writerMutexes[writerKey]
	p.mu.Unlock()

	writerMutex.Lock()
	defer writerMutex.Unlock()
	if err := pw.Write(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// createNewWriter must be called with p.mu held.
func (p *ParquetOutput) createNewWriter(writerKey, topic, partition string) (*writer.ParquetWriter, error) {
	fileName := fmt.Sprintf("part-%s.parquet", cuid.New())

	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.folder, topic, partition, fileName)
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.ctx, p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cloudWriter)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, topic, partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		var err error
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, fileName))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(RankedResultEvent), 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	p.writers[writerKey] = pw
	p.writerMutexes[writerKey] = &sync.Mutex{}
	p.files[writerKey] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pw := range p.writers {
		mutex := p.writerMutexes[key]
		mutex.Lock()
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			p.logger.Error("closing parquet writer", "key", key, "error", err)
		}
		if err := p.files[key].Close(); err != nil {
			lastErr = err
			p.logger.Error("closing parquet file", "key", key, "error", err)
		}
		mutex.Unlock()
		delete(p.writers, key)
		delete(p.writerMutexes, key)
		delete(p.files, key)
	}
	return lastErr
}

// CloudParquetFile adapts a write-only CloudWriter to source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the receiver; the object only exists once Close uploads it.
func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
