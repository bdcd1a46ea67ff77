// internal/scraper/engine.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/ListScrapexter/internal/output"
	"github.com/valpere/ListScrapexter/internal/registry"
	"github.com/valpere/ListScrapexter/internal/utils"
)

// ExportResult describes a completed export.
type ExportResult struct {
	Registry string              `json:"registry"`
	Rows     int                 `json:"rows"`
	Columns  []string            `json:"columns"`
	Pages    int                 `json:"pages"`
	Format   output.OutputFormat `json:"format"`
	Filename string              `json:"filename"`
	Bytes    int                 `json:"bytes"`
	Duration time.Duration       `json:"duration"`
	// Interrupted is the error that cut pagination short, if any.
	Interrupted error `json:"-"`
}

// Exporter runs the whole export: collect, render, name, download.
type Exporter struct {
	collector  *Collector
	renderer   *output.Manager
	namer      output.Namer
	downloader output.Downloader
	logger     utils.Logger
	recorder   Recorder
}

// NewExporter wires the export pipeline. The recorder of the collector's
// options also receives export metrics.
func NewExporter(collector *Collector, renderer *output.Manager, namer output.Namer, downloader output.Downloader, logger utils.Logger) *Exporter {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	var recorder Recorder = nopRecorder{}
	if collector != nil {
		recorder = collector.opts.Recorder
	}
	return &Exporter{
		collector:  collector,
		renderer:   renderer,
		namer:      namer,
		downloader: downloader,
		logger:     logger,
		recorder:   recorder,
	}
}

// Export collects rows with primary, falling back to fallback when primary
// yields nothing, and hands the rendered table to the downloader. When no
// registry produced a row it returns ErrEmptyResult and downloads nothing.
// Download failures wrap output.ErrDownloadFailed.
func (e *Exporter) Export(ctx context.Context, primary, fallback *registry.Registry) (*ExportResult, error) {
	if e.collector == nil || e.renderer == nil || e.downloader == nil {
		return nil, fmt.Errorf("exporter is not fully configured")
	}
	start := time.Now()

	collection, err := e.collector.CollectWithFallback(ctx, primary, fallback)
	if err != nil {
		return nil, err
	}
	if collection.Rows() == 0 {
		return nil, ErrEmptyResult
	}

	artifact, err := e.renderer.Render(collection.Store)
	if err != nil {
		return nil, err
	}

	filename := e.namer.Filename(collection.Rows(), artifact.Extension())
	e.logger.Infof("exporting %d rows from %s registry to %s", collection.Rows(), collection.Registry, filename)

	if err := e.downloader.Download(ctx, filename, artifact.Content, artifact.MimeType); err != nil {
		if !errors.Is(err, output.ErrDownloadFailed) {
			err = fmt.Errorf("%w: %v", output.ErrDownloadFailed, err)
		}
		return nil, err
	}
	e.recorder.Exported(string(artifact.Format), collection.Rows())

	return &ExportResult{
		Registry:    collection.Registry,
		Rows:        collection.Rows(),
		Columns:     collection.Store.Columns(),
		Pages:       collection.Pages,
		Format:      artifact.Format,
		Filename:    filename,
		Bytes:       len(artifact.Content),
		Duration:    time.Since(start),
		Interrupted: collection.Interrupted,
	}, nil
}
