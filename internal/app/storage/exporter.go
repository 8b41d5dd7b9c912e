package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zimage/internal/app/db"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

// ImageSource downloads a job's generated image.
type ImageSource interface {
	Image(ctx context.Context, jobID string) ([]byte, string, error)
}

// Ledger records completed exports.
type Ledger interface {
	RecordExport(ctx context.Context, rec db.ExportRecord) error
}

// statter is implemented by sinks that can tell whether an export already exists.
type statter interface {
	Stat(ctx context.Context, name string) (ObjectInfo, bool, error)
}

// Exporter copies job images into a Sink and records each copy in the ledger.
type Exporter struct {
	images ImageSource
	sink   Sink
	ledger Ledger
	logger zerolog.Logger

	// Overwrite re-uploads images the sink already holds with the same size.
	Overwrite bool
}

// NewExporter wires an Exporter.
func NewExporter(images ImageSource, sink Sink, ledger Ledger) *Exporter {
	return &Exporter{
		images: images,
		sink:   sink,
		ledger: ledger,
		logger: logx.Component("export").With().Str("sink", sink.Name()).Logger(),
	}
}

// Export downloads the image of jobID, validates it and stores it in the sink.
func (e *Exporter) Export(ctx context.Context, jobID string) (db.ExportRecord, error) {
	data, declared, err := e.images.Image(ctx, jobID)
	if err != nil {
		return db.ExportRecord{}, err
	}

	mimeType := DetectMIME(data, declared)
	if vErr := ValidateImage(len(data), mimeType); vErr != nil {
		return db.ExportRecord{}, vErr
	}

	name := ExportName(jobID, mimeType)
	rec := db.ExportRecord{JobID: jobID, Sink: e.sink.Name(), Bytes: int64(len(data))}

	if location, ok := e.existing(ctx, name, rec.Bytes); ok {
		e.logger.Info().Str("job_id", jobID).Str("location", location).Msg("Export already present, skipping upload")
		rec.Location = location
	} else {
		location, err := e.sink.Put(ctx, name, data, mimeType)
		if err != nil {
			return db.ExportRecord{}, err
		}
		rec.Location = location
	}

	rec.ExportedAt = time.Now().Unix()
	if err := e.ledger.RecordExport(ctx, rec); err != nil {
		return db.ExportRecord{}, errs.Wrap(errs.ErrStorage, err)
	}

	e.logger.Info().Str("job_id", jobID).Str("location", rec.Location).Int64("bytes", rec.Bytes).Msg("Image exported")
	return rec, nil
}

// existing returns the location of an identical export already held by the sink.
func (e *Exporter) existing(ctx context.Context, name string, size int64) (string, bool) {
	st, ok := e.sink.(statter)
	if e.Overwrite || !ok {
		return "", false
	}

	info, found, err := st.Stat(ctx, name)
	if err != nil {
		e.logger.Warn().Err(err).Str("name", name).Msg("Cannot check for an existing export, uploading again")
		return "", false
	}
	if !found || info.Size != size {
		return "", false
	}

	return info.Location, true
}
