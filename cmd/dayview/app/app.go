package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dwmair/daymeter/internal/meter"
	"github.com/dwmair/daymeter/internal/storage"
)

const jpegQuality = 98

// Run reads one session's buckets from the database and renders them into a
// day view image.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	return renderDay(ctx, config, store, logger)
}

func renderDay(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger) error {
	iter, err := store.ReadBuckets(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading buckets: %w", err)
	}
	defer func() {
		if err := iter.Close(); err != nil {
			logger.Error("failed to close bucket reader", "error", err)
		}
	}()

	var buckets []meter.Bucket
	for iter.Next(ctx) {
		buckets = append(buckets, iter.Current())
	}
	if err = iter.Error(); err != nil {
		return fmt.Errorf("iterating buckets: %w", err)
	}
	if len(buckets) == 0 {
		return storage.ErrNoData
	}

	sess := iter.Session()
	logger.Info("loaded session",
		"session", sess.ID,
		"source", sess.Source,
		"device", sess.DeviceID,
		"buckets", len(buckets),
		"from", buckets[0].Start,
		"to", buckets[len(buckets)-1].End)

	sky, err := NewSky(config.Latitude, config.Longitude)
	if err != nil {
		return fmt.Errorf("configuring sky shading: %w", err)
	}
	if sky.Enabled() {
		logger.Debug("day/night shading enabled", "lat", *config.Latitude, "long", *config.Longitude)
	}

	renderer, err := NewDayRenderer(RenderConfig{
		Location:      config.TimeZone,
		Theme:         config.Theme,
		FontPath:      config.FontPath,
		Sky:           sky,
		MinLevel:      config.MinLevel,
		MaxLevel:      config.MaxLevel,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	img, err := renderer.Render(meter.NewMinMaxTrack(buckets), meter.NewSpectrumTrack(buckets))
	if err != nil {
		return fmt.Errorf("rendering day view: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("failed to close output file", "error", err)
		}
	}()

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(out, img)
	}
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	logger.Info("day view written", "file", config.OutputFile, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
