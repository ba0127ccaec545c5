package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dwmair/daymeter/internal/audio"
	"github.com/dwmair/daymeter/internal/audio/alsa"
	"github.com/dwmair/daymeter/internal/audio/pulse"
	"github.com/dwmair/daymeter/internal/dsp"
	"github.com/dwmair/daymeter/internal/monitor"
	"github.com/dwmair/daymeter/internal/storage"
)

const (
	storageDir = "data"

	// statusInterval is how often the running levels are reported to the log.
	statusInterval = time.Minute
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	device, err := createDevice(&config.Device, logger)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	params, err := config.Meter.Params()
	if err != nil {
		return fmt.Errorf("failed to resolve analysis params: %w", err)
	}

	options := []func(*monitor.Monitor){monitor.WithLogger(logger)}
	if config.Storage.Enabled {
		store, err := createStorage(&config.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer store.Close()

		options = append(options, monitor.WithStore(store))
	}

	mon, err := monitor.New(device, monitor.Config{
		Params:     params,
		WindowFunc: dsp.WindowFunc(config.Meter.WindowFunc),
		Width:      config.Meter.Width,
	}, options...)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	go reportStatus(ctx, mon, logger)

	return mon.Run(ctx)
}

// reportStatus periodically logs the live level and aggregation progress.
func reportStatus(ctx context.Context, mon *monitor.Monitor, logger *slog.Logger) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		live, ok := mon.Live()
		if !ok {
			continue
		}

		attrs := []any{
			slog.String("level", fmt.Sprintf("%0.1fdB", live.DB)),
			slog.String("damped", fmt.Sprintf("%0.1fdB", live.Damped)),
			slog.Int("buckets", mon.Day().Len()),
			slog.Uint64("scrolls", mon.Day().Scrolls()),
		}
		if min, max, ok := mon.Absolutes(); ok {
			attrs = append(attrs,
				slog.String("minLevel", fmt.Sprintf("%0.1fdB", min)),
				slog.String("maxLevel", fmt.Sprintf("%0.1fdB", max)))
		}
		if degraded := mon.Degraded(); degraded > 0 {
			attrs = append(attrs, slog.Uint64("lateTicks", degraded))
		}

		logger.Info("meter status", attrs...)
	}
}

func createDevice(config *DeviceConfig, logger *slog.Logger) (*audio.Device, error) {
	var handler audio.Handler
	var err error
	switch config.Backend {
	case BackendALSA:
		if handler, err = alsa.New(config.ALSA); err != nil {
			return nil, fmt.Errorf("creating ALSA device: %w", err)
		}

	case BackendPulse:
		if handler, err = pulse.New(config.Pulse); err != nil {
			return nil, fmt.Errorf("creating PulseAudio device: %w", err)
		}

	default:
		return nil, fmt.Errorf("creating device: unknown backend '%s'", config.Backend)
	}

	name := config.Name
	if name == "" {
		name = string(config.Backend)
	}

	return audio.NewDevice(name, handler, audio.WithLogger(logger)), nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("meter_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}
