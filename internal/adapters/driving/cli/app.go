package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lightway-xas/lightway/internal/adapters/driven/config/file"
	"github.com/lightway-xas/lightway/internal/adapters/driven/storage/memory"
	"github.com/lightway-xas/lightway/internal/adapters/driven/storage/sqlite"
	"github.com/lightway-xas/lightway/internal/connectors"
	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/core/ports/driving"
	"github.com/lightway-xas/lightway/internal/core/services"
	"github.com/lightway-xas/lightway/internal/logger"
	"github.com/lightway-xas/lightway/internal/normalisers/iss"
	"github.com/lightway-xas/lightway/internal/validators"
)

// LockFile is created in the data directory while a run writes records.
const LockFile = "lightway.lock"

// app is the wiring for one command invocation.
type app struct {
	settings *file.ConfigStore
	config   *file.Config
	store    driven.RecordStore
	dataDir  string

	db   *sqlite.Store
	lock *flock.Flock
}

// loadConfig opens the config file named by --config and resolves the
// effective configuration.
func loadConfig() (*file.ConfigStore, *file.Config, error) {
	settings, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := file.Load(settings)
	if err != nil {
		return nil, nil, err
	}
	return settings, cfg, nil
}

// openApp loads configuration and opens the configured record store.
// A dry run always uses a fresh in-memory store.
func openApp(dryRun bool) (*app, error) {
	settings, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, config: cfg}

	if dryRun || cfg.Store.Backend == file.BackendMemory {
		logger.Debug("Using in-memory record store")
		a.store = memory.NewRecordStore()
		return a, nil
	}

	a.dataDir = cfg.Store.DataDir
	if a.dataDir == "" {
		if a.dataDir, err = sqlite.DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	db, err := sqlite.NewStore(a.dataDir)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	logger.Debug("Using record store %s", db.Path())
	a.db = db
	a.store = db.RecordStore()
	return a, nil
}

// acquireLock takes the data directory's write lock. Memory stores need
// no lock. Returns ErrIngestInProgress when another run holds it.
func (a *app) acquireLock() error {
	if a.db == nil {
		return nil
	}
	lock := flock.New(filepath.Join(a.dataDir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is locked by another run", domain.ErrIngestInProgress, a.dataDir)
	}
	a.lock = lock
	return nil
}

// Close releases the lock and closes the store.
func (a *app) Close() error {
	var errs []error
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close record store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ingestService wires the ingest pipeline from configuration.
func (a *app) ingestService(opts driving.IngestOptions) (*services.IngestService, error) {
	validator, err := newValidator(a.config.Validation)
	if err != nil {
		return nil, err
	}
	return services.NewIngestService(
		connectors.NewFactory(),
		services.NewNormaliserRegistry(newNormaliser(a.config)),
		validator,
		a.store,
		opts,
	), nil
}

func (a *app) postprocessService() *services.PostprocessService {
	return services.NewPostprocessService(a.store, a.store)
}

func (a *app) recordService() *services.RecordService {
	return services.NewRecordService(a.store)
}

func newNormaliser(cfg *file.Config) *iss.Normaliser {
	opts := []iss.Option{
		iss.WithSafeKeys(cfg.Ingest.SafeKeys),
		iss.WithStrictHeader(cfg.Ingest.StrictHeader),
		iss.WithPolicy(iss.NumericPolicy(cfg.Derive.Policy)),
		iss.WithFluorescenceSign(iss.FluorescenceSign(cfg.Derive.FluorescenceSign)),
	}
	if len(cfg.Validation.Facilities) > 0 && len(cfg.Validation.Beamlines) > 0 {
		opts = append(opts, iss.WithExperimentDefaults(cfg.Validation.Facilities[0], cfg.Validation.Beamlines[0]))
	}
	return iss.New(opts...)
}

// newValidator builds the record validator. With the schema disabled only
// structure checks run.
func newValidator(cfg file.ValidationConfig) (*validators.Validator, error) {
	if !cfg.Schema {
		return validators.New(nil), nil
	}

	opts := []validators.SchemaOption{
		validators.WithFacilities(cfg.Facilities...),
		validators.WithBeamlines(cfg.Beamlines...),
	}
	if cfg.Vocabulary != "" {
		vocab, err := validators.LoadVocabulary(cfg.Vocabulary)
		if err != nil {
			return nil, err
		}
		opts = append(opts, validators.WithVocabulary(vocab))
	}

	schema, err := validators.NewSchema(opts...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return validators.New(schema), nil
}
