package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lightway-xas/lightway/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "records.db"

// Store owns the SQLite connection and hands out the record store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.lightway/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// DefaultDataDir returns ~/.lightway/data.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lightway", "data"), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Write stores a new record and its columns in one transaction.
func (r *recordStore) Write(ctx context.Context, data *domain.Table, metadata map[string]any, specs []domain.Spec) (string, error) {
	if data == nil {
		return "", fmt.Errorf("%w: record has no data", domain.ErrInvalidInput)
	}

	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return "", err
	}
	specsJSON, err := marshalSpecs(specs)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := r.store.now().UTC().UnixNano()
	idx := indexFields(metadata)

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (id, structure_family, specs, metadata,
			element, edge, dataset, sample_id, channel,
			row_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, domain.StructureFamilyDataframe, specsJSON, metadataJSON,
		idx.element, idx.edge, idx.dataset, idx.sampleID, idx.channel,
		data.Len(), now, now)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO record_columns (record_id, position, name, data) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing column insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range data.Columns() {
		values, _ := data.Column(name)
		if _, err := stmt.ExecContext(ctx, id, i, name, float64SliceToBytes(values)); err != nil {
			return "", fmt.Errorf("inserting column %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing record: %w", err)
	}
	return id, nil
}

// Records yields every record in write order. The ID list is read up
// front, so records written during the iteration are not yielded.
func (r *recordStore) Records(ctx context.Context) iter.Seq2[*domain.Record, error] {
	return func(yield func(*domain.Record, error) bool) {
		ids, err := r.ids(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, id := range ids {
			rec, err := r.Get(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (r *recordStore) ids(ctx context.Context) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT id FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Get retrieves a record and its table by ID.
func (r *recordStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, structure_family, specs, metadata, row_count, created_at, updated_at
		FROM records WHERE id = ?
	`, id)
	rec, rowCount, err := scanRecord(row)
	if err != nil {
		return nil, err
	}

	rec.Data, err = r.table(ctx, id, rowCount)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recordStore) table(ctx context.Context, id string, rowCount int) (*domain.Table, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT name, data FROM record_columns WHERE record_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var (
		names  []string
		values [][]float64
	)
	for rows.Next() {
		var (
			name string
			blob []byte
		)
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		column, err := bytesToFloat64Slice(blob)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if len(column) != rowCount {
			return nil, fmt.Errorf("column %s has %d rows, record has %d", name, len(column), rowCount)
		}
		names = append(names, name)
		values = append(values, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	return domain.TableFromColumns(names, values)
}

// Search returns records whose indexed metadata fields match the query.
func (r *recordStore) Search(ctx context.Context, query domain.RecordQuery) ([]domain.Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value != "" {
			where = append(where, column+" = ?")
			args = append(args, value)
		}
	}
	add("element", query.Element)
	add("edge", query.Edge)
	add("dataset", query.Dataset)
	add("sample_id", query.SampleID)
	add("channel", query.Channel)

	q := "SELECT id FROM records"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY rowid"

	rows, err := r.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning record id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	result := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, nil
}

// UpdateMetadata replaces the metadata document and re-derives the indexed fields.
func (r *recordStore) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) error {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}
	idx := indexFields(metadata)

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE records SET metadata = ?, element = ?, edge = ?, dataset = ?,
			sample_id = ?, channel = ?, updated_at = ?
		WHERE id = ?
	`, metadataJSON, idx.element, idx.edge, idx.dataset, idx.sampleID, idx.channel,
		r.store.now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("updating metadata: %w", err)
	}
	return requireAffected(result, id)
}

// Delete removes a record and its columns.
func (r *recordStore) Delete(ctx context.Context, id string) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM record_columns WHERE record_id = ?", id); err != nil {
		return fmt.Errorf("deleting columns: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if err := requireAffected(result, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (r *recordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// ==================== Helpers ====================

// indexed holds the metadata fields mirrored into searchable columns.
// Missing or non-string values are stored as NULL.
type indexed struct {
	element, edge, dataset, sampleID, channel sql.NullString
}

func indexFields(md map[string]any) indexed {
	field := func(path ...string) sql.NullString {
		v, ok := domain.Lookup(md, path...)
		if !ok {
			return sql.NullString{}
		}
		s, ok := v.(string)
		return sql.NullString{String: s, Valid: ok}
	}
	return indexed{
		element:  field("sample_metadata", "element"),
		edge:     field("sample_metadata", "edge"),
		dataset:  field(domain.DatasetKey),
		sampleID: field("experiment_metadata", "sample_id"),
		channel:  field(domain.ChannelKey),
	}
}

func marshalMetadata(md map[string]any) (string, error) {
	if md == nil {
		md = map[string]any{}
	}
	data, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(data), nil
}

func marshalSpecs(specs []domain.Spec) (string, error) {
	if specs == nil {
		specs = []domain.Spec{}
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return "", fmt.Errorf("marshalling specs: %w", err)
	}
	return string(data), nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// float64SliceToBytes packs values as little-endian IEEE 754 doubles.
func float64SliceToBytes(floats []float64) []byte {
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// bytesToFloat64Slice unpacks a blob written by float64SliceToBytes.
func bytesToFloat64Slice(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(data))
	}
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats, nil
}

func scanRecord(row *sql.Row) (*domain.Record, int, error) {
	var (
		rec          domain.Record
		specsJSON    string
		metadataJSON string
		rowCount     int
		createdAt    int64
		updatedAt    int64
	)
	err := row.Scan(&rec.ID, &rec.StructureFamily, &specsJSON, &metadataJSON,
		&rowCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, fmt.Errorf("record: %w", domain.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("scanning record: %w", err)
	}

	if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
		return nil, 0, fmt.Errorf("unmarshalling specs: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
		return nil, 0, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rec, rowCount, nil
}
