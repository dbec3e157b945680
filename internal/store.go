package internal

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// sqliteHeader is the first 16 bytes of every SQLite 3 database file
var sqliteHeader = []byte("SQLite format 3\x00")

// Dialect identifies the SQL flavour behind a Store
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store persists video records, transcripts and chat responses
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// ParseDatabaseURL returns the dialect, driver name and DSN for a database URL.
// Bare paths, sqlite:/// and sqlite:// URLs select SQLite, postgres:// URLs select PostgreSQL.
func ParseDatabaseURL(databaseURL string) (Dialect, string, string, error) {
	switch {
	case databaseURL == "":
		return "", "", "", errors.New("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DialectPostgres, "pgx", databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite:///"):
		return DialectSQLite, "sqlite", strings.TrimPrefix(databaseURL, "sqlite:///"), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return DialectSQLite, "sqlite", strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.Contains(databaseURL, "://"):
		return "", "", "", fmt.Errorf("unsupported database URL: %s", databaseURL)
	default:
		return DialectSQLite, "sqlite", databaseURL, nil
	}
}

// OpenStore connects to the database at databaseURL without creating tables
func OpenStore(ctx context.Context, databaseURL string) (*Store, error) {
	dialect, driver, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1) // SQLite: single writer
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// Dialect reports which SQL flavour the store talks to
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the tables. An empty schemaFile applies the built-in schema
// for the store's dialect; otherwise the file's statements are executed.
func (s *Store) Init(ctx context.Context, schemaFile string) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}

	if schemaFile != "" {
		content, err := os.ReadFile(schemaFile)
		if err != nil {
			return fmt.Errorf("reading schema file: %w", err)
		}
		schema = string(content)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// SaveVideo inserts or replaces the record with the same ID
func (s *Store) SaveVideo(ctx context.Context, v VideoRecord) error {
	if v.ID == "" {
		return ErrEmptyVideoID
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO VIDEO (
		id, title, url, upload_date, duration, description, genre, channel_id,
		thumbnail_url, player_type, regions_allowed, is_paid, is_unlisted,
		is_family_friendly, views, likes, dislikes, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title, url = excluded.url, upload_date = excluded.upload_date,
		duration = excluded.duration, description = excluded.description, genre = excluded.genre,
		channel_id = excluded.channel_id, thumbnail_url = excluded.thumbnail_url,
		player_type = excluded.player_type, regions_allowed = excluded.regions_allowed,
		is_paid = excluded.is_paid, is_unlisted = excluded.is_unlisted,
		is_family_friendly = excluded.is_family_friendly, views = excluded.views,
		likes = excluded.likes, dislikes = excluded.dislikes, updated_at = excluded.updated_at`),
		v.ID, v.Title, v.URL, v.UploadDate, v.Duration, v.Description, v.Genre, v.ChannelID,
		v.ThumbnailURL, v.PlayerType, v.RegionsAllowed, boolToInt(v.IsPaid), boolToInt(v.IsUnlisted),
		boolToInt(v.IsFamilyFriendly), v.Views, v.Likes, v.Dislikes, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving video %s: %w", v.ID, err)
	}
	return nil
}

// Video loads a stored record, returning ErrNotFound when there is none
func (s *Store) Video(ctx context.Context, id string) (VideoRecord, error) {
	var v VideoRecord
	var paid, unlisted, familyFriendly int64

	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT
		id, title, url, upload_date, duration, description, genre, channel_id,
		thumbnail_url, player_type, regions_allowed, is_paid, is_unlisted,
		is_family_friendly, views, likes, dislikes
	FROM VIDEO WHERE id = ?`), id).Scan(
		&v.ID, &v.Title, &v.URL, &v.UploadDate, &v.Duration, &v.Description, &v.Genre, &v.ChannelID,
		&v.ThumbnailURL, &v.PlayerType, &v.RegionsAllowed, &paid, &unlisted,
		&familyFriendly, &v.Views, &v.Likes, &v.Dislikes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return VideoRecord{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return VideoRecord{}, fmt.Errorf("loading video %s: %w", id, err)
	}

	v.IsPaid = paid != 0
	v.IsUnlisted = unlisted != 0
	v.IsFamilyFriendly = familyFriendly != 0
	return v, nil
}

// DeleteVideo removes a video with its transcript rows. Chat responses are kept.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM VIDEO WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("deleting video %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return s.deleteTranscriptRows(ctx, tx, id, true)
	})
}

// SaveTranscript replaces the stored caption track and its segments for a video
func (s *Store) SaveTranscript(ctx context.Context, t *Transcript) error {
	if t.VideoID == "" {
		return ErrEmptyVideoID
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.deleteTranscriptRows(ctx, tx, t.VideoID, false); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO TRANSCRIPT (video_id, url, language_code, is_generated) VALUES (?, ?, ?, ?)`),
			t.VideoID, t.URL, t.LanguageCode, boolToInt(t.IsGenerated),
		); err != nil {
			return fmt.Errorf("inserting transcript %s: %w", t.VideoID, err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO TRANSCRIPT_TEXT (video_id, text_data, start_time, duration) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("preparing transcript insert: %w", err)
		}
		defer stmt.Close()

		for _, seg := range t.Segments {
			if _, err := stmt.ExecContext(ctx, t.VideoID, seg.Text, seg.Start, seg.Duration); err != nil {
				return fmt.Errorf("inserting transcript segment %s: %w", t.VideoID, err)
			}
		}
		return nil
	})
}

// TranscriptSegments returns the stored segments for a video in start order
func (s *Store) TranscriptSegments(ctx context.Context, id string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT text_data, start_time, duration FROM TRANSCRIPT_TEXT WHERE video_id = ? ORDER BY start_time, id`), id)
	if err != nil {
		return nil, fmt.Errorf("loading transcript %s: %w", id, err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.Text, &seg.Start, &seg.Duration); err != nil {
			return nil, fmt.Errorf("scanning transcript segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading transcript %s: %w", id, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	return segments, nil
}

// SaveTranscriptFile stores the formatted transcript text for a video
func (s *Store) SaveTranscriptFile(ctx context.Context, id string, data []byte) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM TRANSCRIPT_FILE WHERE video_id = ?`), id); err != nil {
			return fmt.Errorf("clearing transcript file %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO TRANSCRIPT_FILE (video_id, data) VALUES (?, ?)`), id, data); err != nil {
			return fmt.Errorf("inserting transcript file %s: %w", id, err)
		}
		return nil
	})
}

// SaveChatResponse appends a chat response and returns its row ID
func (s *Store) SaveChatResponse(ctx context.Context, r *ChatResponse) (int64, error) {
	var videoID any
	if r.VideoID != "" {
		videoID = r.VideoID
	}

	query := `INSERT INTO CHAT_RESPONSE (video_id, model, role, prompt, content, prompt_tokens, completion_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{videoID, r.Model, r.Role, r.Prompt, r.Content, r.PromptTokens, r.CompletionTokens,
		r.CreatedAt.UTC().Format(time.RFC3339)}

	// pgx does not support LastInsertId
	if s.dialect == DialectPostgres {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("saving chat response: %w", err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("saving chat response: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) deleteTranscriptRows(ctx context.Context, tx *sql.Tx, id string, withFile bool) error {
	tables := []string{"TRANSCRIPT_TEXT", "TRANSCRIPT"}
	if withFile {
		tables = append(tables, "TRANSCRIPT_FILE")
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE video_id = ?"), id); err != nil {
			return fmt.Errorf("clearing %s for %s: %w", strings.ToLower(table), id, err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// tableNames lists the tables created by the built-in schema, dependents first
var tableNames = []string{"CHAT_RESPONSE", "TRANSCRIPT_FILE", "TRANSCRIPT_TEXT", "TRANSCRIPT", "VIDEO"}

// DropTables removes every table of the built-in schema
func (s *Store) DropTables(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range tableNames {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("dropping %s: %w", table, err)
			}
		}
		return nil
	})
}

// IsSQLite3DB reports whether filename is an existing SQLite 3 database file
func IsSQLite3DB(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer f.Close()

	// a valid file is at least one 100-byte header long
	header := make([]byte, 100)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return bytes.Equal(header[:16], sqliteHeader)
}

// DropDB removes a SQLite database file. It reports whether a file was removed.
func DropDB(path string) (bool, error) {
	if !FileExists(path) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("removing database: %w", err)
	}
	return true, nil
}
