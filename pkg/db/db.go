// Package db keeps the history of generated EDIDs and virtual display
// sessions in SQLite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned when a lookup matches no record
var ErrNotFound = errors.New("record not found")

// DB wraps the SQL database connection
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens a SQLite database
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn: conn,
		path: path,
	}

	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate creates or updates the database schema
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS edids (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		refresh_hz INTEGER NOT NULL,
		hdr BOOLEAN DEFAULT 0,
		name TEXT NOT NULL,
		requested TEXT,
		vic INTEGER DEFAULT 0,
		fallback BOOLEAN DEFAULT 0,
		clock_mhz REAL NOT NULL,
		path TEXT,
		data BLOB NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		edid_uid TEXT,
		device TEXT,
		card TEXT NOT NULL,
		port TEXT NOT NULL,
		previous TEXT,
		host TEXT,
		connected_at DATETIME NOT NULL,
		disconnected_at DATETIME,
		FOREIGN KEY (edid_uid) REFERENCES edids(uid) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edids_created_at ON edids(created_at);
	CREATE INDEX IF NOT EXISTS idx_edids_source ON edids(source);
	CREATE INDEX IF NOT EXISTS idx_sessions_connector ON sessions(card, port);
	CREATE INDEX IF NOT EXISTS idx_sessions_connected_at ON sessions(connected_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

const edidColumns = `id, uid, source, width, height, refresh_hz, hdr, name,
	requested, vic, fallback, clock_mhz, path, data, created_at`

const sessionColumns = `id, uid, edid_uid, device, card, port, previous, host,
	connected_at, disconnected_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEDID(s scanner) (*EDIDRecord, error) {
	rec := &EDIDRecord{}
	var requested, path sql.NullString
	err := s.Scan(
		&rec.ID, &rec.UID, &rec.Source, &rec.Width, &rec.Height, &rec.RefreshHz,
		&rec.HDR, &rec.Name, &requested, &rec.VIC, &rec.Fallback, &rec.ClockMHz,
		&path, &rec.Data, &rec.CreatedAt,
	)
	rec.Requested = requested.String
	rec.Path = path.String
	return rec, err
}

func scanSession(s scanner) (*Session, error) {
	sess := &Session{}
	var edidUID, device, previous sql.NullString
	err := s.Scan(
		&sess.ID, &sess.UID, &edidUID, &device, &sess.Card, &sess.Port,
		&previous, &sess.Host, &sess.ConnectedAt, &sess.DisconnectedAt,
	)
	sess.EDIDUID = edidUID.String
	sess.Device = device.String
	sess.Previous = splitPorts(previous.String)
	return sess, err
}

// CreateEDID stores a generated EDID, filling in its UID and timestamp
func (db *DB) CreateEDID(rec *EDIDRecord) error {
	if rec.UID == "" {
		rec.UID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := db.conn.Exec(
		`INSERT INTO edids (uid, source, width, height, refresh_hz, hdr, name,
		 requested, vic, fallback, clock_mhz, path, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UID, rec.Source, rec.Width, rec.Height, rec.RefreshHz, rec.HDR, rec.Name,
		rec.Requested, rec.VIC, rec.Fallback, rec.ClockMHz, rec.Path, rec.Data, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create EDID record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// GetEDID retrieves an EDID record by numeric ID or UID
func (db *DB) GetEDID(ref string) (*EDIDRecord, error) {
	rec, err := scanEDID(db.conn.QueryRow(
		`SELECT `+edidColumns+` FROM edids WHERE uid = ? OR CAST(id AS TEXT) = ?`,
		ref, ref,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("EDID %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get EDID: %w", err)
	}
	return rec, nil
}

// ListEDIDs retrieves EDID records newest first
func (db *DB) ListEDIDs(filter EDIDFilter) ([]*EDIDRecord, error) {
	query := `SELECT ` + edidColumns + ` FROM edids WHERE 1=1`
	args := []interface{}{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}

	if filter.HDR != nil {
		query += " AND hdr = ?"
		args = append(args, *filter.HDR)
	}

	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.Since)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list EDIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*EDIDRecord
	for rows.Next() {
		rec, err := scanEDID(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan EDID: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CreateSession records a newly connected virtual display
func (db *DB) CreateSession(sess *Session) error {
	if sess.UID == "" {
		sess.UID = uuid.NewString()
	}
	if sess.ConnectedAt.IsZero() {
		sess.ConnectedAt = time.Now()
	}

	var edidUID interface{}
	if sess.EDIDUID != "" {
		edidUID = sess.EDIDUID
	}

	result, err := db.conn.Exec(
		`INSERT INTO sessions (uid, edid_uid, device, card, port, previous, host, connected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.UID, edidUID, sess.Device, sess.Card, sess.Port,
		joinPorts(sess.Previous), sess.Host, sess.ConnectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	sess.ID = id
	return nil
}

// ActiveSession returns the latest session on a connector that has not
// been disconnected
func (db *DB) ActiveSession(card, port string) (*Session, error) {
	sess, err := scanSession(db.conn.QueryRow(activeSessionQuery, card, port))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active session on %s-%s: %w", card, port, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return sess, nil
}

const activeSessionQuery = `SELECT ` + sessionColumns + ` FROM sessions
	WHERE card = ? AND port = ? AND disconnected_at IS NULL
	ORDER BY connected_at DESC, id DESC LIMIT 1`

// CloseSession marks the latest active session on a connector as
// disconnected and returns it
func (db *DB) CloseSession(card, port string, at time.Time) (*Session, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Only rollback if we haven't committed
		_ = tx.Rollback()
	}()

	sess, err := scanSession(tx.QueryRow(activeSessionQuery, card, port))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active session on %s-%s: %w", card, port, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if _, err := tx.Exec(`UPDATE sessions SET disconnected_at = ? WHERE id = ?`, at, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.DisconnectedAt = &at
	return sess, nil
}

// GetSession retrieves a session by numeric ID or UID
func (db *DB) GetSession(ref string) (*Session, error) {
	sess, err := scanSession(db.conn.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE uid = ? OR CAST(id AS TEXT) = ?`,
		ref, ref,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// ListSessions retrieves sessions newest first
func (db *DB) ListSessions(filter SessionFilter) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := []interface{}{}

	if filter.Card != "" {
		query += " AND card = ?"
		args = append(args, filter.Card)
	}

	if filter.ActiveOnly {
		query += " AND disconnected_at IS NULL"
	}

	query += " ORDER BY connected_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}
