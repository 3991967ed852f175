package camera

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cameras (
    id             SERIAL PRIMARY KEY,
    camera_id      TEXT NOT NULL UNIQUE,
    latitude       INTEGER NOT NULL,
    longitude      INTEGER NOT NULL,
    altitude       DOUBLE PRECISION NOT NULL DEFAULT 0,
    range_m        DOUBLE PRECISION NOT NULL,
    fov            DOUBLE PRECISION NOT NULL,
    heading        DOUBLE PRECISION NOT NULL,
    pitch          DOUBLE PRECISION NOT NULL DEFAULT 0,
    roll           DOUBLE PRECISION NOT NULL DEFAULT 0,
    status         TEXT NOT NULL DEFAULT 'active',
    camera_type    TEXT NOT NULL DEFAULT 'Standard Surveillance',
    feed_url       TEXT,
    feed_username  TEXT,
    feed_password  TEXT,
    last_detection TIMESTAMPTZ
)`

const selectColumns = `id, camera_id, latitude, longitude, altitude, range_m, fov, heading, pitch, roll,
       status, camera_type, feed_url, feed_username, feed_password, last_detection`

// PostgresRegistry stores cameras in PostgreSQL. Coordinates are kept as
// integer microdegrees.
type PostgresRegistry struct {
	db *sql.DB
}

// NewPostgresRegistry wraps an open database handle.
func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the cameras table when missing.
func (r *PostgresRegistry) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create cameras table: %w", err)
	}
	return nil
}

// Reset removes every camera.
func (r *PostgresRegistry) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cameras`); err != nil {
		return fmt.Errorf("clear cameras: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCamera(s rowScanner) (Camera, error) {
	var (
		c                  Camera
		lat, lon           int64
		feedURL, user, pwd sql.NullString
		last               sql.NullTime
	)
	err := s.Scan(&c.ID, &c.CameraID, &lat, &lon, &c.Altitude, &c.Range, &c.FOV, &c.Heading,
		&c.Pitch, &c.Roll, &c.Status, &c.CameraType, &feedURL, &user, &pwd, &last)
	if err != nil {
		return Camera{}, err
	}
	c.Latitude = FromMicrodegrees(lat)
	c.Longitude = FromMicrodegrees(lon)
	c.FeedURL = feedURL.String
	c.FeedUsername = user.String
	c.FeedPassword = pwd.String
	if last.Valid {
		t := last.Time.UTC()
		c.LastDetection = &t
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRegistry) List(ctx context.Context) ([]Camera, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM cameras ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	cams := []Camera{}
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cams = append(cams, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cams, nil
}

func (r *PostgresRegistry) Get(ctx context.Context, id int64) (Camera, error) {
	return r.getOne(ctx, r.db, `SELECT `+selectColumns+` FROM cameras WHERE id = $1`, id)
}

func (r *PostgresRegistry) GetByCameraID(ctx context.Context, cameraID string) (Camera, error) {
	return r.getOne(ctx, r.db, `SELECT `+selectColumns+` FROM cameras WHERE camera_id = $1`, cameraID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PostgresRegistry) getOne(ctx context.Context, q queryRower, query string, arg any) (Camera, error) {
	c, err := scanCamera(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Camera{}, ErrNotFound
	}
	if err != nil {
		return Camera{}, fmt.Errorf("get camera: %w", err)
	}
	return c, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, in Input) (Camera, error) {
	if err := in.Validate(false); err != nil {
		return Camera{}, err
	}
	c := newCamera(in)
	query := `
        INSERT INTO cameras (camera_id, latitude, longitude, altitude, range_m, fov, heading, pitch, roll,
                             status, camera_type, feed_url, feed_username, feed_password)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING ` + selectColumns
	created, err := scanCamera(r.db.QueryRowContext(ctx, query,
		c.CameraID, ToMicrodegrees(c.Latitude), ToMicrodegrees(c.Longitude), c.Altitude, c.Range,
		c.FOV, c.Heading, c.Pitch, c.Roll, c.Status, c.CameraType,
		nullString(c.FeedURL), nullString(c.FeedUsername), nullString(c.FeedPassword),
	))
	if err != nil {
		return Camera{}, mapWriteErr("insert camera", err)
	}
	return created, nil
}

func (r *PostgresRegistry) Update(ctx context.Context, id int64, in Input) (Camera, error) {
	if err := in.Validate(true); err != nil {
		return Camera{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Camera{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	c, err := r.getOne(ctx, tx, `SELECT `+selectColumns+` FROM cameras WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return Camera{}, err
	}
	apply(&c, in)

	query := `
        UPDATE cameras
        SET camera_id = $2, latitude = $3, longitude = $4, altitude = $5, range_m = $6, fov = $7,
            heading = $8, pitch = $9, roll = $10, status = $11, camera_type = $12,
            feed_url = $13, feed_username = $14, feed_password = $15
        WHERE id = $1
        RETURNING ` + selectColumns
	updated, err := scanCamera(tx.QueryRowContext(ctx, query, id,
		c.CameraID, ToMicrodegrees(c.Latitude), ToMicrodegrees(c.Longitude), c.Altitude, c.Range,
		c.FOV, c.Heading, c.Pitch, c.Roll, c.Status, c.CameraType,
		nullString(c.FeedURL), nullString(c.FeedUsername), nullString(c.FeedPassword),
	))
	if err != nil {
		return Camera{}, mapWriteErr("update camera", err)
	}
	if err := tx.Commit(); err != nil {
		return Camera{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (r *PostgresRegistry) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cameras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete camera: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRegistry) RecordDetection(ctx context.Context, cameraID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cameras SET last_detection = $2 WHERE camera_id = $1`, cameraID, at.UTC())
	if err != nil {
		return fmt.Errorf("record detection: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateCameraID
	}
	return fmt.Errorf("%s: %w", op, err)
}
