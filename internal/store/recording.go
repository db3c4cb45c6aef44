package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/bird/internal/hand"
)

// Recording is a captured sequence of hand frames for one hand.
type Recording struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Hand      hand.Chirality `json:"hand"`
	TickHz    int            `json:"tick_hz"`
	Frames    int            `json:"frames"`
	CreatedAt time.Time      `json:"created_at"`
}

// RecordingRepository stores recordings and their frames.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create inserts an empty recording.
func (r *RecordingRepository) Create(rec *Recording) error {
	rec.CreatedAt = time.Now()
	rec.Frames = 0

	_, err := r.db.Exec(
		`INSERT INTO recordings (id, name, hand, tick_hz, frames, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		rec.ID, rec.Name, rec.Hand.String(), rec.TickHz, rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*Recording, error) {
	rec, err := scanRecording(r.db.QueryRow(
		`SELECT id, name, hand, tick_hz, frames, created_at FROM recordings WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, name, hand, tick_hz, frames, created_at FROM recordings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recordings, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

// AppendFrames adds frames to the end of a recording in one transaction.
func (r *RecordingRepository) AppendFrames(id string, frames []hand.Frame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT frames FROM recordings WHERE id = ?`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO recording_frames (recording_id, sequence, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", count+i, err)
		}
		if _, err := stmt.Exec(id, count+i, string(data)); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`UPDATE recordings SET frames = ? WHERE id = ?`, count+len(frames), id); err != nil {
		return err
	}

	return tx.Commit()
}

// Frames returns every frame of a recording in capture order.
func (r *RecordingRepository) Frames(id string) ([]hand.Frame, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT data FROM recording_frames WHERE recording_id = ? ORDER BY sequence`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []hand.Frame
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var f hand.Frame
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

func scanRecording(s scanner) (*Recording, error) {
	rec := &Recording{}
	var chirality string
	if err := s.Scan(&rec.ID, &rec.Name, &chirality, &rec.TickHz, &rec.Frames, &rec.CreatedAt); err != nil {
		return nil, err
	}
	h, err := hand.ParseChirality(chirality)
	if err != nil {
		return nil, err
	}
	rec.Hand = h
	return rec, nil
}
