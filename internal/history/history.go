// Package history records every applied edit group so a command can be
// reverted with "codeaxe history undo".
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"codeaxe/internal/errors"
	"codeaxe/internal/storage"
)

// CommandUndo is the command name recorded for undo groups.
const CommandUndo = "undo"

// Group is one recorded command application.
type Group struct {
	ID        string    `json:"id"`
	DocPath   string    `json:"docPath"`
	Command   string    `json:"command"`
	CreatedAt time.Time `json:"createdAt"`
	EditCount int       `json:"editCount"`
	Undone    bool      `json:"undone"`
}

// Store persists edit groups in the history database.
type Store struct {
	db       *storage.DB
	logger   *slog.Logger
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
	now      func() time.Time
}

// Open opens the history database at path.
func Open(path string, compress bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := storage.Open(path, logger)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:       db,
		logger:   logger,
		compress: compress,
		enc:      enc,
		dec:      dec,
		now:      time.Now,
	}, nil
}

// Close releases the database and codecs.
func (s *Store) Close() error {
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

// Record stores the before and after content of a document for one command.
func (s *Store) Record(ctx context.Context, docPath, command, before, after string, editCount int) (Group, error) {
	g := Group{
		ID:        uuid.New().String(),
		DocPath:   docPath,
		Command:   command,
		CreatedAt: s.now().UTC(),
		EditCount: editCount,
	}
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.insert(ctx, tx, g, before, after)
	})
	if err != nil {
		return Group{}, fmt.Errorf("failed to record edit group: %w", err)
	}
	s.logger.Debug("Recorded edit group", "id", g.ID, "command", command, "path", docPath, "edits", editCount)
	return g, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, g Group, before, after string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO edit_groups (id, doc_path, command, created_at, edit_count, compressed, before_snapshot, after_snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.DocPath, g.Command, g.CreatedAt.Format(time.RFC3339Nano), g.EditCount,
		boolInt(s.compress), s.encode(before), s.encode(after))
	return err
}

// List returns the most recent groups first. An empty docPath lists every
// document; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, docPath string, limit int) ([]Group, error) {
	query := `SELECT id, doc_path, command, created_at, edit_count, undone FROM edit_groups`
	var args []any
	if docPath != "" {
		query += ` WHERE doc_path = ?`
		args = append(args, docPath)
	}
	query += ` ORDER BY rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var created string
		var undone int
		if err := rows.Scan(&g.ID, &g.DocPath, &g.Command, &created, &g.EditCount, &undone); err != nil {
			return nil, err
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		g.Undone = undone != 0
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Undo reverts the latest command applied to docPath that has not been
// undone. current must equal the content recorded after that command,
// otherwise the document changed since and HistoryConflict is returned.
// The reverted content is returned and the undo itself is recorded.
// restore, when non-nil, receives the reverted content before the undo is
// committed; if it fails nothing is recorded.
func (s *Store) Undo(ctx context.Context, docPath, current string, restore func(string) error) (string, Group, error) {
	var (
		restored string
		target   Group
	)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var created string
		var compressed int
		var beforeB, afterB []byte
		err := tx.QueryRowContext(ctx, `
			SELECT id, command, created_at, edit_count, compressed, before_snapshot, after_snapshot
			FROM edit_groups
			WHERE doc_path = ? AND undone = 0 AND command <> ?
			ORDER BY rowid DESC LIMIT 1`, docPath, CommandUndo).
			Scan(&target.ID, &target.Command, &created, &target.EditCount, &compressed, &beforeB, &afterB)
		if err == sql.ErrNoRows {
			return errors.New(errors.HistoryConflict, "nothing to undo for "+docPath, nil)
		}
		if err != nil {
			return err
		}
		target.DocPath = docPath
		target.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)

		before, err := s.decode(beforeB, compressed != 0)
		if err != nil {
			return err
		}
		after, err := s.decode(afterB, compressed != 0)
		if err != nil {
			return err
		}
		if after != current {
			return errors.New(errors.HistoryConflict,
				fmt.Sprintf("%s changed after %s %s was applied", docPath, target.Command, target.ID), nil)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE edit_groups SET undone = 1 WHERE id = ?`, target.ID); err != nil {
			return err
		}
		target.Undone = true

		undo := Group{
			ID:        uuid.New().String(),
			DocPath:   docPath,
			Command:   CommandUndo,
			CreatedAt: s.now().UTC(),
			EditCount: target.EditCount,
		}
		if err := s.insert(ctx, tx, undo, current, before); err != nil {
			return err
		}
		if restore != nil {
			if err := restore(before); err != nil {
				return err
			}
		}
		restored = before
		return nil
	})
	if err != nil {
		return "", Group{}, err
	}
	s.logger.Info("Undid edit group", "id", target.ID, "command", target.Command, "path", docPath)
	return restored, target, nil
}

func (s *Store) encode(text string) []byte {
	if !s.compress {
		return []byte(text)
	}
	return s.enc.EncodeAll([]byte(text), nil)
}

func (s *Store) decode(data []byte, compressed bool) (string, error) {
	if !compressed {
		return string(data), nil
	}
	out, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return string(out), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
