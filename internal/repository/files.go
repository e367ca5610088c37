package repository

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

// FileRepository stores uploaded PDFs as ordered chunks under a caller-supplied
// id. Blobs are write-once; there is no update or delete.
type FileRepository interface {
	Put(ctx context.Context, fileID string, data []byte, filename, contentType string) (*entity.Upload, error)
	Stat(ctx context.Context, fileID string) (*entity.Upload, error)
	Get(ctx context.Context, fileID string) ([]byte, error)
	Open(ctx context.Context, fileID string) (io.ReadCloser, *entity.Upload, error)
}

type fileRepo struct {
	db        *DB
	chunkSize int
	now       func() time.Time
	logger    *zap.Logger
}

func NewFileRepository(db *DB, logger *zap.Logger) FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileRepo{
		db:        db,
		chunkSize: constants.UploadChunkSize,
		now:       time.Now,
		logger:    logger,
	}
}

func (r *fileRepo) Put(ctx context.Context, fileID string, data []byte, filename, contentType string) (*entity.Upload, error) {
	up := &entity.Upload{
		FileID:      fileID,
		FileName:    filename,
		ContentType: contentType,
		Length:      int64(len(data)),
		ChunkSize:   r.chunkSize,
		UploadedAt:  common.FormatTimestamp(r.now()),
	}

	tx, err := r.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	b := r.db.builder()
	query, args := b.Insert(tableUploads).
		Columns("file_id", "filename", "content_type", "length", "chunk_size", "uploaded_at").
		Values(up.FileID, up.FileName, up.ContentType, up.Length, up.ChunkSize, up.UploadedAt).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, common.Conflict("File already exists", err)
		}
		r.logger.Error("failed to create upload", zap.String("file_id", fileID), zap.Error(err))
		return nil, err
	}

	for n, off := 0, 0; off < len(data); n, off = n+1, off+r.chunkSize {
		end := min(off+r.chunkSize, len(data))
		query, args := b.Insert(tableUploadChunks).
			Columns("file_id", "n", "data").
			Values(fileID, n, data[off:end]).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to write upload chunk", zap.String("file_id", fileID), zap.Int("n", n), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit upload", zap.String("file_id", fileID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("repository.upload.put",
		zap.String("file_id", fileID),
		zap.String("filename", filename),
		zap.Int64("length", up.Length),
	)
	return up, nil
}

func (r *fileRepo) Stat(ctx context.Context, fileID string) (*entity.Upload, error) {
	b := r.db.builder()
	query, args := b.Select("file_id", "filename", "content_type", "length", "chunk_size", "uploaded_at").
		From(b.Table(tableUploads)).
		Where(entsql.EQ("file_id", fileID)).
		Query()
	var up entity.Upload
	err := r.db.SQL().QueryRowContext(ctx, query, args...).
		Scan(&up.FileID, &up.FileName, &up.ContentType, &up.Length, &up.ChunkSize, &up.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("File not found")
	}
	if err != nil {
		r.logger.Error("failed to stat upload", zap.String("file_id", fileID), zap.Error(err))
		return nil, err
	}
	return &up, nil
}

func (r *fileRepo) Get(ctx context.Context, fileID string) ([]byte, error) {
	rc, up, err := r.Open(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	buf.Grow(int(up.Length))
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fileID, err)
	}
	return buf.Bytes(), nil
}

// Open returns a reader over the blob's chunks in order. The caller must
// close it; on SQLite it holds the only connection until then.
func (r *fileRepo) Open(ctx context.Context, fileID string) (io.ReadCloser, *entity.Upload, error) {
	up, err := r.Stat(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	b := r.db.builder()
	query, args := b.Select("data").
		From(b.Table(tableUploadChunks)).
		Where(entsql.EQ("file_id", fileID)).
		OrderBy("n").
		Query()
	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to read upload chunks", zap.String("file_id", fileID), zap.Error(err))
		return nil, nil, err
	}
	return &chunkReader{rows: rows}, up, nil
}

type chunkReader struct {
	rows *sql.Rows
	cur  []byte
	done bool
}

func (c *chunkReader) Read(p []byte) (int, error) {
	for len(c.cur) == 0 {
		if c.done {
			return 0, io.EOF
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if err := c.rows.Scan(&c.cur); err != nil {
			return 0, err
		}
	}
	n := copy(p, c.cur)
	c.cur = c.cur[n:]
	return n, nil
}

func (c *chunkReader) Close() error {
	return c.rows.Close()
}
