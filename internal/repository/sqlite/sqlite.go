package sqlite

import (
	"io"
	"log/slog"

	"github.com/garnizeh/hikelog/internal/db"
	"github.com/garnizeh/hikelog/pkg/repository"
)

// SQLiteRepo implements the entity-store interfaces using the internal DB
// wrapper. It holds no entity state of its own; every call goes to the
// database so readers always see the current row.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.HikeStore = (*SQLiteRepo)(nil)
var _ repository.ObservationStore = (*SQLiteRepo)(nil)
var _ repository.UserStore = (*SQLiteRepo)(nil)
var _ repository.ChatStore = (*SQLiteRepo)(nil)
var _ repository.ReportStore = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}
