package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/hikelog/pkg/models"
)

func (r *SQLiteRepo) SaveChatMessage(ctx context.Context, m *models.ChatMessage) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("chat message is nil")
	}
	if m.CreatedAt == "" {
		m.CreatedAt = models.Timestamp()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO chat_messages (user_id, message, from_user, created_at) VALUES (?, ?, ?, ?)`, m.UserID, m.Message, m.FromUser, m.CreatedAt)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListChatMessages(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, message, from_user, created_at FROM chat_messages WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &m.FromUser, &m.CreatedAt); err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ClearChatHistory(ctx context.Context, userID int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID)
	return err
}
