package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

// ChatRepo stores assistant sessions and their messages.
type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

func (r *ChatRepo) CreateSession(ctx context.Context, s *model.ChatSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = nowUTC(s.CreatedAt)
	s.LastActivity = s.CreatedAt
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO chat_sessions (id, user_id, name, created_at, last_activity) VALUES (?,?,?,?,?)",
		s.ID, s.UserID, s.Name, s.CreatedAt, s.LastActivity)
	return err
}

// GetSession returns the session only when it belongs to userID.
func (r *ChatRepo) GetSession(ctx context.Context, id, userID string) (model.ChatSession, error) {
	var s model.ChatSession
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at, last_activity FROM chat_sessions WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt, &s.LastActivity)
	if err == sql.ErrNoRows {
		return model.ChatSession{}, ErrNotFound
	}
	return s, err
}

// AppendMessages stores msgs in order and bumps the session's activity time.
func (r *ChatRepo) AppendMessages(ctx context.Context, sessionID string, msgs ...*model.ChatMessage) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		var last time.Time
		for _, m := range msgs {
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.SessionID = sessionID
			m.CreatedAt = nowUTC(m.CreatedAt)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chat_messages (id, session_id, user_id, message_type, content, urgency, created_at)
				 VALUES (?,?,?,?,?,?,?)`,
				m.ID, m.SessionID, m.UserID, m.MessageType, m.Content, m.Urgency, m.CreatedAt); err != nil {
				return err
			}
			if m.CreatedAt.After(last) {
				last = m.CreatedAt
			}
		}
		last = nowUTC(last)
		_, err := tx.ExecContext(ctx, "UPDATE chat_sessions SET last_activity=? WHERE id=?", last, sessionID)
		return err
	})
}

// RecentMessages returns the last limit messages in chronological order.
func (r *ChatRepo) RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, session_id, user_id, message_type, content, urgency, created_at
		 FROM chat_messages WHERE session_id=? ORDER BY created_at DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.MessageType, &m.Content, &m.Urgency, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
