package postgres

import (
	"context"
	"errors"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRequestRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRequestRepo(pool *pgxpool.Pool) *MessageRequestRepo {
	return &MessageRequestRepo{pool: pool}
}

func (r *MessageRequestRepo) Create(ctx context.Context, req *domain.MessageRequest) error {
	query := `
		INSERT INTO message_requests (id, sender_id, receiver_id, status, messages_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.SenderID, req.ReceiverID, req.Status, req.MessagesSent, req.CreatedAt,
	)
	return err
}

func (r *MessageRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, messages_sent, created_at
		FROM message_requests
		WHERE id = $1`
	var req domain.MessageRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.MessagesSent, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}

func (r *MessageRequestRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.MessageRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, messages_sent, created_at
		FROM message_requests
		WHERE (sender_id = $1 AND receiver_id = $2)
			OR (sender_id = $2 AND receiver_id = $1)`
	var req domain.MessageRequest
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.MessagesSent, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}

func (r *MessageRequestRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.MessageRequest, error) {
	query := `
		SELECT r.id, r.sender_id, r.receiver_id, r.status, r.messages_sent, r.created_at,
			u.username, u.display_name
		FROM message_requests r
		JOIN users u ON r.sender_id = u.id
		WHERE r.sender_id = $1 OR r.receiver_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.MessageRequest
	for rows.Next() {
		var req domain.MessageRequest
		if err := rows.Scan(
			&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.MessagesSent, &req.CreatedAt,
			&req.SenderUsername, &req.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ClaimSendSlot is a single conditional update so two concurrent sends can
// never both pass the cap: the row is incremented only while pending and
// under the cap, and the losing call sees zero rows.
func (r *MessageRequestRepo) ClaimSendSlot(ctx context.Context, id uuid.UUID, limit int) (int, bool, error) {
	query := `
		UPDATE message_requests
		SET messages_sent = messages_sent + 1
		WHERE id = $1 AND status = 'pending' AND messages_sent < $2
		RETURNING messages_sent`
	var sent int
	err := r.pool.QueryRow(ctx, query, id, limit).Scan(&sent)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return sent, true, nil
}

func (r *MessageRequestRepo) Accept(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE message_requests SET status = 'accepted' WHERE id = $1 AND status = 'pending'`, id)
	return err
}
