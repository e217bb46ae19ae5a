package postgres

import (
	"context"
	"errors"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, conn.ID, conn.User1ID, conn.User2ID, conn.CreatedAt)
	return err
}

func (r *ConnectionRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Connection, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM connections
		WHERE user1_id = $1 AND user2_id = $2`
	var conn domain.Connection
	err := r.pool.QueryRow(ctx, query, user1ID, user2ID).Scan(
		&conn.ID, &conn.User1ID, &conn.User2ID, &conn.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conn, err
}

func (r *ConnectionRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.created_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.username ELSE u1.username END AS other_username,
			CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END AS other_display_name,
			CASE WHEN c.user1_id = $1 THEN u2.status ELSE u1.status END AS other_status
		FROM connections c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY other_display_name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		if err := rows.Scan(
			&conn.ID, &conn.User1ID, &conn.User2ID, &conn.CreatedAt,
			&conn.OtherUserID, &conn.OtherUsername, &conn.OtherDisplayName, &conn.OtherStatus,
		); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

func (r *ConnectionRepo) ListPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM connections
		WHERE user1_id = $1 OR user2_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		peers = append(peers, id)
	}
	return peers, rows.Err()
}

func (r *ConnectionRepo) Delete(ctx context.Context, user1ID, user2ID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM connections WHERE user1_id = $1 AND user2_id = $2`, user1ID, user2ID)
	return err
}

func (r *ConnectionRepo) AreConnected(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	u1, u2 := userA, userB
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM connections WHERE user1_id = $1 AND user2_id = $2)`,
		u1, u2,
	).Scan(&exists)
	return exists, err
}
