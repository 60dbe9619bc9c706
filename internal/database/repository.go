package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roychid/t3n28-football/pkg/models"
)

// ErrChannelNotFound is returned when no channel matches the given id
var ErrChannelNotFound = errors.New("channel not found")

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Channels

// CreateChannel creates a new delivery channel record
func (r *Repository) CreateChannel(ctx context.Context, channel *models.Channel) error {
	if channel.ID == "" {
		channel.ID = uuid.New().String()
	}
	if channel.Type == "" {
		channel.Type = models.ChannelTypeTelegram
	}

	query := `
		INSERT INTO channels (id, name, type, token, chat_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		channel.ID, channel.Name, channel.Type, channel.Token, channel.ChatID,
	).Scan(&channel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return nil
}

// GetChannel retrieves a channel by ID
func (r *Repository) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	var channel models.Channel

	query := `
		SELECT id, name, type, token, chat_id, created_at
		FROM channels
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&channel.ID, &channel.Name, &channel.Type, &channel.Token,
		&channel.ChatID, &channel.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return &channel, nil
}

// ListChannels returns all configured channels in creation order. The
// order matters: broadcasts walk channels oldest first.
func (r *Repository) ListChannels(ctx context.Context) ([]models.Channel, error) {
	query := `
		SELECT id, name, type, token, chat_id, created_at
		FROM channels
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	channels := []models.Channel{}
	for rows.Next() {
		var channel models.Channel
		err := rows.Scan(
			&channel.ID, &channel.Name, &channel.Type, &channel.Token,
			&channel.ChatID, &channel.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

// UpdateChannel updates an existing channel record
func (r *Repository) UpdateChannel(ctx context.Context, channel *models.Channel) error {
	query := `
		UPDATE channels
		SET name = $2, type = $3, token = $4, chat_id = $5
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		channel.ID, channel.Name, channel.Type, channel.Token, channel.ChatID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChannelNotFound
	}

	return nil
}

// DeleteChannel removes a channel record
func (r *Repository) DeleteChannel(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChannelNotFound
	}

	return nil
}

// Broadcasts

// RecordBroadcast persists a finished broadcast batch
func (r *Repository) RecordBroadcast(ctx context.Context, rec *models.BroadcastRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	deliveries, err := json.Marshal(rec.Deliveries)
	if err != nil {
		return fmt.Errorf("failed to encode deliveries: %w", err)
	}

	query := `
		INSERT INTO broadcasts (id, text, deliveries, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Pool.Exec(ctx, query, rec.ID, rec.Text, deliveries, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to record broadcast: %w", err)
	}

	return nil
}

// ListBroadcasts returns the most recent broadcast batches, newest first
func (r *Repository) ListBroadcasts(ctx context.Context, limit int) ([]models.BroadcastRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, text, deliveries, created_at
		FROM broadcasts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	defer rows.Close()

	records := []models.BroadcastRecord{}
	for rows.Next() {
		var rec models.BroadcastRecord
		var deliveries []byte
		if err := rows.Scan(&rec.ID, &rec.Text, &deliveries, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan broadcast: %w", err)
		}
		if err := json.Unmarshal(deliveries, &rec.Deliveries); err != nil {
			return nil, fmt.Errorf("failed to decode deliveries: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
