package favrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
)

// PostgresRepository persists favorited pharmacies per device. The pharmacy
// snapshot is stored as JSONB so favorites survive even when a later search
// no longer returns the store.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context, deviceID string) (map[string]locator.Pharmacy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pharmacy_id, payload
		FROM favorite_pharmacies
		WHERE device_id = $1
	`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]locator.Pharmacy)
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		var pharmacy locator.Pharmacy
		if err := json.Unmarshal(payload, &pharmacy); err != nil {
			return nil, err
		}
		out[id] = pharmacy
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Save(ctx context.Context, deviceID, pharmacyID string, pharmacy locator.Pharmacy) error {
	payload, err := json.Marshal(pharmacy)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO favorite_pharmacies (device_id, pharmacy_id, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id, pharmacy_id) DO UPDATE SET payload = EXCLUDED.payload
	`, deviceID, pharmacyID, payload)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, deviceID, pharmacyID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM favorite_pharmacies
		WHERE device_id = $1 AND pharmacy_id = $2
	`, deviceID, pharmacyID)
	return err
}

var _ locator.FavoriteRepository = (*PostgresRepository)(nil)
