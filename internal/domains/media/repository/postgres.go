package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photovault-backend/internal/domains/media/model"
	"photovault-backend/pkg/database"
)

type postgresAssetRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &postgresAssetRepository{pool: pool}
}

const assetColumns = `id, owner_id, type, original_path, preview_path, created_at`

func scanAsset(row pgx.Row) (*model.Asset, error) {
	var a model.Asset
	err := row.Scan(&a.ID, &a.OwnerID, &a.Type, &a.OriginalPath, &a.PreviewPath, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

func (r *postgresAssetRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// postgresSearchRepository keeps two derived structures: one face-reference
// row per (asset, person) and one tsvector document per asset built from the
// referenced people's names. Hidden and unnamed people never enter the index.
type postgresSearchRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSearchRepository(pool *pgxpool.Pool) SearchRepository {
	return &postgresSearchRepository{pool: pool}
}

func (r *postgresSearchRepository) IndexAssets(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM asset_search_faces WHERE asset_id = ANY($1)`, ids,
		); err != nil {
			return fmt.Errorf("failed to clear face references: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO asset_search_faces (asset_id, person_id, person_name)
			SELECT DISTINCT f.asset_id, p.id, p.name
			FROM asset_faces f
			JOIN people p ON p.id = f.person_id
			WHERE f.asset_id = ANY($1)
			  AND p.name <> ''
			  AND NOT p.is_hidden
		`, ids); err != nil {
			return fmt.Errorf("failed to rebuild face references: %w", err)
		}

		if err := refreshDocuments(ctx, tx, ids); err != nil {
			return err
		}
		return nil
	})
}

func (r *postgresSearchRepository) RemoveFace(ctx context.Context, assetID, personID uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM asset_search_faces WHERE asset_id = $1 AND person_id = $2`,
			assetID, personID,
		); err != nil {
			return fmt.Errorf("failed to remove face reference: %w", err)
		}

		if err := refreshDocuments(ctx, tx, []uuid.UUID{assetID}); err != nil {
			return err
		}
		return nil
	})
}

// refreshDocuments recomputes the per-asset documents from the current face
// references. Assets that no longer exist produce no rows.
func refreshDocuments(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO asset_search_documents (asset_id, people_names, document, updated_at)
		SELECT a.id,
		       COALESCE(string_agg(DISTINCT sf.person_name, ' '), ''),
		       to_tsvector('simple', COALESCE(string_agg(DISTINCT sf.person_name, ' '), '')),
		       NOW()
		FROM assets a
		LEFT JOIN asset_search_faces sf ON sf.asset_id = a.id
		WHERE a.id = ANY($1)
		GROUP BY a.id
		ON CONFLICT (asset_id) DO UPDATE SET
			people_names = EXCLUDED.people_names,
			document     = EXCLUDED.document,
			updated_at   = NOW()
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to refresh search documents: %w", err)
	}
	return nil
}
