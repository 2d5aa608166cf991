package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mediaModel "photovault-backend/internal/domains/media/model"
	"photovault-backend/internal/domains/person/model"
	"photovault-backend/pkg/database"
)

type postgresPersonRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &postgresPersonRepository{pool: pool}
}

const personColumns = `id, owner_id, name, birth_date, thumbnail_path, is_hidden, created_at, updated_at`

func scanPerson(row pgx.Row) (*model.Person, error) {
	var p model.Person
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.BirthDate,
		&p.ThumbnailPath, &p.IsHidden, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPersonRepository) GetAll(ctx context.Context, ownerID uuid.UUID, opts model.GetAllOptions) ([]model.Person, error) {
	query := `
		SELECT p.id, p.owner_id, p.name, p.birth_date, p.thumbnail_path,
		       p.is_hidden, p.created_at, p.updated_at, COUNT(f.id) AS face_count
		FROM people p
		JOIN asset_faces f ON f.person_id = p.id
		WHERE p.owner_id = $1
	`
	if !opts.WithHidden {
		query += ` AND NOT p.is_hidden`
	}
	query += `
		GROUP BY p.id
		HAVING COUNT(f.id) >= $2
		ORDER BY p.is_hidden ASC, (p.name = '') ASC, COUNT(f.id) DESC, p.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, opts.MinimumFaceCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.BirthDate,
			&p.ThumbnailPath, &p.IsHidden, &p.CreatedAt, &p.UpdatedAt,
			&p.FaceCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

func (r *postgresPersonRepository) GetAllWithoutFaces(ctx context.Context) ([]model.Person, error) {
	query := `
		SELECT p.id, p.owner_id, p.name, p.birth_date, p.thumbnail_path,
		       p.is_hidden, p.created_at, p.updated_at
		FROM people p
		LEFT JOIN asset_faces f ON f.person_id = p.id
		WHERE f.id IS NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orphaned people: %w", err)
	}

	return people, nil
}

func (r *postgresPersonRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE owner_id = $1 AND id = $2`

	person, err := scanPerson(r.pool.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

func (r *postgresPersonRepository) GetAssets(ctx context.Context, ownerID, personID uuid.UUID) ([]mediaModel.Asset, error) {
	query := `
		SELECT DISTINCT a.id, a.owner_id, a.type, a.original_path, a.preview_path, a.created_at
		FROM assets a
		JOIN asset_faces f ON f.asset_id = a.id
		WHERE a.owner_id = $1 AND f.person_id = $2
		ORDER BY a.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get person assets: %w", err)
	}
	defer rows.Close()

	var assets []mediaModel.Asset
	for rows.Next() {
		var a mediaModel.Asset
		err := rows.Scan(&a.ID, &a.OwnerID, &a.Type, &a.OriginalPath, &a.PreviewPath, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

func (r *postgresPersonRepository) GetFaceByID(ctx context.Context, ref model.FaceRef) (*model.Face, error) {
	query := `
		SELECT id, asset_id, person_id, bounding_box_x1, bounding_box_y1,
		       bounding_box_x2, bounding_box_y2, image_width, image_height,
		       thumbnail_path, created_at
		FROM asset_faces
		WHERE asset_id = $1 AND person_id = $2
		LIMIT 1
	`

	var f model.Face
	err := r.pool.QueryRow(ctx, query, ref.AssetID, ref.PersonID).Scan(
		&f.ID, &f.AssetID, &f.PersonID,
		&f.BoundingBoxX1, &f.BoundingBoxY1, &f.BoundingBoxX2, &f.BoundingBoxY2,
		&f.ImageWidth, &f.ImageHeight, &f.ThumbnailPath, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get face: %w", err)
	}
	return &f, nil
}

func (r *postgresPersonRepository) Update(ctx context.Context, fields model.UpdatePersonFields) (*model.Person, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{fields.ID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Name != nil {
		addSet("name", *fields.Name)
	}
	switch {
	case fields.ClearBirthDate:
		sets = append(sets, "birth_date = NULL")
	case fields.BirthDate != nil:
		addSet("birth_date", *fields.BirthDate)
	}
	if fields.ThumbnailPath != nil {
		addSet("thumbnail_path", *fields.ThumbnailPath)
	}
	if fields.IsHidden != nil {
		addSet("is_hidden", *fields.IsHidden)
	}

	query := fmt.Sprintf(
		`UPDATE people SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), personColumns,
	)

	person, err := scanPerson(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to update person: %w", err)
	}
	return person, nil
}

func (r *postgresPersonRepository) Delete(ctx context.Context, person *model.Person) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, person.ID); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

// PrepareReassignFaces runs in one transaction so a failure between conflict
// detection and the superseded-face removal never leaks half the cleanup.
func (r *postgresPersonRepository) PrepareReassignFaces(ctx context.Context, data model.UpdateFacesData) ([]uuid.UUID, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]uuid.UUID, error) {
		rows, err := tx.Query(ctx, `
			SELECT asset_id
			FROM asset_faces
			WHERE person_id = ANY($1)
			GROUP BY asset_id
			HAVING COUNT(DISTINCT person_id) > 1
		`, []uuid.UUID{data.OldPersonID, data.NewPersonID})
		if err != nil {
			return nil, fmt.Errorf("failed to find conflicting assets: %w", err)
		}
		defer rows.Close()

		var assetIDs []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("failed to scan conflicting asset: %w", err)
			}
			assetIDs = append(assetIDs, id)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate conflicting assets: %w", err)
		}

		if len(assetIDs) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM asset_faces WHERE person_id = $1 AND asset_id = ANY($2)`,
				data.OldPersonID, assetIDs,
			); err != nil {
				return nil, fmt.Errorf("failed to remove superseded faces: %w", err)
			}
		}

		return assetIDs, nil
	})
}

// ReassignFaces is a single UPDATE, so concurrent readers see every face
// owned by either the old or the new person, never by nobody.
func (r *postgresPersonRepository) ReassignFaces(ctx context.Context, data model.UpdateFacesData) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE asset_faces SET person_id = $1 WHERE person_id = $2`,
		data.NewPersonID, data.OldPersonID,
	); err != nil {
		return fmt.Errorf("failed to reassign faces: %w", err)
	}
	return nil
}
