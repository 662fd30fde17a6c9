package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// ProgramRepository reads the program catalogue.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new instance of ProgramRepository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// ListChoices returns active programs ordered by name.
func (r *ProgramRepository) ListChoices(ctx context.Context) ([]models.ProgramChoice, error) {
	const query = `SELECT id, name FROM programs WHERE active = TRUE ORDER BY name ASC`
	programs := []models.ProgramChoice{}
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindExisting returns which of ids name active programs.
func (r *ProgramRepository) FindExisting(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	const query = `SELECT id FROM programs WHERE active = TRUE AND id = ANY($1)`
	found := []string{}
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find programs: %w", err)
	}
	return found, nil
}
