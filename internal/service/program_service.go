package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

const programChoicesCacheKey = "programs:choices"

type programRepository interface {
	ListChoices(ctx context.Context) ([]models.ProgramChoice, error)
	FindExisting(ctx context.Context, ids []string) ([]string, error)
}

// ProgramService serves the program selector, cached in Redis.
type ProgramService struct {
	repo   programRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewProgramService constructs a ProgramService.
func NewProgramService(repo programRepository, cache *CacheService, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, cache: cache, logger: logger}
}

// List returns the program choices and whether they were served from cache.
func (s *ProgramService) List(ctx context.Context) ([]models.ProgramChoice, bool, error) {
	var cached []models.ProgramChoice
	if s.cache.Get(ctx, programChoicesCacheKey, &cached) {
		return cached, true, nil
	}

	programs, err := s.repo.ListChoices(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if programs == nil {
		programs = []models.ProgramChoice{}
	}
	s.cache.Set(ctx, programChoicesCacheKey, programs, 0)
	return programs, false, nil
}

// Validate ensures every id names an active program.
func (s *ProgramService) Validate(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repo.FindExisting(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify programs")
	}
	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.Clone(appErrors.ErrValidation, "unknown programs: "+strings.Join(missing, ", "))
	}
	return nil
}
