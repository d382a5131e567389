package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alekus2/portifolioalek/internal/domain"
	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

// ProfileRepository wraps the profile table behind create-or-update and read
// operations with normalized errors.
type ProfileRepository interface {
	// CreateOrUpdate performs an atomic insert-or-update keyed by id in a
	// single round trip and returns the canonical stored row.
	CreateOrUpdate(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error)
	// Read returns nil without error when no row exists for id.
	Read(ctx context.Context, id string) (*domain.Profile, error)
	// UpdateLastActive is best-effort: failures are logged, never returned.
	UpdateLastActive(ctx context.Context, id string, ts time.Time)
}

type profileRepo struct {
	db     *gorm.DB
	logger pkglog.Logger
	role   string
}

func NewProfileRepository(db *gorm.DB, logger pkglog.Logger, defaultRole string) ProfileRepository {
	if defaultRole == "" {
		defaultRole = domain.DefaultRole
	}
	return &profileRepo{db: db, logger: logger, role: defaultRole}
}

func (r *profileRepo) CreateOrUpdate(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}

	profile := &domain.Profile{
		ID:             id,
		Email:          fields.Email,
		Nome:           fields.Nome,
		DataNascimento: fields.DataNascimento,
		Role:           r.role,
	}

	// Role is insert-only; the conflict assignment set never includes it so
	// an existing row can never be escalated. Optional fields join the set
	// only on the full-merge path, leaving stored values intact otherwise.
	columns := []string{"email", "updated_at"}
	if fields.WithDetails {
		columns = append(columns, "nome", "data_nascimento")
	}

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(columns),
			},
			clause.Returning{},
		).
		Create(profile).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "upsert", Err: err}
	}
	return profile, nil
}

func (r *profileRepo) Read(ctx context.Context, id string) (*domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "read", Err: err}
	}
	return &profile, nil
}

func (r *profileRepo) UpdateLastActive(ctx context.Context, id string, ts time.Time) {
	err := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("id = ?", id).
		Update("last_active", ts).Error
	if err != nil {
		r.logger.Warn().Err(err).Str("profile_id", id).Msg("last_active refresh failed")
	}
}
