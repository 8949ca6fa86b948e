package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceRepository handles resource record persistence. Ids and timestamps
// are assigned here on creation and never changed; there is no update path.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new resource record, assigning its id and timestamp.
func (r *ResourceRepository) Create(ctx context.Context, resource *domain.Resource) error {
	assignIdentity(resource)
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

// CreateMany inserts resource records in one batched write. The slice order
// is the submission order and is preserved in the stored records.
func (r *ResourceRepository) CreateMany(ctx context.Context, resources []*domain.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	for _, resource := range resources {
		assignIdentity(resource)
	}
	if err := r.db.WithContext(ctx).Create(resources).Error; err != nil {
		return fmt.Errorf("failed to create resources: %w", err)
	}
	return nil
}

// GetByID retrieves a resource by its ID.
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	var resource domain.Resource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

// List retrieves resources ordered by creation time, newest first.
func (r *ResourceRepository) List(ctx context.Context, limit int) ([]domain.Resource, error) {
	var resources []domain.Resource
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Order("timestamp DESC").
		Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// Count returns the number of stored resources.
func (r *ResourceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Resource{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

// Delete removes a resource by ID. Deletion is permanent; a second delete of
// the same id reports ErrNotFound.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Resource{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func assignIdentity(resource *domain.Resource) {
	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}
	if resource.Timestamp.IsZero() {
		resource.Timestamp = time.Now().UTC()
	}
}
