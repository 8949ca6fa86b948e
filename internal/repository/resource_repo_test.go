package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RobelK1738/Buddys-Brain/internal/domain"
)

func newTestRepo(t *testing.T) *ResourceRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Resource{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewResourceRepository(db)
}

func TestCreateAssignsIdentity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	resource := &domain.Resource{
		Title:     "Linear Algebra Notes",
		Course:    "MATH 220",
		MediaType: domain.MediaTypeDocument,
	}
	if err := repo.Create(ctx, resource); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if resource.ID == "" {
		t.Error("Create must assign an id")
	}
	if resource.Timestamp.IsZero() {
		t.Error("Create must assign a timestamp")
	}

	got, err := repo.GetByID(ctx, resource.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Title != resource.Title || got.Course != resource.Course {
		t.Errorf("stored record mismatch: %+v", got)
	}
}

func TestCreateManyPreservesOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	resources := make([]*domain.Resource, 10)
	for i := range resources {
		resources[i] = &domain.Resource{
			Title:     fmt.Sprintf("item %d", i),
			MediaType: domain.MediaTypeArticle,
		}
	}
	if err := repo.CreateMany(ctx, resources); err != nil {
		t.Fatalf("CreateMany returned error: %v", err)
	}

	for i, r := range resources {
		if r.ID == "" {
			t.Fatalf("resources[%d] has no id", i)
		}
		if want := fmt.Sprintf("item %d", i); r.Title != want {
			t.Fatalf("resources[%d].Title = %q, want %q", i, r.Title, want)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 10 {
		t.Errorf("Count = %d, want 10", count)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := &domain.Resource{
			Title:     fmt.Sprintf("item %d", i),
			MediaType: domain.MediaTypeArticle,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	resources, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("List returned %d records, want 2", len(resources))
	}
	if resources[0].Title != "item 2" || resources[1].Title != "item 1" {
		t.Errorf("unexpected order: %q, %q", resources[0].Title, resources[1].Title)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	resource := &domain.Resource{Title: "gone soon", MediaType: domain.MediaTypeArticle}
	if err := repo.Create(ctx, resource); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := repo.Delete(ctx, resource.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.GetByID(ctx, resource.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, resource.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
}
