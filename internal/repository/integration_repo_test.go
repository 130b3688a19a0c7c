package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/syllabi/backend/internal/model"
)

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestIntegrationRepository_CRUD(t *testing.T) {
	db := newTestDB(t, &model.ConnectedIntegration{})
	repo := NewIntegrationRepository(db)
	ctx := context.Background()

	integration := &model.ConnectedIntegration{
		PublicID:       "intg-1",
		UserID:         "user-1",
		Provider:       "discord",
		Name:           "My Server",
		EncryptedToken: "deadbeef:cafebabe",
		Metadata:       `{"guild_id":"guild-1"}`,
		Status:         "connected",
	}
	if err := repo.Create(ctx, integration); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByPublicID(ctx, "intg-1")
	if err != nil {
		t.Fatalf("GetByPublicID failed: %v", err)
	}
	if got.Provider != "discord" || got.Metadata != `{"guild_id":"guild-1"}` {
		t.Errorf("unexpected record: %+v", got)
	}

	if err := repo.UpdateStatus(ctx, "intg-1", "revoked"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err = repo.GetByPublicID(ctx, "intg-1")
	if err != nil {
		t.Fatalf("GetByPublicID after update failed: %v", err)
	}
	if got.Status != "revoked" {
		t.Errorf("expected status revoked, got %s", got.Status)
	}

	if err := repo.Delete(ctx, "intg-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByPublicID(ctx, "intg-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIntegrationRepository_GetMissing(t *testing.T) {
	db := newTestDB(t, &model.ConnectedIntegration{})
	repo := NewIntegrationRepository(db)

	if _, err := repo.GetByPublicID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "missing", "revoked"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus on missing record should return ErrNotFound, got %v", err)
	}
}

func TestIntegrationRepository_ListByUserAndProvider(t *testing.T) {
	db := newTestDB(t, &model.ConnectedIntegration{})
	repo := NewIntegrationRepository(db)
	ctx := context.Background()

	seed := []model.ConnectedIntegration{
		{PublicID: "intg-1", UserID: "user-1", Provider: "discord", Status: "connected"},
		{PublicID: "intg-2", UserID: "user-1", Provider: "slack", Status: "connected"},
		{PublicID: "intg-3", UserID: "user-2", Provider: "discord", Status: "connected"},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 integrations for user-1, got %d", len(all))
	}

	discordOnly, err := repo.ListByUserAndProvider(ctx, "user-1", "discord")
	if err != nil {
		t.Fatalf("ListByUserAndProvider failed: %v", err)
	}
	if len(discordOnly) != 1 || discordOnly[0].PublicID != "intg-1" {
		t.Errorf("expected only intg-1, got %+v", discordOnly)
	}
}
