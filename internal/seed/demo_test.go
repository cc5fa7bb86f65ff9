package seed

import (
	"testing"

	"leanvote/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Project{}, &models.Post{},
		&models.Vote{}, &models.Comment{}, &models.ChangelogEntry{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDemo_Idempotent(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)

	if err := Demo(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Demo(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var boardCount int64
	if err := db.Model(&models.Project{}).Count(&boardCount).Error; err != nil {
		t.Fatalf("count boards: %v", err)
	}
	if boardCount != int64(len(BuiltInBoards)) {
		t.Fatalf("expected %d boards, got %d", len(BuiltInBoards), boardCount)
	}

	var ownerCount int64
	if err := db.Model(&models.User{}).Where("username = ?", demoOwnerUsername).
		Count(&ownerCount).Error; err != nil {
		t.Fatalf("count owners: %v", err)
	}
	if ownerCount != 1 {
		t.Fatalf("expected a single demo owner, got %d", ownerCount)
	}
}

func TestDemo_MirrorsBoardSlug(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)
	if err := Demo(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var owner models.User
	if err := db.Where("username = ?", demoOwnerUsername).First(&owner).Error; err != nil {
		t.Fatalf("load owner: %v", err)
	}
	if owner.BoardSlug != BuiltInBoards[0].Slug {
		t.Fatalf("board_slug mirror not maintained: %q", owner.BoardSlug)
	}
	if !owner.HasLifetimeAccess {
		t.Fatalf("demo owner must keep lifetime access")
	}
}
