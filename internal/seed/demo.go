package seed

import (
	"time"

	"leanvote/internal/models"
	"leanvote/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInBoard is a permanent demo board shipped with every environment.
type BuiltInBoard struct {
	Name        string
	Slug        string
	CompanyName string
	CompanyURL  string
}

// BuiltInBoards defines the boards the demo owner always has.
var BuiltInBoards = []BuiltInBoard{
	{Name: "LeanVote Feedback", Slug: "leanvote", CompanyName: "LeanVote", CompanyURL: "https://leanvote.app"},
}

const demoOwnerUsername = "leanvote_demo"

// Demo seeds the permanent demo owner and its boards. Safe to run on every
// startup; existing rows are updated in place.
func Demo(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		owner, err := ensureDemoOwner(tx)
		if err != nil {
			return err
		}

		for _, item := range BuiltInBoards {
			project := models.Project{
				OwnerID:              owner.ID,
				Name:                 item.Name,
				Slug:                 item.Slug,
				CompanyName:          item.CompanyName,
				CompanyURL:           item.CompanyURL,
				CompanyURLNormalized: service.NormalizeCompanyURL(item.CompanyURL),
				IsDefault:            true,
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "company_name", "company_url", "company_url_normalized", "updated_at"}),
			}).Create(&project).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", owner.ID).
			Update("board_slug", BuiltInBoards[0].Slug).Error
	})
}

func ensureDemoOwner(tx *gorm.DB) (*models.User, error) {
	var owner models.User
	err := tx.Where("username = ?", demoOwnerUsername).First(&owner).Error
	if err == nil {
		return &owner, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	onboarded := time.Now()
	owner = models.User{
		Username:          demoOwnerUsername,
		Email:             "demo@leanvote.app",
		Password:          string(hashed),
		UserType:          models.UserTypeAdmin,
		HasLifetimeAccess: true,
		OnboardedAt:       &onboarded,
		ProjectLimit:      len(BuiltInBoards),
	}
	if err := tx.Create(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}
