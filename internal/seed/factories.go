// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"leanvote/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tune factory behavior.
type SeedOptions struct {
	// DryRun builds entities and assigns synthetic IDs without touching the DB.
	DryRun bool
	// SkipBcrypt stores a plaintext password instead of hashing. Dev fast mode.
	SkipBcrypt bool
	// MaxDays bounds the created_at spread for generated posts.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rand *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rand: rand.New(rand.NewSource(time.Now().UnixNano())), nextID: 1000}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return "password123"
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	return string(hashed)
}

// CreateOwner constructs and persists a board-owning admin on an active trial.
func (f *Factory) CreateOwner(overrides ...func(*models.User)) (*models.User, error) {
	trialEnd := time.Now().Add(14 * 24 * time.Hour)
	onboarded := time.Now().Add(-24 * time.Hour)
	user := &models.User{
		Username:     gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		Password:     f.password(),
		UserType:     models.UserTypeAdmin,
		TrialEndsAt:  &trialEnd,
		OnboardedAt:  &onboarded,
		ProjectLimit: 1,
	}

	for _, override := range overrides {
		override(user)
	}
	return user, f.persist(user, &user.ID)
}

// CreateVoter constructs and persists a plain voter account.
func (f *Factory) CreateVoter(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: f.password(),
		UserType: models.UserTypeVoter,
	}

	for _, override := range overrides {
		override(user)
	}
	return user, f.persist(user, &user.ID)
}

// CreateProject constructs and persists a board for the given owner. The
// owner's board_slug mirror is updated when the board is the default.
func (f *Factory) CreateProject(owner *models.User, overrides ...func(*models.Project)) (*models.Project, error) {
	company := gofakeit.Company()
	slug := fmt.Sprintf("%s-%d", gofakeit.Word(), gofakeit.Number(100, 999))
	project := &models.Project{
		OwnerID:              owner.ID,
		Name:                 company,
		Slug:                 slug,
		CompanyName:          company,
		CompanyURL:           gofakeit.URL(),
		CompanyURLNormalized: gofakeit.DomainName(),
		IsDefault:            true,
	}

	for _, override := range overrides {
		override(project)
	}

	if err := f.persist(project, &project.ID); err != nil {
		return nil, err
	}

	if project.IsDefault && !f.opts.DryRun {
		if err := f.db.Model(&models.User{}).Where("id = ?", owner.ID).
			Update("board_slug", project.Slug).Error; err != nil {
			return nil, err
		}
	}
	return project, nil
}

// BuildPost constructs a feedback post without persisting it. Useful for
// batching. The created_at is spread over the past MaxDays.
func (f *Factory) BuildPost(project *models.Project, authorID uint, category string, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:        gofakeit.Sentence(5),
		Description:  gofakeit.Paragraph(1, 3, 5, "\n"),
		Category:     models.NormalizeCategory(category),
		Status:       models.PostStatusOpen,
		BoardOwnerID: project.OwnerID,
		ProjectID:    &project.ID,
		AuthorID:     authorID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a reply on the provided post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(8),
		AuthorID: author.ID,
		PostID:   post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}
	return comment, f.persist(comment, &comment.ID)
}

// CreateVote persists a vote from `user` on `post`.
func (f *Factory) CreateVote(user *models.User, post *models.Post) error {
	vote := &models.Vote{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.persist(vote, &vote.ID)
}

// CreateChangelogEntry constructs and persists a release note on the project.
// Published entries get a PublishedAt in the recent past.
func (f *Factory) CreateChangelogEntry(project *models.Project, published bool, overrides ...func(*models.ChangelogEntry)) (*models.ChangelogEntry, error) {
	entry := &models.ChangelogEntry{
		ProjectID: project.ID,
		Title:     gofakeit.Sentence(4),
		Body:      gofakeit.Paragraph(2, 3, 8, "\n\n"),
	}
	if published {
		at := time.Now().Add(-time.Duration(f.rand.Intn(30)) * 24 * time.Hour)
		entry.PublishedAt = &at
	}

	for _, override := range overrides {
		override(entry)
	}
	return entry, f.persist(entry, &entry.ID)
}

func (f *Factory) persist(entity any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] persist %T (no DB write)", entity)
		return nil
	}
	return f.db.Create(entity).Error
}
