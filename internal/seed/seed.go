package seed

import (
	"fmt"
	"log"

	"leanvote/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumBoards   int
	NumVoters   int
	NumPosts    int
	ShouldClean bool
}

// Distribution splits generated posts across categories. Values are ratios
// and should sum to 1.0; any rounding remainder lands in features.
type Distribution struct {
	Feature     float64
	Bug         float64
	Improvement float64
}

var defaultDistribution = Distribution{Feature: 0.5, Bug: 0.3, Improvement: 0.2}

// statusSpread moves a share of seeded posts onto the roadmap so the kanban
// view is not empty. Keys are per-mille of the post count.
var statusSpread = map[models.PostStatus]int{
	models.PostStatusPlanned:    200,
	models.PostStatusInProgress: 100,
	models.PostStatusComplete:   100,
}

// computeCounts splits total posts into per-category counts.
func computeCounts(total int, d Distribution) (feature, bug, improvement int) {
	bug = int(float64(total) * d.Bug)
	improvement = int(float64(total) * d.Improvement)
	feature = total - bug - improvement
	return feature, bug, improvement
}

// Seed populates the database with demo boards, voters, posts, votes,
// comments, and changelog entries.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumBoards <= 0 {
		opts.NumBoards = 1
	}
	log.Printf("Seeding %d boards, %d voters, %d posts...", opts.NumBoards, opts.NumVoters, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, SeedOptions{MaxDays: 90})

	voters := make([]*models.User, 0, opts.NumVoters)
	for i := 0; i < opts.NumVoters; i++ {
		voter, err := f.CreateVoter()
		if err != nil {
			return fmt.Errorf("failed to create voter: %w", err)
		}
		voters = append(voters, voter)
	}
	log.Printf("✓ %d voters created", len(voters))

	for b := 0; b < opts.NumBoards; b++ {
		owner, err := f.CreateOwner()
		if err != nil {
			return fmt.Errorf("failed to create board owner: %w", err)
		}
		project, err := f.CreateProject(owner)
		if err != nil {
			return fmt.Errorf("failed to create board: %w", err)
		}

		if err := seedBoardContent(f, project, voters, opts.NumPosts/opts.NumBoards); err != nil {
			return fmt.Errorf("failed to seed board %q: %w", project.Slug, err)
		}
	}

	log.Println("Database seeding completed")
	return nil
}

func seedBoardContent(f *Factory, project *models.Project, voters []*models.User, numPosts int) error {
	feature, bug, improvement := computeCounts(numPosts, defaultDistribution)

	posts := make([]*models.Post, 0, numPosts)
	for _, batch := range []struct {
		category string
		count    int
	}{
		{models.PostCategoryFeature, feature},
		{models.PostCategoryBug, bug},
		{models.PostCategoryImprovement, improvement},
	} {
		for i := 0; i < batch.count; i++ {
			authorID := uint(0)
			if len(voters) > 0 && f.rand.Intn(10) < 8 {
				authorID = voters[f.rand.Intn(len(voters))].ID
			}
			posts = append(posts, f.BuildPost(project, authorID, batch.category))
		}
	}

	// Promote a share of posts onto the roadmap columns.
	idx := 0
	for status, perMille := range statusSpread {
		promote := numPosts * perMille / 1000
		for i := 0; i < promote && idx < len(posts); i, idx = i+1, idx+1 {
			posts[idx].Status = status
		}
	}

	if err := f.CreatePostsBatch(posts); err != nil {
		return err
	}
	log.Printf("✓ %d posts created on board %q", len(posts), project.Slug)

	// Votes and comments from random voters; duplicates are skipped by the
	// unique (user, post) index.
	for _, post := range posts {
		for _, voter := range voters {
			if f.rand.Intn(10) < 3 {
				if err := f.CreateVote(voter, post); err != nil {
					continue
				}
			}
		}
		if len(voters) > 0 && f.rand.Intn(10) < 4 {
			voter := voters[f.rand.Intn(len(voters))]
			if _, err := f.CreateComment(voter, post); err != nil {
				return err
			}
		}
	}

	for i := 0; i < 3; i++ {
		if _, err := f.CreateChangelogEntry(project, i < 2); err != nil {
			return err
		}
	}
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, votes, posts, changelog_entries, purchases, projects, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}
