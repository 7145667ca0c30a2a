package storage

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gopkg.in/yaml.v3"

	"rozgar/internal/domain"
)

// JobCatalog reads externally sourced job listings. The catalog is read-only
// to the core; Seed loads listings from a YAML file at startup.
type JobCatalog struct {
	db *gorm.DB
}

func NewJobCatalog(db *gorm.DB) *JobCatalog { return &JobCatalog{db: db} }

func (c *JobCatalog) Listings(ctx context.Context) ([]domain.JobListing, error) {
	var rows []jobRow
	if err := c.db.WithContext(ctx).Order("posted_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	listings := make([]domain.JobListing, len(rows))
	for i, r := range rows {
		listings[i] = r.toDomain()
	}
	return listings, nil
}

type seedListing struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Company     string    `yaml:"company"`
	Category    string    `yaml:"category"`
	Description string    `yaml:"description"`
	Location    string    `yaml:"location"`
	PostedAt    time.Time `yaml:"posted_at"`
}

// Seed upserts listings from a YAML file. An empty path loads a small
// built-in sample so a fresh install has something to recommend.
func (c *JobCatalog) Seed(ctx context.Context, path string) error {
	var listings []seedListing
	if path == "" {
		listings = builtinListings()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var file struct {
			Listings []seedListing `yaml:"listings"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return err
		}
		listings = file.Listings
	}
	if len(listings) == 0 {
		return nil
	}
	rows := make([]jobRow, len(listings))
	for i, l := range listings {
		rows[i] = jobRow{
			ID:          l.ID,
			Title:       l.Title,
			Company:     l.Company,
			Category:    l.Category,
			Description: l.Description,
			Location:    l.Location,
			PostedAt:    l.PostedAt,
		}
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
}

func builtinListings() []seedListing {
	now := time.Now()
	return []seedListing{
		{
			ID: "job-001", Title: "Software Developer", Company: "Tech Corp India",
			Category: "Technology", Location: "Chandigarh",
			Description: "Looking for skilled software developers with Python experience. Remote role possible.",
			PostedAt:    now.AddDate(0, 0, -3),
		},
		{
			ID: "job-002", Title: "Administrative Officer", Company: "Punjab Government",
			Category: "Government Jobs", Location: "Various Locations",
			Description: "Administrative officer position in state government departments.",
			PostedAt:    now.AddDate(0, 0, -10),
		},
		{
			ID: "job-003", Title: "Skill Development Trainer", Company: "State Skill Development Mission",
			Category: "Skill Development", Location: "Ludhiana",
			Description: "Trainer for digital literacy and communication skills programs.",
			PostedAt:    now.AddDate(0, 0, -7),
		},
	}
}
