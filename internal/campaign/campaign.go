// Package campaign holds the fundraising campaign content: goal, milestones,
// progress stats and the media gallery.
package campaign

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// MilestoneStatus is the progress state of a milestone
type MilestoneStatus string

const (
	StatusCompleted  MilestoneStatus = "completed"
	StatusInProgress MilestoneStatus = "in-progress"
	StatusUpcoming   MilestoneStatus = "upcoming"
)

// Category groups milestones and media by initiative
type Category string

const (
	CategoryForest Category = "forest"
	CategoryOcean  Category = "ocean"
)

// Campaign is the public campaign content
type Campaign struct {
	Name        string      `yaml:"name" json:"name"`
	Tagline     string      `yaml:"tagline" json:"tagline"`
	Description string      `yaml:"description" json:"description"`
	GoalSTX     float64     `yaml:"goal_stx" json:"goalStx"`
	DaysLeft    int         `yaml:"days_left" json:"daysLeft"`
	Supporters  int         `yaml:"supporters" json:"supporters"`
	ActiveSites int         `yaml:"active_sites" json:"activeSites"`
	Stats       Stats       `yaml:"stats" json:"stats"`
	Milestones  []Milestone `yaml:"milestones" json:"milestones"`
	Gallery     []MediaItem `yaml:"gallery" json:"gallery"`
}

// Stats are the environmental results shown on the impact dashboard.
// CO2Absorbed and PlasticRemoved are in tons.
type Stats struct {
	TreesPlanted        int64   `yaml:"trees_planted" json:"treesPlanted"`
	CO2Absorbed         float64 `yaml:"co2_absorbed" json:"co2Absorbed"`
	PlasticRemoved      float64 `yaml:"plastic_removed" json:"plasticRemoved"`
	MarineLifeProtected int64   `yaml:"marine_life_protected" json:"marineLifeProtected"`
	CleanupSites        int     `yaml:"cleanup_sites" json:"cleanupSites"`
	PlantingSites       int     `yaml:"planting_sites" json:"plantingSites"`
}

// Milestone is a funding threshold and the work it unlocks
type Milestone struct {
	Percentage  float64         `yaml:"percentage" json:"percentage"`
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Status      MilestoneStatus `yaml:"status" json:"status"`
	Progress    float64         `yaml:"progress" json:"progress"`
	Category    Category        `yaml:"category" json:"category"`
}

// MediaItem is a gallery image or video
type MediaItem struct {
	ID          string   `yaml:"id" json:"id"`
	Type        string   `yaml:"type" json:"type"` // image or video
	Src         string   `yaml:"src" json:"src"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
	Location    string   `yaml:"location,omitempty" json:"location,omitempty"`
	Date        string   `yaml:"date,omitempty" json:"date,omitempty"`
}

// Default returns the built-in campaign content
func Default() *Campaign {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded campaign content is invalid: %v", err))
	}
	return c
}

// Load reads and validates a campaign file
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates campaign YAML
func Parse(data []byte) (*Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse campaign: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the campaign content is consistent
func (c *Campaign) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.GoalSTX <= 0 {
		errs = append(errs, fmt.Errorf("goal_stx must be positive, got %v", c.GoalSTX))
	}

	for i, m := range c.Milestones {
		if m.Percentage <= 0 || m.Percentage > 100 {
			errs = append(errs, fmt.Errorf("milestone %d: percentage must be in (0, 100], got %v", i, m.Percentage))
		}
		if m.Progress < 0 || m.Progress > 100 {
			errs = append(errs, fmt.Errorf("milestone %d: progress must be in [0, 100], got %v", i, m.Progress))
		}
		switch m.Status {
		case StatusCompleted, StatusInProgress, StatusUpcoming:
		default:
			errs = append(errs, fmt.Errorf("milestone %d: unknown status %q", i, m.Status))
		}
	}

	seen := make(map[string]bool, len(c.Gallery))
	for i, item := range c.Gallery {
		if item.ID == "" {
			errs = append(errs, fmt.Errorf("gallery item %d: id is required", i))
			continue
		}
		if seen[item.ID] {
			errs = append(errs, fmt.Errorf("gallery item %d: duplicate id %q", i, item.ID))
		}
		seen[item.ID] = true
		if item.Type != "image" && item.Type != "video" {
			errs = append(errs, fmt.Errorf("gallery item %q: type must be image or video", item.ID))
		}
	}

	return errors.Join(errs...)
}

// GalleryByCategory returns the gallery items of one category, or all of
// them when category is empty
func (c *Campaign) GalleryByCategory(category Category) []MediaItem {
	if category == "" {
		return c.Gallery
	}
	var items []MediaItem
	for _, item := range c.Gallery {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items
}
