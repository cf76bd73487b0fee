package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/baytides/climate-quest/pkg/content"
)

// ErrNotFound is returned for locations, summaries or manifests that were never published.
var ErrNotFound = errors.New("not found")

// Manifest describes one published content set.
type Manifest struct {
	RunID       uuid.UUID `json:"run_id"` // run id of the validation report that approved the content
	PublishedAt time.Time `json:"published_at"`
	Locations   int       `json:"locations"`
	Questions   int       `json:"questions"`
	Events      int       `json:"events"`
	Summaries   int       `json:"summaries"`
	Warnings    int       `json:"warnings"`
}

// NewManifest counts a catalog for publication under runID.
func NewManifest(runID uuid.UUID, c *content.Catalog, locations []content.Location, warnings int) Manifest {
	return Manifest{
		RunID:       runID,
		PublishedAt: time.Now().UTC(),
		Locations:   len(locations),
		Questions:   len(c.Questions),
		Events:      len(c.Events),
		Summaries:   len(c.Summaries),
		Warnings:    warnings,
	}
}

// ContentStore is the published read model the game and API serve from.
type ContentStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Publish replaces everything previously published with c. Readers see
	// either the old content set or the new one, never a mix.
	Publish(ctx context.Context, c *content.Catalog, locations []content.Location, m Manifest) error

	// Read operations. Lists keep catalog order and are never nil.
	Locations(ctx context.Context) ([]content.Location, error)
	Location(ctx context.Context, id string) (content.Location, error)
	QuestionsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Question, error)
	EventsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Event, error)
	SummaryForLocation(ctx context.Context, locationID string) (content.Summary, error)
	LatestManifest(ctx context.Context) (Manifest, error)
}
