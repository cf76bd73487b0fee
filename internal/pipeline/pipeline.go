// Package pipeline wires the content stages together: CSV sources are
// converted to JSON documents, which are then validated as one catalog.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/baytides/climate-quest/internal/config"
	"github.com/baytides/climate-quest/pkg/builder"
	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/csvsource"
	"github.com/baytides/climate-quest/pkg/emit"
	"github.com/baytides/climate-quest/pkg/textfilter"
	"github.com/baytides/climate-quest/pkg/validate"
)

// Result describes one converted content kind.
type Result struct {
	Kind   content.Kind
	Source string
	Output string
	Rows   int
}

// Pipeline runs conversion and validation against the directories in its config.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Convert converts each kind, or every kind when none are given. Kinds are
// independent: a failure in one does not stop the others, and the returned
// error joins every failure. A failed kind leaves its previous output untouched.
func (p *Pipeline) Convert(ctx context.Context, kinds ...content.Kind) ([]Result, error) {
	if len(kinds) == 0 {
		kinds = content.Kinds
	}

	results := make([]Result, 0, len(kinds))
	var errs []error
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.ConvertKind(kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// ConvertKind reads <src>/<kind>.csv and writes <out>/<kind>.json.
func (p *Pipeline) ConvertKind(kind content.Kind) (Result, error) {
	res := Result{
		Kind:   kind,
		Source: filepath.Join(p.cfg.SourceDir, kind.SourceFile()),
		Output: filepath.Join(p.cfg.OutputDir, kind.OutputFile()),
	}

	f, err := os.Open(res.Source)
	if err != nil {
		p.logger.Error("Failed to open content source", "kind", kind, "path", res.Source, "error", err)
		return res, fmt.Errorf("convert %s: %w", kind, err)
	}
	defer f.Close()

	doc, err := csvsource.Parse(f)
	if err != nil {
		p.logger.Error("Failed to parse content source", "kind", kind, "path", res.Source, "error", err)
		return res, fmt.Errorf("convert %s: %s: %w", kind, res.Source, err)
	}

	items, rows, err := builder.Build(kind, doc)
	if err != nil {
		p.logger.Error("Failed to build content records", "kind", kind, "path", res.Source, "error", err)
		return res, fmt.Errorf("convert %s: %s: %w", kind, res.Source, err)
	}

	if err := emit.WriteFile(res.Output, items); err != nil {
		p.logger.Error("Failed to write content output", "kind", kind, "path", res.Output, "error", err)
		return res, fmt.Errorf("convert %s: %w", kind, err)
	}

	res.Rows = rows
	p.logger.Info("Converted content", "kind", kind, "path", res.Output, "rows", rows)
	return res, nil
}

// Validate loads the location registry and the emitted catalog and validates them.
// The returned error covers loading only; validation findings are in the report.
func (p *Pipeline) Validate(ctx context.Context) (*validate.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	locations, err := content.LoadLocations(p.cfg.LocationsFile)
	if err != nil {
		p.logger.Error("Failed to load locations", "path", p.cfg.LocationsFile, "error", err)
		return nil, err
	}

	catalog, err := validate.LoadCatalog(p.cfg.OutputDir)
	if err != nil {
		p.logger.Error("Failed to load content catalog", "path", p.cfg.OutputDir, "error", err)
		return nil, err
	}

	rep := p.Validator(locations).Validate(catalog)
	p.logger.Info("Validated content",
		"run_id", rep.RunID,
		"errors", len(rep.Errors),
		"warnings", len(rep.Warnings),
		"locations", len(rep.Order))
	return rep, nil
}

// Validator builds a validator for the given locations using the configured options.
func (p *Pipeline) Validator(locations []content.Location) *validate.Validator {
	var opts []validate.Option
	if p.cfg.LanguageScreen {
		opts = append(opts, validate.WithLanguageScreen(textfilter.NewProfanityFilter()))
	}
	return validate.New(content.RegistryFrom(locations), opts...)
}

// Run converts every kind and then validates the result. Validation only runs
// when every kind converted.
func (p *Pipeline) Run(ctx context.Context) (*validate.Report, error) {
	if _, err := p.Convert(ctx); err != nil {
		return nil, err
	}
	return p.Validate(ctx)
}

// Catalog loads the emitted catalog along with the location list.
func (p *Pipeline) Catalog() (*content.Catalog, []content.Location, error) {
	locations, err := content.LoadLocations(p.cfg.LocationsFile)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := validate.LoadCatalog(p.cfg.OutputDir)
	if err != nil {
		return nil, nil, err
	}
	return catalog, locations, nil
}
