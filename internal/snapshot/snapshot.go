// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package snapshot writes a site's public data as static JSON files:
// navigation.json, pages.json, templates.json and settings.json under
// <output_dir>/<site_id>/. Every file is replaced atomically, so readers see
// either the previous or the new version and a failed run leaves the files
// it did not rewrite intact.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blockpress/internal/metrics"
	"blockpress/internal/models"
)

// Snapshot file names.
const (
	FileNavigation = "navigation.json"
	FilePages      = "pages.json"
	FileTemplates  = "templates.json"
	FileSettings   = "settings.json"
)

// Files lists every file a snapshot writes.
var Files = []string{FileNavigation, FilePages, FileTemplates, FileSettings}

// ErrSiteNotFound is reported when the site to snapshot does not exist.
var ErrSiteNotFound = errors.New("site not found")

type SiteSource interface {
	FindByID(id uuid.UUID) (*models.Site, error)
	ListActive() ([]models.Site, error)
}

type PageSource interface {
	ListPublished(siteID uuid.UUID) ([]models.Page, error)
}

type TemplateSource interface {
	ListBySite(siteID uuid.UUID) ([]models.Template, error)
}

type BlockSource interface {
	List(parentID uuid.UUID) ([]models.Block, error)
}

type NavigationSource interface {
	ListVisible(siteID uuid.UUID) ([]models.NavigationItem, error)
}

type SettingsSource interface {
	All(siteID uuid.UUID) (models.SiteSettings, error)
}

// Mirror receives a copy of every written file. *storage.Client satisfies it.
type Mirror interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// Sources are the stores a Generator reads from.
type Sources struct {
	Sites          SiteSource
	Pages          PageSource
	PageBlocks     BlockSource
	Templates      TemplateSource
	TemplateBlocks BlockSource
	Navigation     NavigationSource
	Settings       SettingsSource
}

// Envelope is the content of every snapshot file.
type Envelope struct {
	SiteID      uuid.UUID `json:"site_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
	Items       any       `json:"items"`
}

// Result reports one snapshot run.
type Result struct {
	SiteID      uuid.UUID      `json:"site_id"`
	Success     bool           `json:"success"`
	Counts      map[string]int `json:"counts"`
	GeneratedAt time.Time      `json:"generated_at"`
	Duration    string         `json:"duration"`
	Error       string         `json:"error,omitempty"`
	MirrorError string         `json:"mirror_error,omitempty"`
}

// Generator produces snapshots.
type Generator struct {
	src       Sources
	outputDir string
	mirror    Mirror
	now       func() time.Time
}

// NewGenerator creates a Generator writing below outputDir. mirror may be nil.
func NewGenerator(src Sources, outputDir string, mirror Mirror) *Generator {
	return &Generator{src: src, outputDir: outputDir, mirror: mirror, now: time.Now}
}

// OutputDir returns the directory snapshots are written to.
func (g *Generator) OutputDir() string { return g.outputDir }

// SiteDir returns the snapshot directory of a site.
func (g *Generator) SiteDir(siteID uuid.UUID) string {
	return filepath.Join(g.outputDir, siteID.String())
}

// Generate writes the snapshot of one site. All data is read before any
// file is touched.
func (g *Generator) Generate(ctx context.Context, siteID uuid.UUID) Result {
	start := g.now()
	res := Result{SiteID: siteID, Counts: map[string]int{}, GeneratedAt: start.UTC()}

	err := g.generate(ctx, siteID, &res)
	res.Duration = g.now().Sub(start).String()
	metrics.SnapshotDuration.Observe(g.now().Sub(start).Seconds())

	if err != nil {
		res.Error = err.Error()
		metrics.SnapshotRuns.WithLabelValues("failure").Inc()
		zap.S().Errorw("snapshot failed", "site_id", siteID, "error", err)
		return res
	}
	res.Success = true
	metrics.SnapshotRuns.WithLabelValues("success").Inc()
	zap.S().Infow("snapshot generated",
		"site_id", siteID,
		"counts", res.Counts,
		"duration", res.Duration,
	)
	return res
}

func (g *Generator) generate(ctx context.Context, siteID uuid.UUID, res *Result) error {
	site, err := g.src.Sites.FindByID(siteID)
	if err != nil {
		return fmt.Errorf("load site: %w", err)
	}
	if site == nil {
		return ErrSiteNotFound
	}

	files, err := g.collect(site)
	if err != nil {
		return err
	}

	dir := g.SiteDir(siteID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	encoded := make(map[string][]byte, len(files))
	for name, env := range files {
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		encoded[name] = data
		res.Counts[name] = env.Count
	}

	eg, egctx := errgroup.WithContext(ctx)
	for name, data := range encoded {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			return writeAtomic(filepath.Join(dir, name), data)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if g.mirror != nil {
		if err := g.mirrorFiles(ctx, siteID, encoded); err != nil {
			res.MirrorError = err.Error()
			zap.S().Warnw("snapshot mirror failed", "site_id", siteID, "error", err)
		}
	}
	return nil
}

// collect reads every snapshot file's items.
func (g *Generator) collect(site *models.Site) (map[string]Envelope, error) {
	now := g.now().UTC()
	envelope := func(count int, items any) Envelope {
		return Envelope{SiteID: site.ID, GeneratedAt: now, Count: count, Items: items}
	}

	nav, err := g.src.Navigation.ListVisible(site.ID)
	if err != nil {
		return nil, fmt.Errorf("load navigation: %w", err)
	}
	if nav == nil {
		nav = []models.NavigationItem{}
	}

	pages, err := g.src.Pages.ListPublished(site.ID)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	if pages == nil {
		pages = []models.Page{}
	}
	for i := range pages {
		blocks, err := g.src.PageBlocks.List(pages[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load blocks of page %s: %w", pages[i].ID, err)
		}
		pages[i].Blocks = models.VisibleBlocks(blocks)
	}

	templates, err := g.src.Templates.ListBySite(site.ID)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	for i := range templates {
		blocks, err := g.src.TemplateBlocks.List(templates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load blocks of template %s: %w", templates[i].ID, err)
		}
		templates[i].Blocks = models.VisibleBlocks(blocks)
	}

	settings, err := g.src.Settings.All(site.ID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		settings = models.SiteSettings{}
	}

	return map[string]Envelope{
		FileNavigation: envelope(len(nav), nav),
		FilePages:      envelope(len(pages), pages),
		FileTemplates:  envelope(len(templates), templates),
		FileSettings:   envelope(len(settings), settings),
	}, nil
}

func (g *Generator) mirrorFiles(ctx context.Context, siteID uuid.UUID, encoded map[string][]byte) error {
	names := make([]string, 0, len(encoded))
	for name := range encoded {
		names = append(names, name)
	}
	sort.Strings(names)

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, name := range names {
		eg.Go(func() error {
			return g.mirror.Put(egctx, siteID.String()+"/"+name, "application/json", encoded[name])
		})
	}
	return eg.Wait()
}

// GenerateAll snapshots every active site.
func (g *Generator) GenerateAll(ctx context.Context) ([]Result, error) {
	sites, err := g.src.Sites.ListActive()
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}
	results := make([]Result, 0, len(sites))
	for _, s := range sites {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, g.Generate(ctx, s.ID))
	}
	return results, nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("write %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("chmod %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
