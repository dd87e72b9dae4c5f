// Package generator wires the beacon pipeline together: load annotated
// declarations, extract validated records, and synthesize accessor files,
// reusing cached output for types that did not change.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/beacon-tools/beacon/internal/generator/cache"
	"github.com/beacon-tools/beacon/internal/generator/diag"
	"github.com/beacon-tools/beacon/internal/generator/emit"
	"github.com/beacon-tools/beacon/internal/generator/extract"
	"github.com/beacon-tools/beacon/internal/generator/filter"
	"github.com/beacon-tools/beacon/internal/generator/load"
	"github.com/beacon-tools/beacon/internal/generator/model"
)

// Options configure one pipeline instance.
type Options struct {
	// Dir is the working directory package patterns resolve against.
	Dir string
	// Patterns are build-system package patterns, e.g. ./... .
	Patterns []string
	// Excludes drops packages whose import path contains any entry.
	Excludes []string

	Syntax       filter.SyntaxVersion
	EmitChanging bool

	// CacheDir enables on-disk persistence when non-empty.
	CacheDir    string
	Fingerprint string

	// DryRun synthesizes without writing files.
	DryRun bool

	Log *zap.Logger
}

// FileOutput is one synthesized file.
type FileOutput struct {
	Path    string `json:"path"`
	Source  string `json:"-"`
	Cached  bool   `json:"cached"`
	Written bool   `json:"written"`
}

// Report is the outcome of one pass.
type Report struct {
	Files         []FileOutput
	Records       []model.PropertyRecord
	Diagnostics   []diag.Diagnostic
	PackageErrors []string
	Metrics       *cache.Metrics
}

// HasErrors reports whether the pass produced error diagnostics or package
// load failures.
func (r *Report) HasErrors() bool {
	return len(r.PackageErrors) > 0 || diag.HasErrors(r.Diagnostics)
}

// Pipeline runs generation passes over a project. It holds the cache
// between passes, so watch mode reuses it.
type Pipeline struct {
	opts      Options
	loader    *load.Loader
	extractor *extract.Extractor
	store     *cache.Store
	log       *zap.Logger
}

// New builds a pipeline, restoring the persisted cache when configured.
func New(opts Options) (*Pipeline, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	store := cache.NewStore()
	if opts.CacheDir != "" {
		loaded, err := cache.Load(opts.CacheDir, opts.Fingerprint)
		if err != nil {
			return nil, err
		}
		store = loaded
		log.Debug("restored cache", zap.Int("entries", store.Len()))
	}

	return &Pipeline{
		opts:      opts,
		loader:    load.NewLoader(opts.Syntax, log),
		extractor: extract.New(),
		store:     store,
		log:       log,
	}, nil
}

// Run executes one full pass and writes changed files.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	pkgs, err := p.loader.Load(ctx, p.opts.Dir, p.opts.Patterns...)
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		if p.excluded(pkg.Path) {
			continue
		}
		report.PackageErrors = append(report.PackageErrors, pkg.Errors...)

		var groups []emit.Group
		for _, tc := range pkg.Types {
			records, diags, err := p.extractor.ExtractType(ctx, &tc.Facts, tc.Candidates)
			if err != nil {
				return nil, err
			}
			report.Diagnostics = append(report.Diagnostics, diags...)
			report.Records = append(report.Records, records...)
			groups = append(groups, emit.GroupRecords(records)...)
		}
		if len(groups) == 0 {
			continue
		}

		coord := cache.NewCoordinator(p.store, emit.Config{GenerateChanging: p.opts.EmitChanging})
		results, metrics, err := coord.EmitGroups(ctx, groups)
		if err != nil {
			return nil, err
		}
		p.mergeMetrics(report, metrics)

		for _, res := range results {
			if res.Err != nil {
				report.PackageErrors = append(report.PackageErrors, res.Err.Error())
				continue
			}
			out := FileOutput{
				Path:   filepath.Join(pkg.Dir, res.Filename),
				Source: res.Source,
				Cached: res.Cached,
			}
			if !p.opts.DryRun {
				written, err := writeIfChanged(out.Path, out.Source)
				if err != nil {
					return nil, err
				}
				out.Written = written
				if written && report.Metrics != nil {
					report.Metrics.FilesWritten++
				}
			}
			report.Files = append(report.Files, out)
			p.log.Debug("synthesized",
				zap.String("file", out.Path),
				zap.Bool("cached", out.Cached),
				zap.Bool("written", out.Written))
		}
	}

	if p.opts.CacheDir != "" && !p.opts.DryRun {
		if err := cache.Save(p.store, p.opts.CacheDir, p.opts.Fingerprint); err != nil {
			p.log.Warn("failed to persist cache", zap.Error(err))
		}
	}
	return report, nil
}

func (p *Pipeline) excluded(pkgPath string) bool {
	for _, ex := range p.opts.Excludes {
		ex = strings.TrimPrefix(strings.TrimSpace(ex), "./")
		if ex != "" && strings.Contains(pkgPath, ex) {
			return true
		}
	}
	return false
}

// mergeMetrics folds per-package coordinator metrics into one report-wide
// record, keeping the first session ID.
func (p *Pipeline) mergeMetrics(report *Report, m *cache.Metrics) {
	if report.Metrics == nil {
		report.Metrics = m
		return
	}
	report.Metrics.TotalGroups += m.TotalGroups
	report.Metrics.CacheHits += m.CacheHits
	report.Metrics.CacheMisses += m.CacheMisses
	report.Metrics.EmitDuration += m.EmitDuration
	report.Metrics.Finish()
}

// writeIfChanged writes source only when the on-disk content differs, so
// unchanged output never touches modification times and never retriggers
// file watchers.
func writeIfChanged(path, source string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == source {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
