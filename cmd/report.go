package cmd

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"gopkg.in/yaml.v3"

	"github.com/Infineon/mtb-manifest-checker/pkg/buildinfo"
	"github.com/Infineon/mtb-manifest-checker/pkg/manifest"
	"github.com/Infineon/mtb-manifest-checker/pkg/safeio"
)

type sessionReport struct {
	Tool        string            `json:"tool" yaml:"tool"`
	Version     string            `json:"version" yaml:"version"`
	GeneratedAt string            `json:"generated_at" yaml:"generated_at"`
	Duration    string            `json:"duration" yaml:"duration"`
	GitBackend  string            `json:"git_backend" yaml:"git_backend"`
	AssetCache  string            `json:"asset_cache" yaml:"asset_cache"`
	Assets      int               `json:"assets" yaml:"assets"`
	Manifests   []manifest.Record `json:"manifests" yaml:"manifests"`
	HTTP        reportHTTP        `json:"http" yaml:"http"`
	Git         reportGit         `json:"git" yaml:"git"`
}

type reportHTTP struct {
	Requests  int `json:"requests" yaml:"requests"`
	CacheHits int `json:"cache_hits" yaml:"cache_hits"`
	URLs      int `json:"urls" yaml:"urls"`
}

type reportGit struct {
	Listings     int `json:"listings" yaml:"listings"`
	CacheHits    int `json:"cache_hits" yaml:"cache_hits"`
	MirrorProbes int `json:"mirror_probes" yaml:"mirror_probes"`
	MirrorHits   int `json:"mirror_hits" yaml:"mirror_hits"`
}

func (e *environment) report() sessionReport {
	http := e.checker.Stats()
	git := e.resolver.Stats()
	return sessionReport{
		Tool:        "validate-assets",
		Version:     buildinfo.BinaryVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(e.started).Round(time.Millisecond).String(),
		GitBackend:  e.cfg.Git.Backend,
		AssetCache:  e.cfg.AssetCache,
		Assets:      e.session.Assets.Len(),
		Manifests:   e.session.Records(),
		HTTP:        reportHTTP{Requests: http.Misses, CacheHits: http.Hits, URLs: http.Size},
		Git: reportGit{
			Listings:     git.Listings,
			CacheHits:    git.CacheHits,
			MirrorProbes: git.MirrorProbes,
			MirrorHits:   git.MirrorHits,
		},
	}
}

//go:embed templates/report.md.hbs
var markdownReportTemplate string

// writeReport encodes r by the extension of path: .json for JSON, .md for a
// Markdown summary, YAML otherwise.
func writeReport(path string, r sessionReport) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	case ".md", ".markdown":
		var text string
		text, err = raymond.Render(markdownReportTemplate, r)
		data = []byte(text)
	default:
		data, err = yaml.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := safeio.EnsureParentDir(path); err != nil {
		return err
	}
	if err := safeio.WriteFilePreservePerms(path, data); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
