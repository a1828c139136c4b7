// Package source implements the source resolver of spec.md §4.3: loading a
// source's repo config, composing index/package/release URLs, and
// resolving release tags through aliases.
package source

import (
	"context"
	"strings"

	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/httpcache"
	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
	"github.com/tidwall/gjson"
)

// RepoConfig is the parsed repo-descriptor document, per spec.md §3 and §6.
type RepoConfig struct {
	RepoID      string
	Name        string
	Desc        string
	BaseURL     string
	PathIndex   string
	PathPackage string
}

const (
	keyRepoID      = "ypms.repo.id"
	keyRepoName    = "ypms.repo.name"
	keyRepoDesc    = "ypms.repo.desc"
	keyRepoURL     = "ypms.repo.url"
	keyPathIndex   = "ypms.repo.path.index"
	keyPathPackage = "ypms.repo.path.package"
)

// fetchRepoConfig fetches and validates the repo descriptor at configURL,
// per spec.md §4.3 ("missing required keys is an error").
func fetchRepoConfig(ctx context.Context, cache *httpcache.Cache, configURL string, opts httpcache.Options) (RepoConfig, error) {
	doc, err := cache.FetchJSON(ctx, configURL, opts)
	if err != nil {
		return RepoConfig{}, err
	}

	required := map[string]string{
		keyRepoID:      "",
		keyRepoName:    "",
		keyRepoURL:     "",
		keyPathIndex:   "",
		keyPathPackage: "",
	}
	for key := range required {
		v := jsonutil.FlatGet(doc, key)
		if !v.Exists() || v.String() == "" {
			return RepoConfig{}, errs.New(errs.KindDecode, "missing key %q in repo descriptor at %s", key, configURL)
		}
		required[key] = v.String()
	}

	return RepoConfig{
		RepoID:      required[keyRepoID],
		Name:        required[keyRepoName],
		Desc:        jsonutil.FlatGet(doc, keyRepoDesc).String(),
		BaseURL:     strings.TrimSuffix(required[keyRepoURL], "/"),
		PathIndex:   required[keyPathIndex],
		PathPackage: required[keyPathPackage],
	}, nil
}
