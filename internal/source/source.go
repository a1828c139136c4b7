package source

import (
	"context"
	"strings"

	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/httpcache"
	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
	"github.com/YPSH-DGC/YPMS/internal/log"
	"github.com/tidwall/gjson"
)

// Source resolves metadata for a single configured repository.
type Source struct {
	Name      string
	ConfigURL string
	Config    RepoConfig

	cache  *httpcache.Cache
	logger log.Logger
}

// New constructs a Source, fetching and validating its repo descriptor.
// Per spec.md §4.3, construction fails if required keys are missing.
func New(ctx context.Context, name, configURL string, cache *httpcache.Cache, forceRefresh bool) (*Source, error) {
	opts := httpcache.DefaultOptions()
	opts.ForceRefresh = forceRefresh

	cfg, err := fetchRepoConfig(ctx, cache, configURL, opts)
	if err != nil {
		return nil, err
	}

	return &Source{
		Name:      name,
		ConfigURL: configURL,
		Config:    cfg,
		cache:     cache,
		logger:    log.Default(),
	}, nil
}

func (s *Source) indexURL() string {
	return s.Config.BaseURL + s.Config.PathIndex
}

func (s *Source) packageURL(user, pkg string) string {
	tmpl := s.Config.BaseURL + s.Config.PathPackage
	r := strings.NewReplacer("{USER_ID}", user, "{PACKAGE_ID}", pkg)
	return r.Replace(tmpl)
}

// FetchIndex returns the source's package index document.
func (s *Source) FetchIndex(ctx context.Context, forceRefresh bool) (gjson.Result, error) {
	opts := httpcache.DefaultOptions()
	opts.ForceRefresh = forceRefresh
	return s.cache.FetchJSON(ctx, s.indexURL(), opts)
}

// FetchPackageInfo returns the package info document for user/pkg.
func (s *Source) FetchPackageInfo(ctx context.Context, user, pkg string, forceRefresh bool) (gjson.Result, error) {
	opts := httpcache.DefaultOptions()
	opts.ForceRefresh = forceRefresh
	return s.cache.FetchJSON(ctx, s.packageURL(user, pkg), opts)
}

// FetchReleaseInfo returns the release info document for releaseID,
// substituting {RELEASE_ID} into pkgInfo's package.release.url template.
func (s *Source) FetchReleaseInfo(ctx context.Context, pkgInfo gjson.Result, releaseID string) (gjson.Result, error) {
	tmpl := jsonutil.FlatGet(pkgInfo, "package.release.url")
	if !tmpl.Exists() || tmpl.String() == "" {
		return gjson.Result{}, errs.New(errs.KindDecode, "package info missing \"package.release.url\"")
	}
	url := strings.ReplaceAll(tmpl.String(), "{RELEASE_ID}", releaseID)
	return s.cache.FetchJSON(ctx, url, httpcache.DefaultOptions())
}

// ResolveReleaseTag implements the alias-resolution algorithm of spec.md §4.3:
//  1. If tag is empty, use package.release.default.
//  2. If still empty, use alias["latest"].
//  3. If still empty, use the first entry of package.release.list.
//  4. Return alias[tag] if present, else tag unchanged. Aliasing is one
//     level; chained aliases are not resolved.
func ResolveReleaseTag(pkgInfo gjson.Result, tag string) string {
	alias := jsonutil.FlatGet(pkgInfo, "package.release.alias")

	if tag == "" {
		tag = jsonutil.FlatGet(pkgInfo, "package.release.default").String()
	}
	if tag == "" {
		tag = alias.Get("latest").String()
	}
	if tag == "" {
		list := jsonutil.FlatGet(pkgInfo, "package.release.list")
		if list.IsArray() {
			arr := list.Array()
			if len(arr) > 0 {
				tag = arr[0].String()
			}
		}
	}

	if resolved := alias.Get(tag); resolved.Exists() && resolved.String() != "" {
		return resolved.String()
	}
	return tag
}
