package manager

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
	"github.com/YPSH-DGC/YPMS/internal/source"
)

// PackageInfo implements planner.MetadataProvider.
func (m *Manager) PackageInfo(ctx context.Context, sourceName, user, pkg string) (gjson.Result, error) {
	src, err := m.resolverFor(ctx, sourceName, false)
	if err != nil {
		return gjson.Result{}, err
	}
	return src.FetchPackageInfo(ctx, user, pkg, false)
}

// ReleaseInfo implements planner.MetadataProvider.
func (m *Manager) ReleaseInfo(ctx context.Context, sourceName string, pkgInfo gjson.Result, resolvedTag string) (gjson.Result, error) {
	src, err := m.resolverFor(ctx, sourceName, false)
	if err != nil {
		return gjson.Result{}, err
	}
	return src.FetchReleaseInfo(ctx, pkgInfo, resolvedTag)
}

// HasSource implements planner.SourceChecker and guide.Effects.
func (m *Manager) HasSource(name string) bool { return m.sources.has(name) }

// ReleaseDepends implements ledger.Resolver.
func (m *Manager) ReleaseDepends(ctx context.Context, sourceName, user, pkg, version string) ([]depref.Ref, error) {
	pkgInfo, err := m.PackageInfo(ctx, sourceName, user, pkg)
	if err != nil {
		return nil, err
	}
	releaseInfo, err := m.ReleaseInfo(ctx, sourceName, pkgInfo, version)
	if err != nil {
		return nil, err
	}

	var refs []depref.Ref
	depends := flatGetDepends(releaseInfo)
	for _, entry := range depends {
		ref, err := depref.ParseDepEntry(entry)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ResolveVersion implements ledger.Resolver.
func (m *Manager) ResolveVersion(ctx context.Context, sourceName, user, pkg, tag string) (string, error) {
	pkgInfo, err := m.PackageInfo(ctx, sourceName, user, pkg)
	if err != nil {
		return "", err
	}
	return source.ResolveReleaseTag(pkgInfo, tag), nil
}

func flatGetDepends(releaseInfo gjson.Result) []gjson.Result {
	field := jsonutil.FlatGet(releaseInfo, "release.depends")
	if !field.IsArray() {
		return nil
	}
	return field.Array()
}
