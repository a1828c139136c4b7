package ledger

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/YPSH-DGC/YPMS/internal/depref"
)

// Resolver is the subset of the manager's metadata access that the ledger
// needs to walk dependency edges without importing the source/manager
// packages directly (mirrors the guide package's Effects indirection).
type Resolver interface {
	// ReleaseDepends returns the parsed release.depends entries for the
	// release identified by (source, user, pkg, version).
	ReleaseDepends(ctx context.Context, source, user, pkg, version string) ([]depref.Ref, error)

	// ResolveVersion alias-resolves tag against (source, user, pkg)'s own
	// package info, returning the concrete version.
	ResolveVersion(ctx context.Context, source, user, pkg, tag string) (string, error)
}

// Dependent describes one installed package that depends on a target
// package, per spec.md §4.6.
type Dependent struct {
	DependentSource  string
	DependentPackage string
	DependentVersion string
	RequiredVersion  string
}

// FindDependents iterates every record in env and reports those whose
// release.depends resolves to (targetSource, targetRef).
func (l *Ledger) FindDependents(ctx context.Context, resolver Resolver, env, targetSource string, targetRef depref.Ref) ([]Dependent, error) {
	var dependents []Dependent

	envRecords := l.ListInstalled(env)[env]
	for _, rec := range envRecords {
		user, pkg, err := depref.SplitPackageRef(rec.Package)
		if err != nil {
			continue
		}

		depRefs, err := resolver.ReleaseDepends(ctx, rec.Source, user, pkg, rec.Version)
		if err != nil {
			return nil, err
		}

		for _, depRef := range depRefs {
			depSource := depRef.Source
			if depSource == "" {
				depSource = rec.Source
			}
			if depSource != targetSource || depRef.PackageRef() != targetRef.PackageRef() {
				continue
			}

			required := ""
			if depRef.Version != "" {
				required, err = resolver.ResolveVersion(ctx, depSource, targetRef.User, targetRef.Package, depRef.Version)
				if err != nil {
					return nil, err
				}
			}

			dependents = append(dependents, Dependent{
				DependentSource:  rec.Source,
				DependentPackage: rec.Package,
				DependentVersion: rec.Version,
				RequiredVersion:  required,
			})
		}
	}

	return dependents, nil
}

// CheckUpdateCompat reports a blocker message for every dependent whose
// required_version is pinned to something other than newVersion, per
// spec.md §4.6.
func (l *Ledger) CheckUpdateCompat(ctx context.Context, resolver Resolver, env, targetSource string, targetRef depref.Ref, newVersion string) ([]string, error) {
	dependents, err := l.FindDependents(ctx, resolver, env, targetSource, targetRef)
	if err != nil {
		return nil, err
	}

	var blockers []string
	for _, d := range dependents {
		if d.RequiredVersion == "" || d.RequiredVersion == "latest" || d.RequiredVersion == "*" {
			continue
		}
		if d.RequiredVersion == newVersion {
			continue
		}
		blockers = append(blockers, fmt.Sprintf(
			"%s:%s@%s requires %s@%s, which conflicts with update to %s%s",
			d.DependentSource, d.DependentPackage, d.DependentVersion,
			targetRef.PackageRef(), d.RequiredVersion, newVersion,
			semverDirectionHint(d.RequiredVersion, newVersion)))
	}
	return blockers, nil
}

// semverDirectionHint returns a parenthetical noting whether the proposed
// update is older or newer than the pinned requirement, when both parse as
// semver. This is diagnostic sugar only: the blocking decision above is the
// spec's literal string-equality check, never semver ordering.
func semverDirectionHint(required, proposed string) string {
	req, err := semver.NewVersion(required)
	if err != nil {
		return ""
	}
	prop, err := semver.NewVersion(proposed)
	if err != nil {
		return ""
	}
	switch prop.Compare(req) {
	case -1:
		return " (downgrade)"
	case 1:
		return " (upgrade)"
	default:
		return ""
	}
}
