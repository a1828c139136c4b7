// Package planner implements the operation-planning algorithm of spec.md
// §4.7: given a root package reference, it walks the root's declared
// dependencies one level deep and produces a flat, ordered list of install
// or update operations for the manager to execute.
package planner

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/guide"
	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
	"github.com/YPSH-DGC/YPMS/internal/ledger"
	"github.com/YPSH-DGC/YPMS/internal/source"
)

// MetadataProvider is the subset of source-resolution the planner needs,
// kept as an interface so the planner can be tested without real HTTP
// fetches.
type MetadataProvider interface {
	PackageInfo(ctx context.Context, sourceName, user, pkg string) (gjson.Result, error)
	ReleaseInfo(ctx context.Context, sourceName string, pkgInfo gjson.Result, resolvedTag string) (gjson.Result, error)
}

// SourceChecker reports whether a source name is already configured.
type SourceChecker interface {
	HasSource(name string) bool
}

// OpKind identifies the kind of operation the manager should perform.
type OpKind string

const (
	OpInstall OpKind = "install"
	OpUpdate  OpKind = "update"
	OpTarget  OpKind = "target"
)

// Operation is one entry in a Plan, in manager execution order.
type Operation struct {
	Kind         OpKind
	Source       string
	Ref          depref.Ref
	ResolvedTag  string
	FootnoteText string // empty unless this op's source is unconfigured but provided by another op
}

// Plan is the flat, ordered operation list produced by Build.
type Plan struct {
	Operations []Operation
}

// Build implements spec.md §4.7's planning algorithm for a single root
// package against env.
func Build(ctx context.Context, provider MetadataProvider, sources SourceChecker, installed *ledger.Ledger, env, rootSource string, rootRef depref.Ref, rootVersionTag string) (*Plan, error) {
	rootPkgInfo, err := provider.PackageInfo(ctx, rootSource, rootRef.User, rootRef.Package)
	if err != nil {
		return nil, err
	}
	rootResolvedTag := source.ResolveReleaseTag(rootPkgInfo, rootVersionTag)

	rootReleaseInfo, err := provider.ReleaseInfo(ctx, rootSource, rootPkgInfo, rootResolvedTag)
	if err != nil {
		return nil, err
	}

	dependEntries := jsonutil.FlatGet(rootReleaseInfo, "release.depends")

	var depOps []Operation
	providers := map[string]string{} // configured-source-name -> "providerPkgRef@version"

	if dependEntries.IsArray() {
		for _, entry := range dependEntries.Array() {
			dep, err := depref.ParseDepEntry(entry)
			if err != nil {
				return nil, err
			}

			depSource := dep.Source
			if depSource == "" {
				depSource = rootSource
			}

			depPkgInfo, err := provider.PackageInfo(ctx, depSource, dep.User, dep.Package)
			if err != nil {
				return nil, err
			}
			depResolvedTag := source.ResolveReleaseTag(depPkgInfo, dep.Version)

			depReleaseInfo, err := provider.ReleaseInfo(ctx, depSource, depPkgInfo, depResolvedTag)
			if err != nil {
				return nil, err
			}

			if installGuide, ok, err := guide.ExtractGuide(depReleaseInfo, "install"); err != nil {
				return nil, err
			} else if ok {
				providerRef := fmt.Sprintf("%s@%s", dep.PackageRef(), depResolvedTag)
				for _, name := range guide.ScanAddRepoNames(installGuide) {
					providers[name] = providerRef
				}
			}

			depRef := depref.Ref{User: dep.User, Package: dep.Package, Version: depResolvedTag}
			kind := OpInstall
			if installed.IsInstalled(env, depSource, depRef) {
				kind = OpUpdate
			}
			depOps = append(depOps, Operation{Kind: kind, Source: depSource, Ref: depRef, ResolvedTag: depResolvedTag})
		}
	}

	for i := range depOps {
		op := &depOps[i]
		if sources.HasSource(op.Source) {
			continue
		}
		if providerRef, ok := providers[op.Source]; ok {
			op.FootnoteText = fmt.Sprintf("source %q will be provided by installing %s", op.Source, providerRef)
		}
	}

	ops := depOps

	rootTargetRef := depref.Ref{User: rootRef.User, Package: rootRef.Package, Version: rootResolvedTag}
	if existing, ok := installed.Get(env, rootSource, rootTargetRef); ok {
		if existing.Version != rootResolvedTag {
			ops = append(ops, Operation{Kind: OpUpdate, Source: rootSource, Ref: rootTargetRef, ResolvedTag: rootResolvedTag})
		}
		// else: already installed at the resolved version — no op emitted.
	} else {
		ops = append(ops, Operation{Kind: OpTarget, Source: rootSource, Ref: rootTargetRef, ResolvedTag: rootResolvedTag})
	}

	return &Plan{Operations: ops}, nil
}
