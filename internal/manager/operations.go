package manager

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/guide"
	"github.com/YPSH-DGC/YPMS/internal/planner"
	"github.com/YPSH-DGC/YPMS/internal/platform"
	"github.com/YPSH-DGC/YPMS/internal/source"
)

// ListPackages returns the index document from the selected source.
func (m *Manager) ListPackages(ctx context.Context, sourceName string) (gjson.Result, error) {
	name, err := m.resolveSourceName("", sourceName)
	if err != nil {
		return gjson.Result{}, err
	}
	src, err := m.resolverFor(ctx, name, false)
	if err != nil {
		return gjson.Result{}, err
	}
	return src.FetchIndex(ctx, false)
}

// PackageInfoAnnotated returns the package document annotated with "_source" and
// "_package_ref", per spec.md §4.5.
func (m *Manager) PackageInfoAnnotated(ctx context.Context, ref depref.Ref, sourceName string) (gjson.Result, error) {
	name, err := m.resolveSourceName(ref.Source, sourceName)
	if err != nil {
		return gjson.Result{}, err
	}

	pkgInfo, err := m.PackageInfo(ctx, name, ref.User, ref.Package)
	if err != nil {
		return gjson.Result{}, err
	}

	raw, err := sjson.Set(pkgInfo.Raw, "_source", name)
	if err != nil {
		return gjson.Result{}, errs.Wrap(errs.KindDecode, err, "annotating package info")
	}
	raw, err = sjson.Set(raw, "_package_ref", ref.PackageRef())
	if err != nil {
		return gjson.Result{}, errs.Wrap(errs.KindDecode, err, "annotating package info")
	}
	return gjson.Parse(raw), nil
}

func (m *Manager) envContext(envDir string, sourceName string, ref depref.Ref, resolvedTag string) guide.Context {
	return guide.Context{
		EnvDir:     envDir,
		OS:         platform.HostOS(),
		Arch:       platform.HostArch(),
		PackageRef: ref.PackageRef(),
		SourceName: sourceName,
		ReleaseID:  resolvedTag,
	}
}

// runNamedGuide fetches ref's release info at resolvedTag, extracts the
// named guide, and executes it. ran is false (with a nil error) if the
// guide is not defined for this release.
func (m *Manager) runNamedGuide(ctx context.Context, sourceName string, ref depref.Ref, resolvedTag, guideName, envID string, force bool) (ran bool, err error) {
	pkgInfo, err := m.PackageInfo(ctx, sourceName, ref.User, ref.Package)
	if err != nil {
		return false, err
	}
	releaseInfo, err := m.ReleaseInfo(ctx, sourceName, pkgInfo, resolvedTag)
	if err != nil {
		return false, err
	}

	g, ok, err := guide.ExtractGuide(releaseInfo, guideName)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	envDir, err := m.cfg.EnsureEnvDir(envID)
	if err != nil {
		return false, errs.Wrap(errs.KindFilesystem, err, "preparing environment %q", envID)
	}

	m.logger.Debug("running guide", "guide", guideName, "package", fmtRef(sourceName, ref.PackageRef(), resolvedTag), "env", envID)

	pkgCtx := m.envContext(envDir, sourceName, ref, resolvedTag)
	if _, err := m.engine.Execute(ctx, g, pkgCtx, m, envID, force); err != nil {
		return true, err
	}
	return true, nil
}

// Install implements spec.md §4.5's install operation.
func (m *Manager) Install(ctx context.Context, ref depref.Ref, envID, versionTag, sourceName string, explicit, assumeYes, force bool) (string, error) {
	name, err := m.resolveSourceName(ref.Source, sourceName)
	if err != nil {
		return "", err
	}
	if envID == "" {
		envID = config.DefaultEnvID
	}

	if src, err := m.resolverFor(ctx, name, false); err == nil {
		// Best-effort index refresh: a stale index should not block install.
		_, _ = src.FetchIndex(ctx, true)
	}

	plan, err := planner.Build(ctx, m, m, m.ledger, envID, name, ref, versionTag)
	if err != nil {
		return "", err
	}

	if len(plan.Operations) > 0 && !assumeYes {
		if !m.confirm.Confirm(describePlan(plan)) {
			m.logger.Info("install cancelled by operator", "package", ref.PackageRef())
			envDir, _ := m.cfg.EnsureEnvDir(envID)
			return envDir, nil
		}
	}

	for _, op := range plan.Operations {
		switch op.Kind {
		case planner.OpInstall:
			if _, err := m.runNamedGuide(ctx, op.Source, op.Ref, op.ResolvedTag, "install", envID, force); err != nil {
				return "", err
			}
			if err := m.ledger.MarkInstalled(envID, op.Source, op.Ref, op.ResolvedTag, false); err != nil {
				return "", err
			}

		case planner.OpUpdate:
			blockers, err := m.ledger.CheckUpdateCompat(ctx, m, envID, op.Source, op.Ref, op.ResolvedTag)
			if err != nil {
				return "", err
			}
			if len(blockers) > 0 && !force {
				return "", errs.New(errs.KindDependency, "update blocked: %v", blockers)
			}
			if ran, err := m.runNamedGuide(ctx, op.Source, op.Ref, op.ResolvedTag, "update", envID, force); err != nil {
				return "", err
			} else if ran {
				if err := m.ledger.MarkInstalled(envID, op.Source, op.Ref, op.ResolvedTag, false); err != nil {
					return "", err
				}
			}

		case planner.OpTarget:
			if _, err := m.runNamedGuide(ctx, op.Source, op.Ref, op.ResolvedTag, "install", envID, force); err != nil {
				return "", err
			}
			if err := m.ledger.MarkInstalled(envID, op.Source, op.Ref, op.ResolvedTag, explicit); err != nil {
				return "", err
			}
		}
	}

	return m.cfg.EnsureEnvDir(envID)
}

func describePlan(p *planner.Plan) string {
	msg := "apply the following operations:\n"
	for _, op := range p.Operations {
		line := fmt.Sprintf("  %s %s@%s", op.Kind, op.Ref.PackageRef(), op.ResolvedTag)
		if op.FootnoteText != "" {
			line += " (" + op.FootnoteText + ")"
		}
		msg += line + "\n"
	}
	return msg
}

// Run executes a named guide for ref, per spec.md §4.5. "uninstall" has
// special no-op-if-absent and dependents-blocking semantics.
func (m *Manager) Run(ctx context.Context, ref depref.Ref, guideName, envID, versionTag, sourceName string, force, assumeYes bool) error {
	name, err := m.resolveSourceName(ref.Source, sourceName)
	if err != nil {
		return err
	}
	if envID == "" {
		envID = config.DefaultEnvID
	}

	if guideName == "uninstall" {
		return m.runUninstall(ctx, name, ref, envID, force, assumeYes)
	}

	pkgInfo, err := m.PackageInfo(ctx, name, ref.User, ref.Package)
	if err != nil {
		return err
	}
	resolvedTag := resolveTag(pkgInfo, versionTag)

	ran, err := m.runNamedGuide(ctx, name, ref, resolvedTag, guideName, envID, force)
	if err != nil {
		return err
	}
	if !ran {
		return guideNotDefinedErr(guideName, ref.PackageRef())
	}
	return nil
}

func (m *Manager) runUninstall(ctx context.Context, sourceName string, ref depref.Ref, envID string, force, assumeYes bool) error {
	rec, ok := m.ledger.Get(envID, sourceName, ref)
	if !ok {
		return nil
	}
	targetRef := depref.Ref{User: ref.User, Package: ref.Package, Version: rec.Version}

	dependents, err := m.ledger.FindDependents(ctx, m, envID, sourceName, targetRef)
	if err != nil {
		return err
	}
	if len(dependents) > 0 {
		if !force {
			return errs.New(errs.KindDependency, "%s is required by %d other package(s); use force to override", ref.PackageRef(), len(dependents))
		}
		m.logger.Warn("uninstalling a package with dependents", "package", ref.PackageRef(), "dependents", len(dependents))
		if !assumeYes && !m.confirm.Confirm(fmt.Sprintf("%s has %d dependent(s); uninstall anyway?", ref.PackageRef(), len(dependents))) {
			return nil
		}
	}

	ran, err := m.runNamedGuide(ctx, sourceName, targetRef, rec.Version, "uninstall", envID, force)
	if err != nil {
		return err
	}
	if !ran {
		return guideNotDefinedErr("uninstall", ref.PackageRef())
	}
	return m.ledger.MarkUninstalled(envID, sourceName, targetRef)
}

// RefreshSources purges the metadata cache, drops the resolver cache, and
// force-fetches every configured source's descriptor and index.
func (m *Manager) RefreshSources(ctx context.Context) error {
	if err := m.cache.Purge(); err != nil {
		return err
	}

	for name := range m.resolvers {
		delete(m.resolvers, name)
	}

	var firstErr error
	for _, name := range m.sources.names() {
		src, err := m.resolverFor(ctx, name, true)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, err := src.FetchIndex(ctx, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Upgrade runs the "update" guide for every installed package in envID,
// skipping packages whose release defines no update guide, per spec.md
// §4.5. It returns every package ref whose update guide failed, paired
// with the error text.
func (m *Manager) Upgrade(ctx context.Context, envID string, force bool) ([]string, error) {
	if envID == "" {
		envID = config.DefaultEnvID
	}
	if err := m.RefreshSources(ctx); err != nil {
		return nil, err
	}

	var failures []string
	records := m.ledger.ListInstalled(envID)[envID]
	for _, rec := range records {
		user, pkg, err := depref.SplitPackageRef(rec.Package)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rec.Package, err))
			continue
		}
		ref := depref.Ref{User: user, Package: pkg}

		if err := m.Run(ctx, ref, "update", envID, rec.Version, rec.Source, force, true); err != nil {
			if isGuideNotDefined(err) {
				continue
			}
			failures = append(failures, fmt.Sprintf("%s:%s@%s: %v", rec.Source, rec.Package, rec.Version, err))
		}
	}
	return failures, nil
}

// Autoremove uninstalls every non-explicit package in envID that has no
// remaining dependents, per spec.md §4.5.
func (m *Manager) Autoremove(ctx context.Context, envID string, force bool) ([]string, error) {
	if envID == "" {
		envID = config.DefaultEnvID
	}

	var failures []string
	records := m.ledger.ListInstalled(envID)[envID]
	for _, rec := range records {
		if rec.Explicit {
			continue
		}
		user, pkg, err := depref.SplitPackageRef(rec.Package)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", rec.Package, err))
			continue
		}
		ref := depref.Ref{User: user, Package: pkg}

		if err := m.Run(ctx, ref, "uninstall", envID, rec.Version, rec.Source, force, true); err != nil {
			if isGuideNotDefined(err) {
				continue
			}
			failures = append(failures, fmt.Sprintf("%s:%s@%s: %v", rec.Source, rec.Package, rec.Version, err))
		}
	}
	return failures, nil
}

func resolveTag(pkgInfo gjson.Result, versionTag string) string {
	return source.ResolveReleaseTag(pkgInfo, versionTag)
}
