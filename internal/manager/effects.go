package manager

import (
	"context"

	"github.com/YPSH-DGC/YPMS/internal/depref"
)

// IsInstalled implements guide.Effects.
func (m *Manager) IsInstalled(envID string, ref depref.Ref) bool {
	sourceName, err := m.resolveSourceName(ref.Source, "")
	if err != nil {
		return false
	}
	return m.ledger.IsInstalled(envID, sourceName, ref)
}

// InstallPackage implements guide.Effects: a recursive, non-explicit
// install invoked from an install-package guide step.
func (m *Manager) InstallPackage(ctx context.Context, ref depref.Ref, envID string, explicit bool) error {
	_, err := m.Install(ctx, ref, envID, ref.Version, ref.Source, explicit, true, false)
	return err
}

// UninstallPackage implements guide.Effects: delegates to the manager's
// run("uninstall") semantics.
func (m *Manager) UninstallPackage(ctx context.Context, ref depref.Ref, envID string, force bool) error {
	return m.Run(ctx, ref, "uninstall", envID, "", ref.Source, force, true)
}

// AddSource implements guide.Effects.
func (m *Manager) AddSource(name, url string) error {
	return m.sources.set(name, url)
}

// RemoveSource implements guide.Effects.
func (m *Manager) RemoveSource(name string) error {
	return m.sources.remove(name)
}
