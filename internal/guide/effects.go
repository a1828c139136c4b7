package guide

import (
	"context"

	"github.com/YPSH-DGC/YPMS/internal/depref"
)

// Effects is the reentry surface a guide step uses to mutate manager state
// (install-package, uninstall-package, add-repo, remove-repo), per spec.md
// §9 ("Recursive guide → manager reentry"). Keeping this as an interface
// lets the engine stay free of a dependency on the manager package while
// the manager façade supplies the concrete implementation.
type Effects interface {
	// IsInstalled reports whether ref is already recorded in envID's ledger.
	IsInstalled(envID string, ref depref.Ref) bool

	// InstallPackage recursively installs ref into envID. explicit mirrors
	// the ledger record's explicit flag — always false for dependencies
	// pulled in by an install-package step.
	InstallPackage(ctx context.Context, ref depref.Ref, envID string, explicit bool) error

	// UninstallPackage runs ref's uninstall guide against envID, per the
	// semantics of the manager's run("uninstall") operation: a no-op if ref
	// is not installed, blocked by dependents unless force.
	UninstallPackage(ctx context.Context, ref depref.Ref, envID string, force bool) error

	// HasSource reports whether a source named name is already configured.
	HasSource(name string) bool

	// AddSource registers and persists a new source.
	AddSource(name, url string) error

	// RemoveSource removes a configured source.
	RemoveSource(name string) error
}
