// Package depref parses the package-reference and dependency-entry string
// forms defined in spec.md §3 (DATA MODEL: Package reference) and §6
// (EXTERNAL INTERFACES: Release info dep entries).
package depref

import (
	"strings"

	"github.com/YPSH-DGC/YPMS/internal/errs"
)

// Ref identifies a package within a source: USER/PACKAGE, optionally
// qualified by a source name and/or a version tag.
type Ref struct {
	Source  string // empty means "caller's default source"
	User    string
	Package string
	Version string // empty means "unspecified, resolve per §4.3"
}

// String renders the canonical "source:user/pkg@version" form used as the
// ledger key prefix (spec.md §3, §9 Open Question (a): colon form is canonical).
func (r Ref) String() string {
	var sb strings.Builder
	if r.Source != "" {
		sb.WriteString(r.Source)
		sb.WriteByte(':')
	}
	sb.WriteString(r.User)
	sb.WriteByte('/')
	sb.WriteString(r.Package)
	if r.Version != "" {
		sb.WriteByte('@')
		sb.WriteString(r.Version)
	}
	return sb.String()
}

// PackageRef returns "user/package" without source or version.
func (r Ref) PackageRef() string { return r.User + "/" + r.Package }

// LedgerKey returns "source:user/package", the key format used by the
// installed ledger (spec.md §3). source must already be resolved to a
// concrete, non-empty source name.
func LedgerKey(source, user, pkg string) string {
	return source + ":" + user + "/" + pkg
}

// SplitPackageRef splits a bare "USER/PACKAGE" string on the first '/'.
// Both halves must be non-empty after trimming, per spec.md §3 and §8
// (Boundary behaviors).
func SplitPackageRef(ref string) (user, pkg string, err error) {
	idx := strings.Index(ref, "/")
	if idx < 0 {
		return "", "", errs.New(errs.KindValidation, "package ref must be USER/PACKAGE, got %q", ref)
	}
	user = strings.TrimSpace(ref[:idx])
	pkg = strings.TrimSpace(ref[idx+1:])
	if user == "" || pkg == "" {
		return "", "", errs.New(errs.KindValidation, "invalid package ref %q: empty user or package", ref)
	}
	return user, pkg, nil
}

// ParseExtended parses the extended dependency-entry string form
// "SOURCE:USER/PACKAGE[@VERSION]" or the bare "USER/PACKAGE[@VERSION]"
// form. A "SOURCE:" prefix is only recognized when what follows it
// contains a '/' (spec.md §3, §8 boundary: "src:user/pkg" where the colon
// precedes no '/' is treated as a bare ref with no source override —
// e.g. a package literally named "go:lang" has no source prefix).
func ParseExtended(entry string) (Ref, error) {
	rest := entry
	source := ""

	if idx := strings.Index(entry, ":"); idx >= 0 {
		candidateSource := entry[:idx]
		candidateRest := entry[idx+1:]
		if strings.Contains(candidateRest, "/") {
			source = candidateSource
			rest = candidateRest
		}
	}

	version := ""
	if idx := strings.LastIndex(rest, "@"); idx >= 0 {
		version = rest[idx+1:]
		rest = rest[:idx]
	}

	user, pkg, err := SplitPackageRef(rest)
	if err != nil {
		return Ref{}, err
	}

	return Ref{Source: source, User: user, Package: pkg, Version: version}, nil
}
