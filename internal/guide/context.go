// Package guide implements the guide execution engine of spec.md §4.4: a
// platform-gated, ordered sequence of typed steps that installs, updates, or
// removes a package inside an environment directory.
package guide

import "strings"

// Context carries the substitution variables available to every step's
// content and to shell-step process environments, per spec.md §4.4.
type Context struct {
	EnvDir     string
	OS         string
	Arch       string
	PackageRef string
	SourceName string
	ReleaseID  string
}

// Vars returns the substitution map keyed by the brace-wrapped placeholder
// names the spec uses in step content ("{YPMS_ENV_DIR}", "{OS}", ...).
func (c Context) Vars() map[string]string {
	return map[string]string{
		"YPMS_ENV_DIR": c.EnvDir,
		"OS":           c.OS,
		"ARCH":         c.Arch,
		"PACKAGE_REF":  c.PackageRef,
		"SOURCE_NAME":  c.SourceName,
		"RELEASE_ID":   c.ReleaseID,
	}
}

// EnvPairs returns the variables formatted as "KEY=VALUE" process
// environment entries, for appending to a shell step's exec.Cmd.Env.
func (c Context) EnvPairs() []string {
	vars := c.Vars()
	pairs := make([]string, 0, len(vars))
	for k, v := range vars {
		pairs = append(pairs, k+"="+v)
	}
	return pairs
}

// Expand substitutes every "{NAME}" placeholder in s with its bound value.
func Expand(s string, vars map[string]string) string {
	result := s
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
