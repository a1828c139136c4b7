package guide

import (
	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/jsonutil"
)

// ExtractGuide looks up a named guide inside a release info document's
// "release.guides" mapping (spec.md §3, §6) and parses it. The second
// return value is false if no guide with that name is defined.
func ExtractGuide(releaseInfo gjson.Result, name string) (Guide, bool, error) {
	guides := jsonutil.FlatGet(releaseInfo, "release.guides")
	field := guides.Get(name)
	if !field.Exists() {
		return Guide{}, false, nil
	}
	g, err := ParseGuide(field)
	if err != nil {
		return Guide{}, false, err
	}
	return g, true, nil
}
