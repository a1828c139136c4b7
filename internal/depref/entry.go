package depref

import (
	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/tidwall/gjson"
)

// ParseDepEntry parses one element of release.depends (spec.md §3, §6).
// Each entry is either a string ("user/pkg", "user/pkg@tag",
// "src:user/pkg[@tag]") or an object {package, version?, source?}.
func ParseDepEntry(entry gjson.Result) (Ref, error) {
	switch {
	case entry.Type == gjson.String:
		return ParseExtended(entry.String())
	case entry.IsObject():
		pkg := entry.Get("package")
		if !pkg.Exists() || pkg.String() == "" {
			return Ref{}, errs.New(errs.KindValidation, "dependency entry missing \"package\" field")
		}
		// The object's "package" field may itself carry the extended
		// "src:user/pkg[@tag]" form, or may be a bare "user/pkg".
		ref, err := ParseExtended(pkg.String())
		if err != nil {
			return Ref{}, err
		}
		if v := entry.Get("version"); v.Exists() && v.String() != "" {
			ref.Version = v.String()
		}
		if s := entry.Get("source"); s.Exists() && s.String() != "" {
			ref.Source = s.String()
		}
		return ref, nil
	default:
		return Ref{}, errs.New(errs.KindValidation, "dependency entry must be a string or object, got %s", entry.Type)
	}
}
