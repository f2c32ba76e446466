package pathspec

import (
	"path/filepath"
	"strings"
)

// CanonicalizeFilesystemSpec resolves symlinks in a filesystem PathSpec's
// base prefix and, if the canonical form differs from the literal prefix
// baked into the compiled pattern, recompiles the spec against the
// canonical form. This keeps ingestion and watch-event paths consistent:
// both must canonicalize identically or deletions will miss their rows.
func CanonicalizeFilesystemSpec(p *PathSpec, resolveSymlinks func(string) (string, error)) (*PathSpec, error) {
	if p.SourceType != SourceFilesystem || p.BasePrefix == "" {
		return p, nil
	}

	canonical, err := resolveSymlinks(p.BasePrefix)
	if err != nil {
		// Best effort: a base prefix that does not exist yet (e.g. a
		// glob root under a not-yet-created directory) is not an error.
		return p, nil
	}
	canonical = ToSlash(canonical)
	if canonical == ToSlash(p.BasePrefix) {
		return p, nil
	}

	raw := canonical + strings.TrimPrefix(p.Raw, p.BasePrefix)
	return Compile(raw, p.SourceType, p.BaseMetadata, p.Strategy, p.StrategyParams, p.Watch)
}

// ToSlash normalizes OS-native separators to "/" for matching purposes.
// Filesystem calls still use filepath's OS-native form.
func ToSlash(path string) string {
	return filepath.ToSlash(path)
}
