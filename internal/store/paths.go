package store

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// Scope selects between the local (in-repo) and global (per-user) cache
// directory resolution rules of §4.5.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// Environment toggles (§6.4): a variable to force the scope, a variable to
// override the cache directory outright.
const (
	EnvScope = "DIMPACT_CACHE_SCOPE"
	EnvDir   = "DIMPACT_CACHE_DIR"
)

const cacheSubdir = "cache"

// ResolveDir implements the location-resolution rules of §4.5: an explicit
// override (parameter or DIMPACT_CACHE_DIR) takes precedence over scope;
// otherwise local resolves to <repo_root>/.dimpact/cache/<schema_version>/
// and global resolves to
// <user_config_root>/dimpact/cache/<schema_version>/<short_digest>-<basename>/.
// DIMPACT_CACHE_SCOPE overrides the scope parameter when set.
func ResolveDir(scope Scope, repoRoot, override string) (string, error) {
	if override == "" {
		override = os.Getenv(EnvDir)
	}
	if override != "" {
		return override, nil
	}

	if envScope := os.Getenv(EnvScope); envScope != "" {
		scope = Scope(envScope)
	}

	switch scope {
	case ScopeGlobal:
		return globalDir(repoRoot)
	default:
		return localDir(repoRoot)
	}
}

func localDir(repoRoot string) (string, error) {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, ".dimpact", cacheSubdir, schemaVersionDir()), nil
}

func globalDir(repoRoot string) (string, error) {
	configRoot, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", err
	}
	digest := shortDigest(abs)
	base := filepath.Base(abs)
	return filepath.Join(configRoot, "dimpact", cacheSubdir, schemaVersionDir(), digest+"-"+base), nil
}

func schemaVersionDir() string {
	return "v" + itoa(SchemaVersion)
}

// shortDigest hashes the absolute, symlink-resolved repo root path and
// returns the first 8 bytes hex-encoded, grounded on
// internal/paths.ComputeRepoHash in SimplyLiz-CodeMCP.
func shortDigest(absRepoRoot string) string {
	resolved, err := filepath.EvalSymlinks(absRepoRoot)
	if err == nil {
		absRepoRoot = resolved
	}
	normalized := filepath.ToSlash(absRepoRoot)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
