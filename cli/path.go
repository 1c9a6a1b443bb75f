package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/prestyle/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// pathEnv names the environment variable holding additional module search
// directories.
const pathEnv = pkg.EnvPrefix + "PATH"

// defaultDirMode is the permission mode of created directories.
var defaultDirMode os.FileMode = 0o700

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPath merges the directories given on the command line ahead of
// the list-separated directories in env, dropping duplicates and empty
// entries.
func searchPath(flags []string, env string) []string {
	joined := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(flags...),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(joined) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}
