//go:build !windows

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// writeJSONAtomic replaces path with the JSON encoding of v via a temp
// file and rename, so a crash mid-write never leaves a truncated config
// or secrets file behind. os.Rename replaces the destination atomically
// on POSIX filesystems.
func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// The temp file must live in the target directory; rename is only
	// atomic within one filesystem.
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	success = true
	return nil
}
