package plugins

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// cacheFile is the on-disk discovery cache. It is valid as long as the
// search directories and their modification times are unchanged.
type cacheFile struct {
	Dirs    []cachedDir `json:"dirs"`
	Plugins []Plugin    `json:"plugins"`
}

type cachedDir struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
}

func cachePath(dir, name, prefix string) string {
	return filepath.Join(dir, fmt.Sprintf(".argware-plugins-%s-%s.json", name, prefix))
}

// snapshotDirs records the modification time of every search directory.
// Missing directories are recorded with a zero time.
func snapshotDirs(dirs []string) []cachedDir {
	snapshot := make([]cachedDir, 0, len(dirs))
	for _, dir := range dirs {
		entry := cachedDir{Path: dir}
		if info, err := os.Stat(dir); err == nil {
			entry.ModTime = info.ModTime().UnixNano()
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot
}

func readCache(path string, dirs []cachedDir) ([]Plugin, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var cache cacheFile
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, false
	}
	if !slices.Equal(cache.Dirs, dirs) {
		return nil, false
	}
	return cache.Plugins, true
}

func writeCache(path string, dirs []cachedDir, plugins []Plugin) error {
	data, err := json.MarshalIndent(cacheFile{Dirs: dirs, Plugins: plugins}, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
