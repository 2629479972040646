package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xtxerr/nmonreport/internal/validation"
)

// Host is one input host directory and its capture files.
type Host struct {
	// Name is the directory name.
	Name string
	// Dir is the directory path.
	Dir string
	// Files are the matching capture files, sorted by name.
	Files []string
}

// Discover lists the host directories under root and the capture files of
// each that match mask. Hosts and files are sorted by name. Plain files in
// root and hidden directories are ignored. A host without matching files is
// still returned, with no Files.
func Discover(root, mask string) ([]Host, error) {
	if err := validation.ValidateMask(mask); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	pattern := validation.MaskPattern(mask)
	var hosts []Host
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if validation.IsHidden(e.Name()) {
			log.Debug("skipping hidden directory", "dir", e.Name())
			continue
		}

		dir := filepath.Join(root, e.Name())
		files, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		files = regularFiles(files)
		sort.Strings(files)

		hosts = append(hosts, Host{Name: e.Name(), Dir: dir, Files: files})
	}

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name < hosts[j].Name })
	return hosts, nil
}

func regularFiles(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, p)
	}
	return out
}
