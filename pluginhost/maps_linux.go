//go:build linux

package pluginhost

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MappedGenerations returns the distinct file-stems of entries in
// /proc/self/maps whose filename contains module - i.e. every generation
// of a plugin still mapped into this process's address space. More than
// one entry surviving after an unload indicates the previous generation's
// pages were never actually released.
func MappedGenerations(module string) ([]string, error) {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return nil, fmt.Errorf("pluginhost: reading /proc/self/maps: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		path := fields[len(fields)-1]
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.Contains(stem, module) {
			seen[stem] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pluginhost: scanning /proc/self/maps: %w", err)
	}

	out := make([]string, 0, len(seen))
	for stem := range seen {
		out = append(out, stem)
	}
	sort.Strings(out)
	return out, nil
}

// reportMappedGenerations is called opportunistically from CallUpdate (per
// shouldCheck's gate) to surface lingering mappings via the onMultipleMapped
// hook, matching the reference's inline warn-on-multiple-mappings check.
func reportMappedGenerations(module string) {
	mappings, err := MappedGenerations(module)
	if err != nil || len(mappings) <= 1 {
		return
	}
	recordMultipleMapped(module)
	if hook := onMultipleMapped.Load(); hook != nil {
		(*hook)(module, mappings)
	}
}
