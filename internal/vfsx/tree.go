package vfsx

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// GenerateCompressedTree renders the scanned tree as a compact XML-like
// summary suitable for feeding to an LLM planner: one <dir> block per
// directory, files listed with name/ext/size. original_source's
// equivalent (ShadowVFS::generate_compressed_tree) delegates to a
// Shannon-entropy-driven TreeCompressor for large trees; that collapsing
// pass is out of scope here (see DESIGN.md), so large trees are simply
// truncated per directory with a count of files omitted.
func (v *VFS) GenerateCompressedTree(maxFilesPerDir int) string {
	if maxFilesPerDir <= 0 {
		maxFilesPerDir = 50
	}

	byDir := make(map[string][]*VirtualFile)
	for _, f := range v.Files() {
		dir := filepath.Dir(f.path)
		byDir[dir] = append(byDir[dir], f)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var b strings.Builder
	fmt.Fprintf(&b, "<folder path=%q>\n", v.root)
	for _, dir := range dirs {
		rel, err := filepath.Rel(v.root, dir)
		if err != nil || rel == "." {
			rel = ""
		}
		if rel != "" {
			fmt.Fprintf(&b, "  <dir path=%q>\n", rel)
		}

		files := byDir[dir]
		sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
		shown := files
		omitted := 0
		if len(files) > maxFilesPerDir {
			shown = files[:maxFilesPerDir]
			omitted = len(files) - maxFilesPerDir
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "    <file name=%q ext=%q size=%q />\n", f.name, f.ext, formatSize(f.size))
		}
		if omitted > 0 {
			fmt.Fprintf(&b, "    <!-- %d more files omitted -->\n", omitted)
		}

		if rel != "" {
			b.WriteString("  </dir>\n")
		}
	}
	b.WriteString("</folder>")
	return b.String()
}

func formatSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1fGB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1fMB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1fKB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
