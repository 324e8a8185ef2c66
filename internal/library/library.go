package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Library is a root directory with patches/ and banks/ beneath it.
type Library struct {
	root       string
	patchesDir string
	banksDir   string
	log        *zap.Logger
}

// Open creates the library directories if needed.
func Open(root string, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Library{
		root:       root,
		patchesDir: filepath.Join(root, "patches"),
		banksDir:   filepath.Join(root, "banks"),
		log:        log,
	}
	for _, dir := range []string{l.patchesDir, l.banksDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// uniquePath appends -1, -2, ... until the path is unused, so saving
// two patches named the same never clobbers either.
func uniquePath(dir, slug, suffix string) string {
	path := filepath.Join(dir, slug+suffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", slug, counter, suffix))
	}
}

// SavePatch stores a patch under a unique slug-derived path and
// returns the metadata file path.
func (l *Library) SavePatch(p *Patch) (string, error) {
	slug := p.Slug()
	if slug == "" {
		slug = "patch"
	}
	path := uniquePath(l.patchesDir, slug, ".json")
	if err := p.Save(path); err != nil {
		return "", err
	}
	l.log.Info("patch saved", zap.String("path", path), zap.String("name", p.Name))
	return path, nil
}

// ListPatches loads every readable patch, sorted by file name.
// Malformed files are skipped with a warning.
func (l *Library) ListPatches() []*Patch {
	return listDir(l.patchesDir, l.log, LoadPatch)
}

// DeletePatch removes a patch metadata file and its .syx sibling.
func (l *Library) DeletePatch(jsonPath string) error {
	syx := withSuffix(jsonPath, ".syx")
	if err := os.Remove(syx); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(jsonPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SaveBank stores a bank under a unique slug-derived path. Referenced
// patch files that do not exist are warned about, not rejected.
func (l *Library) SaveBank(b *Bank) (string, error) {
	for _, slot := range b.OrderedSlots() {
		ref := b.Slots[slot]
		if _, err := os.Stat(filepath.Join(l.patchesDir, ref)); err != nil {
			l.log.Warn("bank references missing patch file",
				zap.String("bank", b.Name), zap.Int("slot", slot), zap.String("patch", ref))
		}
	}
	slug := b.Slug()
	if slug == "" {
		slug = "bank"
	}
	path := uniquePath(l.banksDir, slug, ".json")
	if err := b.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// ListBanks loads every readable bank, sorted by file name.
func (l *Library) ListBanks() []*Bank {
	return listDir(l.banksDir, l.log, LoadBank)
}

func listDir[T any](dir string, log *zap.Logger, load func(string) (T, error)) []T {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("list library dir", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []T
	for _, name := range names {
		item, err := load(filepath.Join(dir, name))
		if err != nil {
			log.Warn("skipping malformed library file",
				zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, item)
	}
	return out
}
