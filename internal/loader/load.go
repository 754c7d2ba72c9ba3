package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/schema"
	"golang.org/x/sync/errgroup"
)

// LoadItem reads one XML file as a configuration item. Work item types without
// a name attribute are named after the file.
func LoadItem(path string) (schema.ConfigurationItem, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return schema.ConfigurationItem{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	itemType, err := DetectItemType(doc)
	if err != nil {
		return schema.ConfigurationItem{}, fmt.Errorf("%s: %w", path, err)
	}

	item := schema.NewConfigurationItem(itemType, "", doc)
	if item.Name == "" {
		base := filepath.Base(path)
		item = schema.NewConfigurationItem(itemType, strings.TrimSuffix(base, filepath.Ext(base)), doc)
	}
	return item, nil
}

// ExpandPaths turns files and directories into a sorted list of XML files.
// Directories are walked recursively.
func ExpandPaths(paths []string) ([]string, error) {
	files, _, err := expandPaths(paths)
	return files, err
}

// expandPaths also reports which files were named directly rather than found
// by walking a directory.
func expandPaths(paths []string) ([]string, map[string]bool, error) {
	var files []string
	named := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			named[filepath.Clean(p)] = true
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				files = append(files, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan %s: %w", p, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), named, nil
}

// LoadItems reads every XML file under the given paths using up to workers
// goroutines. Items come back in sorted path order. Files found in a directory
// whose root is not a configuration item, such as ProcessTemplate.xml, are
// skipped with a warning; a file named directly must be a configuration item.
func LoadItems(ctx context.Context, paths []string, workers int) ([]schema.ConfigurationItem, error) {
	files, named, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	items := make([]schema.ConfigurationItem, len(files))
	loaded := make([]bool, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := LoadItem(f)
			if errors.Is(err, ErrUnknownItemType) && !named[f] {
				contract.LogWarn("Skipping file", err)
				return nil
			}
			if err != nil {
				return err
			}
			items[i] = item
			loaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := items[:0]
	for i, item := range items {
		if loaded[i] {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// LoadConfiguration reads a named configuration from files and directories.
func LoadConfiguration(ctx context.Context, name string, paths []string, workers int) (schema.WorkItemConfiguration, error) {
	items, err := LoadItems(ctx, paths, workers)
	if err != nil {
		return schema.WorkItemConfiguration{}, fmt.Errorf("failed to load %s: %w", name, err)
	}
	cfg := schema.WorkItemConfiguration{Name: name, Items: items}
	if !cfg.IsValid() {
		return schema.WorkItemConfiguration{}, fmt.Errorf("configuration %q has no items in %s", name, strings.Join(paths, ", "))
	}
	return cfg, nil
}
