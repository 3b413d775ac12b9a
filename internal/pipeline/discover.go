package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ppiankov/laytoneval/internal/model"
)

const pageExt = ".html"

// DiscoverSources lists every stored page under the html directory, sorted by
// id, with image paths filled in for images that exist on disk.
func DiscoverSources(paths model.PathsConfig) ([]Source, error) {
	htmlDir := paths.HTMLDir()
	info, err := os.Stat(htmlDir)
	if err != nil {
		return nil, fmt.Errorf("html directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("html directory: %s is not a directory", htmlDir)
	}

	matches, err := doublestar.Glob(os.DirFS(htmlDir), "**/*"+pageExt)
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}
	sort.Strings(matches)

	sources := make([]Source, 0, len(matches))
	for _, match := range matches {
		id := strings.TrimSuffix(path.Base(match), pageExt)
		sources = append(sources, Source{
			ID:              id,
			HTMLPath:        filepath.Join(htmlDir, filepath.FromSlash(match)),
			ImagePath:       existing(filepath.Join(paths.ImageDir(), id+".jpg")),
			AnswerImagePath: existing(filepath.Join(paths.AnswerImageDir(), id+".jpg")),
		})
	}

	return sources, nil
}

func existing(p string) string {
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
