package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// SourceFile is one file handed to the analyzer.
type SourceFile struct {
	Path    string
	Content []byte
}

// Options configures filesystem loading.
type Options struct {
	// Root is the directory to walk. Defaults to the current directory.
	Root string

	// Languages restricts analysis to the named grammars when non-empty.
	Languages []Language

	// ExcludeDirs are directory names skipped in addition to the defaults.
	ExcludeDirs []string

	// UseGitignore applies the root .gitignore to walked paths.
	UseGitignore bool

	// Concurrency caps parallel file parsing. Defaults to GOMAXPROCS.
	Concurrency int
}

// defaultExcludes are directory names never worth parsing.
var defaultExcludes = []string{".git", "node_modules", "dist", "build", "out", "coverage"}

// Load walks a source tree, parses every matching file, and returns the
// analyzer over the result. Paths are slash-separated and relative to root.
func Load(ctx context.Context, opts Options) (*Analyzer, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	excluded := make(map[string]bool, len(defaultExcludes)+len(opts.ExcludeDirs))
	for _, d := range defaultExcludes {
		excluded[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	allowed := make(map[Language]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		allowed[l] = true
	}

	var matcher *ignore.GitIgnore
	if opts.UseGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	var paths []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if p != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := LanguageForPath(p)
		if !ok {
			return nil
		}
		if len(allowed) > 0 && !allowed[lang] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}
	sort.Strings(paths)

	files := make([]SourceFile, 0, len(paths))
	for _, rel := range paths {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			continue // skip unreadable files
		}
		files = append(files, SourceFile{Path: rel, Content: content})
	}
	return analyze(ctx, files, opts.Concurrency)
}

// Analyze parses in-memory sources. Paths are used verbatim as file ids and
// for import resolution between the given files.
func Analyze(ctx context.Context, files []SourceFile) (*Analyzer, error) {
	return analyze(ctx, files, 0)
}

func analyze(ctx context.Context, files []SourceFile, concurrency int) (*Analyzer, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	indexes := make([]*fileIndex, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lang, ok := LanguageForPath(f.Path)
			if !ok {
				return fmt.Errorf("unsupported file type: %s", f.Path)
			}
			idx, err := parseFile(f.Path, f.Content, lang)
			if err != nil {
				return err
			}
			indexes[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newAnalyzer(indexes), nil
}
