package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithOutput returns a new context.Context directing command output to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by [WithOutput], or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource names standard input in a list of source paths.
const stdinSource = "-"

// source is one opened input of a command.
type source struct {
	io.ReadCloser

	name string
}

// fileKey identifies a file by device and inode, which is stable across
// symlinks and relative paths. Where those are unavailable the resolved path
// is used instead.
type fileKey struct {
	path string
	dev  uint64
	ino  uint64
}

// openSources opens each distinct file named in paths.
//
// Paths resolving to the same file are opened once. Every occurrence of "-",
// or a path naming the file behind standard input, selects standard input,
// which is always placed last. On error, sources already opened are closed.
func openSources(paths []string) (srcs []source, err error) {
	defer func() {
		if err != nil {
			closeSources(srcs)
			srcs = nil
		}
	}()

	seen := make(map[fileKey]struct{})

	var stdinKey fileKey

	stdinFile := false

	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, stdinFile = makeFileKey(info)
	}

	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		resolved, key, err := identify(path)
		if err != nil {
			return srcs, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		if stdinFile && key == stdinKey {
			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		file, err := os.Open(resolved)
		if err != nil {
			return srcs, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		srcs = append(srcs, source{ReadCloser: file, name: path})
	}

	if hasStdin {
		srcs = append(srcs, source{ReadCloser: io.NopCloser(os.Stdin), name: stdinSource})
	}

	return srcs, nil
}

// identify resolves path to an absolute, symlink-free path and its fileKey.
func identify(path string) (string, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, err
	}

	key, ok := makeFileKey(info)
	if !ok {
		key = fileKey{path: resolved}
	}

	return resolved, key, nil
}

// makeFileKey returns the device and inode of info, if the platform
// reports them.
func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

func closeSources(srcs []source) {
	for _, src := range srcs {
		_ = src.Close()
	}
}
