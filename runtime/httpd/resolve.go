// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const indexFile = "index.html"

// Resource is a validated file beneath the document root.
type Resource struct {
	Path     string
	Size     int64
	MimeType string
}

// Resolver maps request resources to files beneath a document root.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver for root. The root is made absolute and
// has its symlinks evaluated once so every containment check compares
// fully resolved paths.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, errNotDir)
	}
	return &Resolver{root: resolved}, nil
}

// Root returns the resolved document root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve validates resource and returns the file it refers to.
// Every rejection wraps [ErrNotFound].
func (r *Resolver) Resolve(resource string) (Resource, error) {
	p, _, _ := strings.Cut(resource, "?")
	p, err := url.PathUnescape(p)
	if err != nil {
		return Resource{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	trailingSlash := strings.HasSuffix(p, "/")

	name := filepath.Join(r.root, filepath.FromSlash(strings.TrimLeft(p, "/")))
	resolved, info, err := r.lookup(name)
	if err != nil {
		return Resource{}, err
	}

	switch {
	case info.Mode().IsRegular():
		if trailingSlash {
			return Resource{}, fmt.Errorf("%w: %s is not a directory", ErrNotFound, p)
		}
	case info.IsDir():
		resolved, info, err = r.lookup(filepath.Join(resolved, indexFile))
		if err != nil {
			return Resource{}, err
		}
		if !info.Mode().IsRegular() {
			return Resource{}, fmt.Errorf("%w: %s has no index", ErrNotFound, p)
		}
	default:
		return Resource{}, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, p)
	}

	return Resource{
		Path:     resolved,
		Size:     info.Size(),
		MimeType: MimeType(resolved),
	}, nil
}

func (r *Resolver) lookup(name string) (string, os.FileInfo, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !r.contains(resolved) {
		return "", nil, fmt.Errorf("%w: %s is outside the document root", ErrNotFound, resolved)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return resolved, info, nil
}

func (r *Resolver) contains(p string) bool {
	rel, err := filepath.Rel(r.root, p)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
