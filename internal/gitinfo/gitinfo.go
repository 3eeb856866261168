// Package gitinfo reads revision information from the git repository that
// holds the release-note sources, for stamping documents.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ShortHashLength is the number of hex digits Revision returns.
const ShortHashLength = 7

// ErrNotRepository reports that no repository contains the directory.
var ErrNotRepository = errors.New("not inside a git repository")

// Revision returns the abbreviated HEAD commit hash of the repository
// containing dir. Parent directories are searched for .git.
func Revision(dir string) (string, error) {
	hash, err := Head(dir)
	if err != nil {
		return "", err
	}
	return hash.String()[:ShortHashLength], nil
}

// Head returns the full HEAD commit hash of the repository containing dir.
func Head(dir string) (plumbing.Hash, error) {
	repository, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return plumbing.ZeroHash, fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return plumbing.ZeroHash, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repository.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash(), nil
}
