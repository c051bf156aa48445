package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"lark/compiler-go/pkg/driver"
)

const lockfileName = "lark.lock"

// runInstall fetches the manifest's dependencies into the local cache and
// pins them in lark.lock. Already-pinned packages with an intact checkout
// are left alone.
func runInstall(args []string) int {
	if len(args) != 0 {
		printUsage()
		return 2
	}
	manifest, err := driver.LoadManifest(manifestName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "larkc: %v\n", err)
		return 1
	}

	base := filepath.Dir(manifest.Path)
	lockPath := filepath.Join(base, lockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "larkc: %v\n", err)
			return 1
		}
		lock = driver.NewLockfile(manifest.Package)
	}

	cacheDir := filepath.Join(base, ".lark", "pkg")
	fetcher := &gitFetcher{cacheDir: cacheDir}
	for _, dep := range manifest.Dependencies {
		if pinned := lock.FindPackage(dep.Name); pinned != nil {
			if _, err := os.Stat(fetcher.checkoutDir(pinned.Name, pinned.Version)); err == nil {
				continue
			}
		}
		pkg, err := fetcher.fetch(dep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "larkc: dependency %q: %v\n", dep.Name, err)
			return 1
		}
		lock.Pin(pkg)
		fmt.Fprintf(os.Stdout, "installed %s %s\n", pkg.Name, pkg.Version)
	}

	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		fmt.Fprintf(os.Stderr, "larkc: %v\n", err)
		return 1
	}
	return 0
}

type gitFetcher struct {
	cacheDir string
}

func (g *gitFetcher) checkoutDir(name, version string) string {
	return filepath.Join(g.cacheDir, sanitizeSegment(name), sanitizeSegment(version))
}

// fetch clones the dependency's git source, checks out the requested
// version, and moves the worktree into the cache.
func (g *gitFetcher) fetch(dep driver.ManifestDependency) (*driver.LockedPackage, error) {
	url := strings.TrimPrefix(strings.TrimSpace(dep.Source), "git+")
	if url == "" {
		return nil, fmt.Errorf("git URL required")
	}
	if strings.TrimSpace(dep.Version) == "" {
		return nil, fmt.Errorf("version (tag or rev) required")
	}

	baseDir := filepath.Join(g.cacheDir, sanitizeSegment(dep.Name))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := resolveVersion(repo, dep.Version)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("git checkout %s: %w", dep.Version, err)
	}

	targetDir := g.checkoutDir(dep.Name, dep.Version)
	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}

	checksum, err := dirChecksum(targetDir)
	if err != nil {
		return nil, err
	}
	return &driver.LockedPackage{
		Name:     dep.Name,
		Version:  dep.Version,
		Source:   fmt.Sprintf("git+%s@%s", url, hash.String()),
		Checksum: checksum,
	}, nil
}

func resolveVersion(repo *git.Repository, version string) (*plumbing.Hash, error) {
	for _, rev := range []plumbing.Revision{
		plumbing.Revision("refs/tags/" + version),
		plumbing.Revision(version),
	} {
		if hash, err := repo.ResolveRevision(rev); err == nil {
			return hash, nil
		}
	}
	return nil, fmt.Errorf("cannot resolve version %q", version)
}

// dirChecksum hashes a checkout's file names and contents in path order.
func dirChecksum(dir string) (string, error) {
	h := sha256.New()
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(rel))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
