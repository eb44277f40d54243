// Package targets decides which repositories a gits invocation acts on.
//
// Resolver chooses between the repository at the search root (optionally joined by the
// repositories enclosing the working directory) and the repositories found beneath the
// root, then normalizes the result into an ordered, duplicate-free TargetSet.
package targets

import (
	"errors"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/gits/internal/repos/discovery"
)

const (
	locatorNotConfiguredMessageConstant = "repository locator not configured"
	targetsResolvedMessageConstant      = "targets resolved"
	logFieldRootConstant                = "root"
	logFieldWorkingDirectoryConstant    = "working_directory"
	logFieldStrategyConstant            = "strategy"
	logFieldTargetCountConstant         = "target_count"
	strategyRootRepositoryConstant      = "root_repository"
	strategyAncestorsConstant           = "root_and_ancestors"
	strategyDescendantsConstant         = "descendants"
)

// ErrLocatorNotConfigured indicates the resolver was constructed without a repository locator.
var ErrLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)

// RepositoryLocator exposes the discovery primitives used during resolution.
type RepositoryLocator interface {
	IsRepositoryRoot(directoryPath string) bool
	DiscoverAncestors(startDirectory string) []string
	DiscoverDescendants(rootDirectory string, maximumDepth discovery.DepthLimit) ([]string, error)
}

// DiscoveryConfiguration captures the inputs of a single resolution.
type DiscoveryConfiguration struct {
	// Root is the search root; an empty root falls back to WorkingDirectory.
	Root string
	// WorkingDirectory anchors the ancestor search.
	WorkingDirectory string
	MaximumDepth     discovery.DepthLimit
	IncludeAncestors bool
}

// Resolver builds TargetSets from discovery results.
type Resolver struct {
	locator RepositoryLocator
	logger  *zap.Logger
}

// NewResolver constructs a Resolver around the provided locator.
func NewResolver(locator RepositoryLocator, logger *zap.Logger) (*Resolver, error) {
	if locator == nil {
		return nil, ErrLocatorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{locator: locator, logger: logger}, nil
}

// Resolve returns the repositories the configuration designates.
func (resolver *Resolver) Resolve(configuration DiscoveryConfiguration) (TargetSet, error) {
	rootDirectory := configuration.Root
	if len(rootDirectory) == 0 {
		rootDirectory = configuration.WorkingDirectory
	}

	var candidatePaths []string
	strategy := strategyDescendantsConstant

	if resolver.locator.IsRepositoryRoot(rootDirectory) {
		candidatePaths = append(candidatePaths, rootDirectory)
		strategy = strategyRootRepositoryConstant
		if configuration.IncludeAncestors {
			candidatePaths = append(candidatePaths, resolver.locator.DiscoverAncestors(configuration.WorkingDirectory)...)
			strategy = strategyAncestorsConstant
		}
	} else {
		descendantPaths, discoveryError := resolver.locator.DiscoverDescendants(rootDirectory, configuration.MaximumDepth)
		if discoveryError != nil {
			return TargetSet{}, discoveryError
		}
		candidatePaths = descendantPaths
	}

	targetSet := NewTargetSet(candidatePaths)

	resolver.logger.Debug(
		targetsResolvedMessageConstant,
		zap.String(logFieldRootConstant, rootDirectory),
		zap.String(logFieldWorkingDirectoryConstant, configuration.WorkingDirectory),
		zap.String(logFieldStrategyConstant, strategy),
		zap.Int(logFieldTargetCountConstant, targetSet.Len()),
	)

	return targetSet, nil
}

// RepositoryRoot identifies a directory containing a repository marker.
type RepositoryRoot struct {
	Path string
}

// TargetSet is an ordered sequence of repository roots without duplicates.
type TargetSet struct {
	roots []RepositoryRoot
}

// NewTargetSet cleans, deduplicates, and sorts the provided paths.
func NewTargetSet(paths []string) TargetSet {
	seen := make(map[string]struct{}, len(paths))
	normalizedPaths := make([]string, 0, len(paths))
	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		normalizedPath := filepath.Clean(path)
		if _, duplicate := seen[normalizedPath]; duplicate {
			continue
		}
		seen[normalizedPath] = struct{}{}
		normalizedPaths = append(normalizedPaths, normalizedPath)
	}
	sort.Strings(normalizedPaths)

	roots := make([]RepositoryRoot, 0, len(normalizedPaths))
	for _, normalizedPath := range normalizedPaths {
		roots = append(roots, RepositoryRoot{Path: normalizedPath})
	}
	return TargetSet{roots: roots}
}

// Len reports the number of targets.
func (targetSet TargetSet) Len() int {
	return len(targetSet.roots)
}

// Roots returns a copy of the ordered targets.
func (targetSet TargetSet) Roots() []RepositoryRoot {
	duplicatedRoots := make([]RepositoryRoot, len(targetSet.roots))
	copy(duplicatedRoots, targetSet.roots)
	return duplicatedRoots
}

// Paths returns the ordered target paths.
func (targetSet TargetSet) Paths() []string {
	paths := make([]string, 0, len(targetSet.roots))
	for _, root := range targetSet.roots {
		paths = append(paths, root.Path)
	}
	return paths
}
