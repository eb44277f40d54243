package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/gits/internal/repos/filesystem"
)

const (
	gitMetadataDirectoryNameConstant         = ".git"
	repositoryDiscoveredMessageConstant      = "repository discovered"
	permissionDeniedSkippedMessageConstant   = "skipping unreadable directory"
	ancestorRepositoryDiscoveredMessage      = "ancestor repository discovered"
	logFieldRepositoryPathConstant           = "repository_path"
	logFieldDirectoryPathConstant            = "directory_path"
	logFieldDepthConstant                    = "depth"
	logFieldErrorConstant                    = "error"
	descendantDiscoveryCompletedMessage      = "descendant discovery completed"
	logFieldRepositoryCountConstant          = "repository_count"
	logFieldMaximumDepthConstant             = "maximum_depth"
	logFieldRootDirectoryConstant            = "root_directory"
	ancestorDiscoveryCompletedMessage        = "ancestor discovery completed"
	logFieldStartDirectoryConstant           = "start_directory"
	depthLimitUnlimitedLabelConstant         = "unlimited"
	depthLimitNegativeErrorMessageConstant   = "maximum depth must not be negative"
	discoveryErrorMessageTemplateConstant    = "unable to read directory %s: %v"
	discoveryErrorMessageFallbackPathLiteral = "<unknown>"
)

// FileSystem exposes the metadata lookups required by repository discovery.
type FileSystem interface {
	Lstat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct {
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by the operating system.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return NewFilesystemRepositoryDiscovererWithFileSystem(filesystem.OSFileSystem{}, nil)
}

// NewFilesystemRepositoryDiscovererWithFileSystem constructs a repository discoverer over the provided filesystem.
func NewFilesystemRepositoryDiscovererWithFileSystem(fileSystem FileSystem, logger *zap.Logger) *FilesystemRepositoryDiscoverer {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemRepositoryDiscoverer{fileSystem: fileSystem, logger: logger}
}

// IsRepositoryRoot reports whether directoryPath directly contains a .git directory or a .git file.
// Missing, unreadable, and mismatching entries all report false.
func (discoverer *FilesystemRepositoryDiscoverer) IsRepositoryRoot(directoryPath string) bool {
	markerInfo, statError := discoverer.fileSystem.Lstat(filepath.Join(directoryPath, gitMetadataDirectoryNameConstant))
	if statError != nil {
		return false
	}
	return markerInfo.IsDir() || markerInfo.Mode().IsRegular()
}

// DiscoverAncestors returns every repository root from startDirectory up to the filesystem root, nearest first.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverAncestors(startDirectory string) []string {
	var repositories []string

	currentDirectory := filepath.Clean(startDirectory)
	for {
		if discoverer.IsRepositoryRoot(currentDirectory) {
			discoverer.logger.Debug(ancestorRepositoryDiscoveredMessage, zap.String(logFieldRepositoryPathConstant, currentDirectory))
			repositories = append(repositories, currentDirectory)
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	discoverer.logger.Debug(
		ancestorDiscoveryCompletedMessage,
		zap.String(logFieldStartDirectoryConstant, startDirectory),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
	)

	return repositories
}

// DiscoverDescendants walks rootDirectory and returns the repositories it contains.
//
// A repository hides everything beneath it: once a directory qualifies it is recorded and
// its subtree is not visited, so nested or vendored repositories never surface. Children
// are visited in name order and entries named .git are never descended into. Directories
// that cannot be read because of permissions are skipped; any other read failure aborts the
// walk with a DiscoveryError.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverDescendants(rootDirectory string, maximumDepth DepthLimit) ([]string, error) {
	walker := descendantWalker{discoverer: discoverer, maximumDepth: maximumDepth}
	if walkError := walker.walk(rootDirectory, 0); walkError != nil {
		return nil, walkError
	}

	sort.Strings(walker.repositories)

	discoverer.logger.Debug(
		descendantDiscoveryCompletedMessage,
		zap.String(logFieldRootDirectoryConstant, rootDirectory),
		zap.Stringer(logFieldMaximumDepthConstant, maximumDepth),
		zap.Int(logFieldRepositoryCountConstant, len(walker.repositories)),
	)

	return walker.repositories, nil
}

type descendantWalker struct {
	discoverer   *FilesystemRepositoryDiscoverer
	maximumDepth DepthLimit
	repositories []string
}

func (walker *descendantWalker) walk(directoryPath string, depth int) error {
	if walker.discoverer.IsRepositoryRoot(directoryPath) {
		walker.discoverer.logger.Debug(
			repositoryDiscoveredMessageConstant,
			zap.String(logFieldRepositoryPathConstant, directoryPath),
			zap.Int(logFieldDepthConstant, depth),
		)
		walker.repositories = append(walker.repositories, directoryPath)
		return nil
	}

	if walker.maximumDepth.Exhausted(depth) {
		return nil
	}

	directoryEntries, readError := walker.discoverer.fileSystem.ReadDir(directoryPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrPermission) {
			walker.discoverer.logger.Debug(
				permissionDeniedSkippedMessageConstant,
				zap.String(logFieldDirectoryPathConstant, directoryPath),
				zap.String(logFieldErrorConstant, readError.Error()),
			)
			return nil
		}
		return DiscoveryError{DirectoryPath: directoryPath, Cause: readError}
	}

	childDirectoryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
			continue
		}
		childDirectoryNames = append(childDirectoryNames, directoryEntry.Name())
	}
	sort.Strings(childDirectoryNames)

	for _, childDirectoryName := range childDirectoryNames {
		if walkError := walker.walk(filepath.Join(directoryPath, childDirectoryName), depth+1); walkError != nil {
			return walkError
		}
	}

	return nil
}
