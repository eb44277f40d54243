package discovery

import "fmt"

// DiscoveryError reports a directory that could not be read for a reason other than permissions.
type DiscoveryError struct {
	DirectoryPath string
	Cause         error
}

// Error describes the failure.
func (discoveryError DiscoveryError) Error() string {
	directoryPath := discoveryError.DirectoryPath
	if len(directoryPath) == 0 {
		directoryPath = discoveryErrorMessageFallbackPathLiteral
	}
	return fmt.Sprintf(discoveryErrorMessageTemplateConstant, directoryPath, discoveryError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (discoveryError DiscoveryError) Unwrap() error {
	return discoveryError.Cause
}
