// Package utils holds the ambient plumbing of the gits CLI.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file, and GITS_* environment variables through Viper. LoggerFactory builds the
// zap diagnostic logger, optionally writing to a rotated log file.
package utils
