package loader

import (
	annotate "github.com/goliatone/go-annotate"
)

// Strategy names one of the mutually exclusive discovery strategies.
type Strategy int

const (
	// StrategyLegacy walks the host's eager-load paths and requires files by
	// logical name.
	StrategyLegacy Strategy = iota + 1
	// StrategyModern delegates to the host's own eager-load facility.
	StrategyModern
	// StrategyBare walks model_dir and requires files by absolute path.
	StrategyBare
)

// ModernMajorVersion is the first host major version using StrategyModern.
const ModernMajorVersion = 3

func (s Strategy) String() string {
	switch s {
	case StrategyLegacy:
		return "legacy"
	case StrategyModern:
		return "modern"
	case StrategyBare:
		return "bare"
	default:
		return "unknown"
	}
}

// SelectStrategy picks the strategy for host. A nil host counts as absent.
func SelectStrategy(host annotate.Host) Strategy {
	if host == nil || !host.Present() {
		return StrategyBare
	}
	if host.MajorVersion() < ModernMajorVersion {
		return StrategyLegacy
	}
	return StrategyModern
}
