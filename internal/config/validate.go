package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidAmbiguity indicates an unknown ambiguity policy
	ErrInvalidAmbiguity = errors.New("invalid ambiguity policy")

	// ErrInvalidTimeout indicates a negative invocation timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidPattern indicates an empty or malformed glob pattern
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce cannot be negative, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if err := validateList(&cfg.List); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	ambiguity := strings.ToLower(cfg.Ambiguity)
	if ambiguity != "strict" && ambiguity != "first" {
		errs = append(errs, fmt.Errorf("%w: must be 'strict' or 'first', got '%s'", ErrInvalidAmbiguity, cfg.Ambiguity))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout cannot be negative, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateList(cfg *ListConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrInvalidPattern))
	}

	for _, pattern := range cfg.Include {
		if strings.TrimSpace(pattern) == "" {
			errs = append(errs, fmt.Errorf("%w: empty include pattern", ErrInvalidPattern))
			continue
		}
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error, keeping each one
// reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}
