package domain

import "context"

// Strategy is one concrete technique for extracting descriptor fields and
// candidate media URLs from a classified source URL. Implementations must
// return ErrNoCandidates (or any other error) on failure and never a
// descriptor with fields merged from other sources.
type Strategy interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string

	// Resolve extracts a descriptor for the target. A nil error implies a
	// complete descriptor; candidate presence is judged by the caller.
	Resolve(ctx context.Context, target ClassifiedURL) (*ContentDescriptor, error)
}

// AcquisitionMethod is one concrete technique for turning a candidate URL
// into local bytes at destPath. Methods wrap non-retryable failures with
// Terminal so the engine rotates immediately.
type AcquisitionMethod interface {
	// Name identifies the method in logs and diagnostics.
	Name() string

	// Fetch transfers the media for desc into destPath. candidateURL is
	// the ranked direct link under trial; methods that operate on the
	// original page URL may ignore it.
	Fetch(ctx context.Context, desc *ContentDescriptor, candidateURL, destPath string) error

	// Policy returns the retry budget governing transient failures of
	// this method.
	Policy() RetryPolicy
}
