// Package matcher decides whether a presented face belongs to an enrolled
// user and records the attempt in the login history.
package matcher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/face"
	"github.com/openvisage/facegate/internal/store"
)

// ErrNoFace indicates that no face was detected in the probe image.
var ErrNoFace = errors.New("no face detected")

// Extractor detects faces and computes their encodings.
type Extractor interface {
	DetectEncodings(ctx context.Context, imageData []byte) ([]face.Encoding, error)
}

// UserLister provides the enrolled users to scan.
type UserLister interface {
	ListAll(ctx context.Context) ([]store.User, error)
}

// Recorder appends attempts to the login history.
type Recorder interface {
	Append(e audit.Entry)
}

// Result is the outcome of one identification attempt.
type Result struct {
	Matched  bool
	UserName string
}

// Engine runs the identification scan.
type Engine struct {
	users     UserLister
	extractor Extractor
	history   Recorder
	threshold float64
}

// NewEngine creates an engine using the given distance threshold.
func NewEngine(users UserLister, extractor Extractor, history Recorder, threshold float64) *Engine {
	return &Engine{
		users:     users,
		extractor: extractor,
		history:   history,
		threshold: threshold,
	}
}

// outcome of comparing the probe against one enrolled user.
type outcome int

const (
	outcomeMatched outcome = iota
	outcomeNoMatch
	outcomeSkipped
)

// Identify compares the probe image against every enrolled user in store
// order and returns the first user within the distance threshold.
//
// First-match-wins is the tie-break policy: when two enrolled users both
// match, the one enrolled earlier is returned regardless of which is
// closer. The scan stops at the first match.
//
// Every completed scan appends exactly one history entry: success with the
// matched name, or fail with username "unknown" when the scan is exhausted.
// A probe that fails to decode or contains no face produces no entry.
func (e *Engine) Identify(ctx context.Context, probeImage []byte) (Result, error) {
	if err := face.ValidateImage(probeImage); err != nil {
		return Result{}, err
	}

	encodings, err := e.extractor.DetectEncodings(ctx, probeImage)
	if err != nil {
		return Result{}, err
	}
	if len(encodings) == 0 {
		return Result{}, ErrNoFace
	}
	// Multi-face probes are not handled; the first detected face is the probe.
	probe := encodings[0]

	users, err := e.users.ListAll(ctx)
	if err != nil {
		return Result{}, err
	}

	for _, usr := range users {
		switch e.compare(ctx, usr, probe) {
		case outcomeMatched:
			e.history.Append(audit.NewEntry(usr.Name, audit.StatusSuccess))
			return Result{Matched: true, UserName: usr.Name}, nil
		case outcomeNoMatch, outcomeSkipped:
			continue
		}
	}

	e.history.Append(audit.NewEntry(audit.UnknownUser, audit.StatusFail))
	return Result{}, nil
}

// compare checks one enrolled user against the probe. Any failure to
// process the stored reference image skips the user without aborting the
// scan: one corrupt enrollment must not block everyone else.
func (e *Engine) compare(ctx context.Context, usr store.User, probe face.Encoding) outcome {
	imageData, err := face.DecodePayload(usr.Image)
	if err != nil {
		slog.Debug("skipping user with undecodable reference image", "user", usr.Name, "error", err)
		return outcomeSkipped
	}

	stored, err := e.extractor.DetectEncodings(ctx, imageData)
	if err != nil {
		slog.Debug("skipping user after extraction failure", "user", usr.Name, "error", err)
		return outcomeSkipped
	}
	if len(stored) == 0 {
		slog.Debug("skipping user with no detectable face", "user", usr.Name)
		return outcomeSkipped
	}

	if face.Match(stored[0], probe, e.threshold) {
		return outcomeMatched
	}
	return outcomeNoMatch
}
