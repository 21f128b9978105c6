// Package recognizer aggregates per-crop identity matcher results into a
// single decided identity through vote counting, with a liveness gate in
// front of the matcher.
package recognizer

import (
	"context"
	"fmt"
	"image"
	"log"
	"sort"

	"github.com/maperezv/staff-attendance/internal/vision"
)

// Sentinel identities returned instead of a gallery label.
const (
	// UnknownIdentity is returned when no matcher row voted for anything.
	UnknownIdentity = "unknown"
	// SpoofIdentity is returned when any submitted face fails the liveness
	// gate. The whole request short-circuits; remaining faces are not
	// matched.
	SpoofIdentity = "spoof_detected"
)

// LivenessGate decides whether a face crop shows a live subject.
type LivenessGate interface {
	IsLive(ctx context.Context, face image.Image) (bool, error)
}

// Voter runs the liveness gate and the matcher over each submitted face
// region and tallies one vote per matcher row. Constructed once at startup;
// the vote map lives only for the duration of one Decide call.
type Voter struct {
	gate        LivenessGate
	matcher     vision.Matcher
	galleryPath string
	cropSize    int
	minVotes    int
}

// New creates a voter. cropSize is the square side the crops are normalized
// to before matching; minVotes is the floor a winning tally must reach.
func New(gate LivenessGate, matcher vision.Matcher, galleryPath string, cropSize, minVotes int) *Voter {
	if cropSize <= 0 {
		cropSize = 224
	}
	if minVotes <= 0 {
		minVotes = 1
	}
	return &Voter{
		gate:        gate,
		matcher:     matcher,
		galleryPath: galleryPath,
		cropSize:    cropSize,
		minVotes:    minVotes,
	}
}

// Decide crops each region out of the image, gates it on liveness and counts
// matcher rows as votes. A matcher failure for one crop is logged and skipped;
// a liveness failure for any crop aborts the request with SpoofIdentity.
// The returned error is reserved for capability failures (eye detector
// unreachable), never for negative business outcomes.
func (v *Voter) Decide(ctx context.Context, img image.Image, regions []vision.FaceRegion) (string, error) {
	votes := make(map[string]int)

	for _, region := range regions {
		region = region.Clip(img.Bounds())
		if !region.Valid() {
			continue
		}
		face := cropRegion(img, region.Rect())

		live, err := v.gate.IsLive(ctx, face)
		if err != nil {
			return "", fmt.Errorf("liveness check failed: %w", err)
		}
		if !live {
			return SpoofIdentity, nil
		}

		crop, err := encodeSquare(face, v.cropSize)
		if err != nil {
			log.Printf("recognizer: encoding crop failed, skipping face: %v", err)
			continue
		}

		matches, err := v.matcher.Find(ctx, crop, v.galleryPath)
		if err != nil {
			log.Printf("recognizer: matcher failed for crop, continuing: %v", err)
			continue
		}
		for _, m := range matches {
			votes[m.Label()]++
		}
	}

	return tally(votes, v.minVotes), nil
}

// tally picks the label with the strictly highest vote count. Ties break to
// the lexicographically smallest label so repeated runs decide identically.
func tally(votes map[string]int, minVotes int) string {
	if len(votes) == 0 {
		return UnknownIdentity
	}

	labels := make([]string, 0, len(votes))
	for label := range votes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if votes[label] > votes[best] {
			best = label
		}
	}
	if votes[best] < minVotes {
		return UnknownIdentity
	}
	return best
}
