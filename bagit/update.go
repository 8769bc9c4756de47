package bagit

import "github.com/pwinckles/bagr/constants"

// BagUpdater stages changes to an existing bag. It is created by
// Bag.Update and consumed by Finalize.
type BagUpdater struct {
	bag              *Bag
	recalcPayload    bool
	algorithms       []DigestAlgorithm
	baggingDate      string
	softwareAgent    string
	hasBaggingDate   bool
	hasSoftwareAgent bool
}

// Update returns a builder for modifying this bag. Nothing is written
// until Finalize is called.
func (b *Bag) Update() *BagUpdater {
	return &BagUpdater{
		bag:           b,
		recalcPayload: true,
	}
}

// WithAlgorithm adds a digest algorithm to use when recalculating
// manifests.
func (u *BagUpdater) WithAlgorithm(algorithm DigestAlgorithm) *BagUpdater {
	u.algorithms = append(u.algorithms, algorithm)
	return u
}

// WithAlgorithms replaces the set of digest algorithms to use when
// recalculating manifests. An empty set keeps the bag's current
// algorithms.
func (u *BagUpdater) WithAlgorithms(algorithms []DigestAlgorithm) *BagUpdater {
	u.algorithms = append(u.algorithms[:0], algorithms...)
	return u
}

// WithBaggingDate sets an explicit Bagging-Date instead of today.
func (u *BagUpdater) WithBaggingDate(date string) *BagUpdater {
	u.baggingDate = date
	u.hasBaggingDate = true
	return u
}

// WithSoftwareAgent sets an explicit Bag-Software-Agent instead of the
// bagr default.
func (u *BagUpdater) WithSoftwareAgent(agent string) *BagUpdater {
	u.softwareAgent = agent
	u.hasSoftwareAgent = true
	return u
}

// RecalculatePayloadManifests enables or disables payload manifest
// recalculation. It is on by default; disable it only when the payload
// and algorithm set are unchanged.
func (u *BagUpdater) RecalculatePayloadManifests(recalculate bool) *BagUpdater {
	u.recalcPayload = recalculate
	return u
}

// Finalize writes the staged changes to disk and refreshes manifests.
// When recalculation is disabled any algorithm override is ignored,
// because existing manifests can only be kept under the algorithms that
// produced them.
func (u *BagUpdater) Finalize() (*Bag, error) {
	baseDir := u.bag.baseDir

	algorithms := u.bag.algorithms
	if u.recalcPayload && len(u.algorithms) > 0 {
		algorithms = SortAlgorithms(u.algorithms)
	}

	baggingDate := u.baggingDate
	if !u.hasBaggingDate {
		baggingDate = currentDateString()
	}
	if err := u.bag.bagInfo.SetBaggingDate(baggingDate); err != nil {
		return nil, err
	}

	softwareAgent := u.softwareAgent
	if !u.hasSoftwareAgent {
		softwareAgent = defaultSoftwareAgent()
	}
	if err := u.bag.bagInfo.SetSoftwareAgent(softwareAgent); err != nil {
		return nil, err
	}

	if u.recalcPayload {
		if err := deleteMatchingFiles(baseDir, constants.ManifestFileRegex); err != nil {
			return nil, err
		}
		payloadMeta, err := updatePayloadManifests(baseDir, algorithms)
		if err != nil {
			return nil, err
		}
		if err := u.bag.bagInfo.SetPayloadOxum(buildPayloadOxum(payloadMeta)); err != nil {
			return nil, err
		}
	}

	if err := WriteBagInfo(u.bag.bagInfo, baseDir); err != nil {
		return nil, err
	}

	if err := deleteMatchingFiles(baseDir, constants.TagManifestFileRegex); err != nil {
		return nil, err
	}
	if err := updateTagManifests(baseDir, algorithms); err != nil {
		return nil, err
	}

	u.bag.algorithms = algorithms
	return u.bag, nil
}
