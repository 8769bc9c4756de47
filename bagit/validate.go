package bagit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pwinckles/bagr/constants"
)

// ValidationVerdict is the overall outcome of validating a bag.
type ValidationVerdict int

const (
	// VerdictValid means the bag is complete and every checksum verified.
	VerdictValid ValidationVerdict = iota
	// VerdictComplete means the bag is complete; checksums were not checked.
	VerdictComplete
	// VerdictInvalid means at least one blocking problem was found.
	VerdictInvalid
)

func (v ValidationVerdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictComplete:
		return "complete"
	case VerdictInvalid:
		return "invalid"
	}
	return "unknown"
}

// IssueLevel classifies a validation finding.
type IssueLevel int

const (
	IssueError IssueLevel = iota
	IssueWarn
)

func (l IssueLevel) String() string {
	if l == IssueWarn {
		return "warn"
	}
	return "error"
}

// ValidationIssue is one finding from validating a bag.
type ValidationIssue struct {
	Level   IssueLevel
	Message string
}

// ValidationResult aggregates every finding from validating a bag.
type ValidationResult struct {
	verdict ValidationVerdict
	issues  []ValidationIssue
}

// Verdict returns the overall outcome.
func (r *ValidationResult) Verdict() ValidationVerdict {
	return r.verdict
}

// Issues returns the findings in the order they were recorded.
func (r *ValidationResult) Issues() []ValidationIssue {
	return r.issues
}

func (r *ValidationResult) invalid() {
	r.verdict = VerdictInvalid
}

func (r *ValidationResult) error(format string, a ...interface{}) {
	r.invalid()
	r.issues = append(r.issues, ValidationIssue{
		Level:   IssueError,
		Message: fmt.Sprintf(format, a...),
	})
}

func (r *ValidationResult) warn(format string, a ...interface{}) {
	r.issues = append(r.issues, ValidationIssue{
		Level:   IssueWarn,
		Message: fmt.Sprintf(format, a...),
	})
}

// ValidateBag checks whether the bag at baseDir is complete per RFC 8493:
// declaration present and supported, data/ present, at least one payload
// manifest, every manifest entry resolving to a real file, and every
// payload file listed in every payload manifest. With integrityCheck,
// every checksum in every manifest is also verified against the file
// contents. Findings are aggregated; only unreadable filesystem state
// aborts with an error.
func ValidateBag(baseDir string, integrityCheck bool) (*ValidationResult, error) {
	log.Infof("Validating bag at %s", baseDir)

	result := &ValidationResult{verdict: VerdictComplete}
	if integrityCheck {
		result.verdict = VerdictValid
	}

	ok, err := validateDeclaration(baseDir, result)
	if err != nil {
		return nil, err
	}
	// Without a supported declaration there is no version to validate
	// against.
	if !ok {
		return result, nil
	}

	payloadManifests, tagManifests, err := findManifestFiles(baseDir)
	if err != nil {
		return nil, err
	}
	if len(payloadManifests) == 0 {
		result.error("bag has no payload manifests")
	}

	payloadFiles, err := listPayloadFiles(baseDir, result)
	if err != nil {
		return nil, err
	}

	var payloadDigests map[string]map[DigestAlgorithm]string
	if integrityCheck {
		payloadDigests, err = digestPayload(baseDir, payloadManifests)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range payloadManifests {
		validatePayloadManifest(baseDir, name, payloadFiles, payloadDigests, integrityCheck, result)
	}

	validateBagInfo(baseDir, result)

	for _, name := range tagManifests {
		validateTagManifest(baseDir, name, integrityCheck, result)
	}

	return result, nil
}

// validateDeclaration reads bagit.txt and maps each way it can be bad to
// an issue. Returns false when validation cannot continue.
func validateDeclaration(baseDir string, result *ValidationResult) (bool, error) {
	_, err := ReadBagDeclaration(baseDir)
	if err == nil {
		return true, nil
	}

	switch e := err.(type) {
	case *IOError:
		if os.IsNotExist(e.Err) {
			result.error("%s does not exist", constants.BagItTxt)
			return false, nil
		}
		if os.IsPermission(e.Err) {
			result.error("%s cannot be read", constants.BagItTxt)
			return false, nil
		}
		return false, err
	case *InvalidTagLineRefError:
		result.error("Tag %d in %s is invalid: %s", e.Num, constants.BagItTxt, e.Details)
	case *MissingTagError:
		result.error("%s is missing required tag '%s'", constants.BagItTxt, e.Tag)
	case *InvalidBagItVersionError:
		result.error("%s contains an invalid %s: %s", constants.BagItTxt, constants.LabelBagItVersion, e.Value)
	case *UnsupportedVersionError:
		result.error("%s declares unsupported version %s", constants.BagItTxt, e.Version)
	case *UnsupportedEncodingError:
		result.error("%s contains an invalid %s: %s", constants.BagItTxt, constants.LabelFileEncoding, e.Encoding)
	default:
		return false, err
	}
	return false, nil
}

// findManifestFiles returns the payload and tag manifest file names at
// the bag root.
func findManifestFiles(baseDir string) ([]string, []string, error) {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, nil, &IOError{Op: IOReadDir, Path: baseDir, Err: err}
	}

	var payload, tag []string
	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		if constants.ManifestFileRegex.MatchString(entry.Name()) {
			payload = append(payload, entry.Name())
		} else if constants.TagManifestFileRegex.MatchString(entry.Name()) {
			tag = append(tag, entry.Name())
		}
	}
	sort.Strings(payload)
	sort.Strings(tag)
	return payload, tag, nil
}

// listPayloadFiles walks data/ and returns the set of payload paths in
// manifest form ("data/..." with forward slashes).
func listPayloadFiles(baseDir string, result *ValidationResult) (map[string]bool, error) {
	payloadFiles := make(map[string]bool)

	dataDir := filepath.Join(baseDir, constants.DataDir)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		result.error("%s directory does not exist", constants.DataDir)
		return payloadFiles, nil
	}

	err := filepath.WalkDir(dataDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &WalkError{Err: walkErr}
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		relative, err := filepath.Rel(baseDir, path)
		if err != nil {
			return &WalkError{Err: err}
		}
		payloadFiles[filepath.ToSlash(relative)] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payloadFiles, nil
}

// digestPayload digests every payload file once using the union of the
// algorithms the payload manifests name, keyed by manifest-form path.
func digestPayload(baseDir string, payloadManifests []string) (map[string]map[DigestAlgorithm]string, error) {
	var algorithms []DigestAlgorithm
	for _, name := range payloadManifests {
		if algorithm, ok := AlgorithmFromManifestName(name); ok {
			algorithms = append(algorithms, algorithm)
		}
	}
	algorithms = SortAlgorithms(algorithms)

	meta, err := calculateDigests(filepath.Join(baseDir, constants.DataDir), algorithms,
		func(string, fs.DirEntry) bool { return true })
	if err != nil {
		return nil, err
	}
	addDataPrefix(meta)

	digests := make(map[string]map[DigestAlgorithm]string, len(meta))
	for _, m := range meta {
		digests[filepath.ToSlash(m.Path)] = m.Digests
	}
	return digests, nil
}

func validatePayloadManifest(baseDir, name string, payloadFiles map[string]bool,
	payloadDigests map[string]map[DigestAlgorithm]string, integrityCheck bool, result *ValidationResult) {

	algorithm, known := AlgorithmFromManifestName(name)
	if !known {
		result.warn("%s names an unknown digest algorithm; its checksums were not verified", name)
		return
	}

	manifestEntries, err := ReadManifest(filepath.Join(baseDir, name))
	if err != nil {
		result.error("%v", err)
		return
	}

	listed := make(map[string]bool, len(manifestEntries))
	for _, entry := range manifestEntries {
		if !strings.HasPrefix(entry.Path, constants.DataDir+"/") {
			result.error("%s references %s, which is outside the payload", name, entry.Path)
			continue
		}
		if !payloadFiles[entry.Path] {
			result.error("%s references %s, which does not exist", name, entry.Path)
			continue
		}
		listed[entry.Path] = true
		if integrityCheck {
			actual := payloadDigests[entry.Path][algorithm]
			if !strings.EqualFold(entry.Digest, actual) {
				result.error("%s checksum of %s does not match: expected %s, found %s",
					algorithm, entry.Path, entry.Digest, actual)
			}
		}
	}

	// BagIt 1.0 requires every payload file in every payload manifest.
	missing := make([]string, 0)
	for path := range payloadFiles {
		if !listed[path] {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	for _, path := range missing {
		result.error("%s is not listed in %s", path, name)
	}
}

func validateBagInfo(baseDir string, result *ValidationResult) {
	path := filepath.Join(baseDir, constants.BagInfoTxt)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	tags, err := ReadTagFile(path)
	if err != nil {
		result.error("%v", err)
		return
	}

	counts := make(map[string]int)
	for _, tag := range tags.Tags() {
		counts[strings.ToLower(tag.Label)]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if counts[label] > 1 && !constants.LabelIsRepeatable(label) {
			result.warn("%s contains %d %s tags, but the label is not repeatable",
				constants.BagInfoTxt, counts[label], label)
		}
	}
}

func validateTagManifest(baseDir, name string, integrityCheck bool, result *ValidationResult) {
	algorithm, known := AlgorithmFromManifestName(name)
	if !known {
		result.warn("%s names an unknown digest algorithm; its checksums were not verified", name)
		return
	}

	manifestEntries, err := ReadManifest(filepath.Join(baseDir, name))
	if err != nil {
		result.error("%v", err)
		return
	}

	for _, entry := range manifestEntries {
		if strings.HasPrefix(entry.Path, constants.DataDir+"/") {
			result.error("%s references payload file %s", name, entry.Path)
			continue
		}
		if constants.TagManifestFileRegex.MatchString(filepath.ToSlash(entry.Path)) {
			result.error("%s references tag manifest %s", name, entry.Path)
			continue
		}
		path := filepath.Join(baseDir, filepath.FromSlash(entry.Path))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			result.error("%s references %s, which does not exist", name, entry.Path)
			continue
		}
		if integrityCheck {
			digests, err := digestFile(path, []DigestAlgorithm{algorithm})
			if err != nil {
				result.error("%v", err)
				continue
			}
			if !strings.EqualFold(entry.Digest, digests[algorithm]) {
				result.error("%s checksum of %s does not match: expected %s, found %s",
					algorithm, entry.Path, entry.Digest, digests[algorithm])
			}
		}
	}
}
