package bagit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/pwinckles/bagr/constants"
)

// FileMeta describes one file destined for a manifest: its path relative
// to the bag root, its size, and its digest under every selected
// algorithm.
type FileMeta struct {
	Path    string
	Size    int64
	Digests map[DigestAlgorithm]string
}

// ManifestEntry is one parsed manifest line: a digest and the decoded
// path it applies to.
type ManifestEntry struct {
	Digest string
	Path   string
}

// AlgorithmFromManifestName extracts the digest algorithm from a payload
// or tag manifest file name. It returns false when the name is not a
// manifest or names an algorithm this packager does not know.
func AlgorithmFromManifestName(name string) (DigestAlgorithm, bool) {
	match := constants.ManifestFileRegex.FindStringSubmatch(name)
	if match == nil {
		match = constants.TagManifestFileRegex.FindStringSubmatch(name)
	}
	if match == nil {
		return "", false
	}
	algorithm, err := AlgorithmFromString(match[1])
	if err != nil {
		return "", false
	}
	return algorithm, true
}

// WritePayloadManifests writes one manifest-ALG.txt per algorithm into
// baseDir covering the payload files described by fileMeta.
func WritePayloadManifests(algorithms []DigestAlgorithm, fileMeta []FileMeta, baseDir string) error {
	return writeManifests(algorithms, fileMeta, constants.ManifestPrefix, baseDir)
}

// WriteTagManifests writes one tagmanifest-ALG.txt per algorithm into
// baseDir covering the tag files described by fileMeta.
func WriteTagManifests(algorithms []DigestAlgorithm, fileMeta []FileMeta, baseDir string) error {
	return writeManifests(algorithms, fileMeta, constants.TagManifestPrefix, baseDir)
}

// encodedMeta pairs a FileMeta with its percent-encoded manifest path.
type encodedMeta struct {
	encoded string
	meta    FileMeta
}

func writeManifests(algorithms []DigestAlgorithm, fileMeta []FileMeta, prefix, baseDir string) error {
	entries := make([]encodedMeta, 0, len(fileMeta))
	for _, meta := range fileMeta {
		if !utf8.ValidString(meta.Path) {
			return &InvalidUTF8PathError{Path: meta.Path}
		}
		entries = append(entries, encodedMeta{
			encoded: PercentEncode(filepath.ToSlash(meta.Path)),
			meta:    meta,
		})
	}

	// Sort by the encoded form so manifests are byte identical across
	// runs for the same inputs.
	sort.Slice(entries, func(i, j int) bool { return entries[i].encoded < entries[j].encoded })

	for _, algorithm := range algorithms {
		manifest := filepath.Join(baseDir, fmt.Sprintf("%s-%s.txt", prefix, algorithm))
		if err := writeManifest(algorithm, manifest, entries); err != nil {
			return err
		}
	}
	return nil
}

func writeManifest(algorithm DigestAlgorithm, manifest string, entries []encodedMeta) error {
	log.Infof("Writing manifest %s", manifest)

	file, err := os.Create(manifest)
	if err != nil {
		return &IOError{Op: IOCreate, Path: manifest, Err: err}
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, e := range entries {
		digest, ok := e.meta.Digests[algorithm]
		if !ok {
			return errors.Errorf("missing %s digest for %s", algorithm, e.meta.Path)
		}
		// Two spaces to match GNU coreutils checksum output.
		if _, err := fmt.Fprintf(writer, "%s  %s\n", digest, e.encoded); err != nil {
			return &IOError{Op: IOWrite, Path: manifest, Err: err}
		}
	}
	if err := writer.Flush(); err != nil {
		return &IOError{Op: IOWrite, Path: manifest, Err: err}
	}
	if err := file.Close(); err != nil {
		return &IOError{Op: IOWrite, Path: manifest, Err: err}
	}
	return nil
}

// ReadManifest parses a manifest file. It is more tolerant than the
// writer: the digest and path may be separated by one or two whitespace
// characters, the second separator character may be a `*` binary-mode
// marker, and paths may begin with `./`. Anything else, including a %
// that does not begin a recognized escape pair, is an error naming the
// file and line.
func ReadManifest(path string) ([]ManifestEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: IORead, Path: path, Err: err}
	}
	defer file.Close()

	var manifestEntries []ManifestEntry
	reader := NewLineReader(file)
	num := 0

	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*InvalidStringError); ok {
				return nil, err
			}
			return nil, &IOError{Op: IORead, Path: path, Err: err}
		}
		num++
		entry, err := parseManifestLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid entry on line %d of manifest %s", num, path)
		}
		manifestEntries = append(manifestEntries, entry)
	}

	return manifestEntries, nil
}

func parseManifestLine(line string) (ManifestEntry, error) {
	sep := strings.IndexAny(line, " \t")
	if sep <= 0 {
		return ManifestEntry{}, errors.Errorf("'%s' is not a digest followed by a path", line)
	}

	digest := line[:sep]
	rest := line[sep+1:]

	// Producers vary: some emit a single separator, most emit two
	// spaces, and a few mark binary mode with an asterisk.
	if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t' || rest[0] == '*') {
		rest = rest[1:]
	}
	if rest == "" {
		return ManifestEntry{}, errors.Errorf("'%s' is missing a path", line)
	}

	rest = strings.TrimPrefix(rest, "./")
	if hasUnrecognizedEscape(rest) {
		return ManifestEntry{}, errors.Errorf("'%s' contains a %% that does not begin %%0D, %%0A, or %%25", line)
	}
	return ManifestEntry{Digest: digest, Path: PercentDecode(rest)}, nil
}
