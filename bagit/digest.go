package bagit

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DigestAlgorithm identifies a checksum algorithm supported in manifests.
// The string value is the token used in manifest file names, for example
// the "sha256" in "manifest-sha256.txt".
type DigestAlgorithm string

const (
	Md5        DigestAlgorithm = "md5"
	Sha1       DigestAlgorithm = "sha1"
	Sha256     DigestAlgorithm = "sha256"
	Sha512     DigestAlgorithm = "sha512"
	Blake2b256 DigestAlgorithm = "blake2b256"
	Blake2b512 DigestAlgorithm = "blake2b512"
)

// DefaultAlgorithm is used when the caller does not select any algorithms.
const DefaultAlgorithm = Sha512

// KnownAlgorithms lists every supported algorithm in sorted order.
var KnownAlgorithms = []DigestAlgorithm{
	Blake2b256,
	Blake2b512,
	Md5,
	Sha1,
	Sha256,
	Sha512,
}

func (a DigestAlgorithm) String() string {
	return string(a)
}

// AlgorithmFromString maps a manifest algorithm token to a
// DigestAlgorithm. Matching is case-insensitive.
func AlgorithmFromString(name string) (DigestAlgorithm, error) {
	lower := strings.ToLower(name)
	for _, algorithm := range KnownAlgorithms {
		if lower == string(algorithm) {
			return algorithm, nil
		}
	}
	return "", fmt.Errorf("unknown digest algorithm '%s'; expected one of "+
		"md5, sha1, sha256, sha512, blake2b256, blake2b512", name)
}

// newHash returns a fresh hash for the algorithm. The blake2b
// constructors only fail when given an oversized key, so an unkeyed
// hash can never fail here.
func (a DigestAlgorithm) newHash() hash.Hash {
	switch a {
	case Md5:
		return md5.New()
	case Sha1:
		return sha1.New()
	case Sha256:
		return sha256.New()
	case Sha512:
		return sha512.New()
	case Blake2b256:
		h, _ := blake2b.New256(nil)
		return h
	case Blake2b512:
		h, _ := blake2b.New512(nil)
		return h
	}
	panic(fmt.Sprintf("no hash constructor for algorithm '%s'", a))
}

// SortAlgorithms returns a sorted copy of algorithms with duplicates
// removed. The input is not modified.
func SortAlgorithms(algorithms []DigestAlgorithm) []DigestAlgorithm {
	sorted := make([]DigestAlgorithm, len(algorithms))
	copy(sorted, algorithms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	unique := sorted[:0]
	for _, algorithm := range sorted {
		if len(unique) == 0 || unique[len(unique)-1] != algorithm {
			unique = append(unique, algorithm)
		}
	}
	return unique
}

// MultiDigestWriter feeds every byte written to it through one hash per
// selected algorithm. It performs no I/O of its own.
type MultiDigestWriter struct {
	algorithms []DigestAlgorithm
	hashes     []hash.Hash
	writer     io.Writer
}

// NewMultiDigestWriter creates a sink that updates one hash per algorithm
// on every write.
func NewMultiDigestWriter(algorithms []DigestAlgorithm) *MultiDigestWriter {
	hashes := make([]hash.Hash, len(algorithms))
	writers := make([]io.Writer, len(algorithms))
	for i, algorithm := range algorithms {
		hashes[i] = algorithm.newHash()
		writers[i] = hashes[i]
	}
	return &MultiDigestWriter{
		algorithms: algorithms,
		hashes:     hashes,
		writer:     io.MultiWriter(writers...),
	}
}

func (w *MultiDigestWriter) Write(p []byte) (int, error) {
	return w.writer.Write(p)
}

// FinalizeHex returns the lowercase hex digest for each algorithm over
// all bytes written so far.
func (w *MultiDigestWriter) FinalizeHex() map[DigestAlgorithm]string {
	digests := make(map[DigestAlgorithm]string, len(w.hashes))
	for i, h := range w.hashes {
		digests[w.algorithms[i]] = fmt.Sprintf("%x", h.Sum(nil))
	}
	return digests
}
