// Package bagit creates, opens, and updates BagIt 1.0 bags as described
// by RFC 8493. A bag is materialized from a source directory by streaming
// every payload file through the selected digest algorithms exactly once,
// moving or copying it under data/, and then writing the tag files and
// the payload and tag manifests.
package bagit

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pwinckles/bagr/constants"
	"github.com/pwinckles/bagr/util"
)

// Bag is a bag on disk. It holds no open file handles; baseDir is only
// read or written when an operation is invoked.
type Bag struct {
	baseDir     string
	declaration *BagDeclaration
	bagInfo     *BagInfo
	algorithms  []DigestAlgorithm
}

// BaseDir returns the bag's root directory.
func (b *Bag) BaseDir() string {
	return b.baseDir
}

// Declaration returns the parsed bagit.txt.
func (b *Bag) Declaration() *BagDeclaration {
	return b.declaration
}

// BagInfo returns the parsed bag-info.txt.
func (b *Bag) BagInfo() *BagInfo {
	return b.bagInfo
}

// Algorithms returns the bag's digest algorithms, sorted and unique.
func (b *Bag) Algorithms() []DigestAlgorithm {
	return b.algorithms
}

// CreateBag builds a bag in dstDir out of the contents of srcDir. When
// the two are the same directory the bag is created in place and payload
// files are moved; otherwise they are copied and the source is left
// untouched. If algorithms is empty, sha512 is used. When includeHidden
// is false, hidden files are excluded from the bag, and on in-place
// creation they are deleted from the source.
func CreateBag(srcDir, dstDir string, info *BagInfo, algorithms []DigestAlgorithm, includeHidden bool) (*Bag, error) {
	log.Infof("Creating bag in %s", dstDir)

	if info == nil {
		info = NewBagInfo()
	}
	inPlace := filepath.Clean(srcDir) == filepath.Clean(dstDir)
	algorithms = defaultedAlgorithms(algorithms)

	if !inPlace {
		if err := os.MkdirAll(dstDir, 0755); err != nil {
			return nil, &IOError{Op: IOCreate, Path: dstDir, Err: err}
		}
	}

	tempDir, tempName, err := makeStagingDir(dstDir)
	if err != nil {
		return nil, err
	}

	payloadMeta, err := moveIntoDir(!inPlace, srcDir, tempDir, tempName, algorithms, includeHidden)
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Join(dstDir, constants.DataDir)
	if err := renamePath(tempDir, dataDir); err != nil {
		return nil, err
	}

	addDataPrefix(payloadMeta)
	if err := WritePayloadManifests(algorithms, payloadMeta, dstDir); err != nil {
		return nil, err
	}

	declaration := NewBagDeclaration()
	if err := WriteBagDeclaration(declaration, dstDir); err != nil {
		return nil, err
	}

	if _, ok := info.BaggingDate(); !ok {
		if err := info.SetBaggingDate(currentDateString()); err != nil {
			return nil, err
		}
	}
	if _, ok := info.SoftwareAgent(); !ok {
		if err := info.SetSoftwareAgent(defaultSoftwareAgent()); err != nil {
			return nil, err
		}
	}
	if err := info.SetPayloadOxum(buildPayloadOxum(payloadMeta)); err != nil {
		return nil, err
	}
	if err := WriteBagInfo(info, dstDir); err != nil {
		return nil, err
	}

	if err := updateTagManifests(dstDir, algorithms); err != nil {
		return nil, err
	}

	return &Bag{
		baseDir:     dstDir,
		declaration: declaration,
		bagInfo:     info,
		algorithms:  algorithms,
	}, nil
}

// OpenBag opens an existing bag. The declaration must parse and declare
// BagIt 1.0 with UTF-8 tag files. The bag's algorithms are derived from
// the payload manifest file names found at the root; manifests naming
// unknown algorithms are skipped with a warning.
func OpenBag(baseDir string) (*Bag, error) {
	log.Infof("Opening bag at %s", baseDir)

	declaration, err := ReadBagDeclaration(baseDir)
	if err != nil {
		return nil, err
	}
	algorithms, err := detectDigestAlgorithms(baseDir)
	if err != nil {
		return nil, err
	}
	info, err := ReadBagInfo(baseDir)
	if err != nil {
		return nil, err
	}

	return &Bag{
		baseDir:     baseDir,
		declaration: declaration,
		bagInfo:     info,
		algorithms:  algorithms,
	}, nil
}

// makeStagingDir creates a temp-<unix seconds> staging directory inside
// dstDir. On a name collision the timestamp is advanced until a fresh
// name is found.
func makeStagingDir(dstDir string) (string, string, error) {
	seconds := time.Now().Unix()
	for {
		name := fmt.Sprintf("temp-%d", seconds)
		dir := filepath.Join(dstDir, name)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, name, nil
		}
		if !os.IsExist(err) {
			return "", "", &IOError{Op: IOCreate, Path: dir, Err: err}
		}
		seconds++
	}
}

// moveIntoDir walks srcDir and transfers every regular file into dstDir
// at the same relative path, digesting each file's bytes exactly once
// along the way. When copyOp is false files are moved and emptied source
// directories are swept afterwards. The entry named excludeName (the
// staging directory) is skipped.
func moveIntoDir(copyOp bool, srcDir, dstDir, excludeName string, algorithms []DigestAlgorithm, includeHidden bool) ([]FileMeta, error) {
	var fileMeta []FileMeta
	var dirs []string

	cleanSrc := filepath.Clean(srcDir)

	err := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &WalkError{Err: walkErr}
		}
		if filepath.Clean(path) == cleanSrc {
			return nil
		}

		name := entry.Name()

		if entry.IsDir() && name == excludeName {
			return fs.SkipDir
		}

		if !includeHidden && util.IsHiddenFile(name) {
			if copyOp {
				// Cross-directory creation must not touch the source.
				if entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			log.Infof("Deleting hidden file %s", path)
			if entry.IsDir() {
				if err := os.RemoveAll(path); err != nil {
					return &IOError{Op: IODelete, Path: path, Err: err}
				}
				return fs.SkipDir
			}
			if err := os.Remove(path); err != nil {
				return &IOError{Op: IODelete, Path: path, Err: err}
			}
			return nil
		}

		switch {
		case entry.Type().IsRegular():
			fileInfo, err := entry.Info()
			if err != nil {
				return &WalkError{Err: err}
			}
			relative, err := filepath.Rel(cleanSrc, path)
			if err != nil {
				return &WalkError{Err: err}
			}
			dst := filepath.Join(dstDir, relative)
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return &IOError{Op: IOCreate, Path: dst, Err: err}
			}
			digests, err := digestAndTransfer(copyOp, path, dst, algorithms)
			if err != nil {
				return err
			}
			fileMeta = append(fileMeta, FileMeta{
				Path:    relative,
				Size:    fileInfo.Size(),
				Digests: digests,
			})
		case entry.IsDir():
			if !copyOp {
				dirs = append(dirs, path)
			}
		default:
			return &UnsupportedFileError{Path: path}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sweep the directories left dangling after their files moved out.
	// RemoveAll does not object when an earlier pass already took a
	// directory's parent.
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return nil, &IOError{Op: IODelete, Path: dir, Err: err}
		}
	}

	return fileMeta, nil
}

// digestAndTransfer streams src through the digest sink once. In copy
// mode the destination file is written from the same pass; in move mode
// the file is renamed after digesting.
func digestAndTransfer(copyOp bool, src, dst string, algorithms []DigestAlgorithm) (map[DigestAlgorithm]string, error) {
	log.Infof("Calculating digests for %s", src)

	in, err := os.Open(src)
	if err != nil {
		return nil, &IOError{Op: IORead, Path: src, Err: err}
	}
	defer in.Close()

	digests := NewMultiDigestWriter(algorithms)

	if copyOp {
		log.Infof("Copying %s to %s", src, dst)
		out, err := os.Create(dst)
		if err != nil {
			return nil, &CopyError{From: src, To: dst, Err: err}
		}
		if _, err := io.Copy(io.MultiWriter(out, digests), in); err != nil {
			out.Close()
			return nil, &CopyError{From: src, To: dst, Err: err}
		}
		if err := out.Close(); err != nil {
			return nil, &CopyError{From: src, To: dst, Err: err}
		}
		return digests.FinalizeHex(), nil
	}

	if _, err := io.Copy(digests, in); err != nil {
		return nil, &IOError{Op: IORead, Path: src, Err: err}
	}
	// Close before the rename so this also works on Windows.
	in.Close()
	if err := renamePath(src, dst); err != nil {
		return nil, err
	}
	return digests.FinalizeHex(), nil
}

// updatePayloadManifests re-digests everything under data/ and rewrites
// the payload manifests. Returns the metadata so the caller can refresh
// Payload-Oxum.
func updatePayloadManifests(baseDir string, algorithms []DigestAlgorithm) ([]FileMeta, error) {
	dataDir := filepath.Join(baseDir, constants.DataDir)
	meta, err := calculateDigests(dataDir, algorithms, func(string, fs.DirEntry) bool { return true })
	if err != nil {
		return nil, err
	}
	addDataPrefix(meta)
	if err := WritePayloadManifests(algorithms, meta, baseDir); err != nil {
		return nil, err
	}
	return meta, nil
}

// updateTagManifests digests every file in the bag root except the
// payload and the tag manifests themselves, then writes the tag
// manifests. Payload manifests are covered.
func updateTagManifests(baseDir string, algorithms []DigestAlgorithm) error {
	dataDir := filepath.Join(baseDir, constants.DataDir)
	meta, err := calculateDigests(baseDir, algorithms, func(path string, entry fs.DirEntry) bool {
		if entry.IsDir() && filepath.Clean(path) == dataDir {
			return false
		}
		return !constants.TagManifestFileRegex.MatchString(entry.Name())
	})
	if err != nil {
		return err
	}
	return WriteTagManifests(algorithms, meta, baseDir)
}

// calculateDigests walks baseDir and digests every regular file the
// include predicate admits. Excluded directories are not descended into.
func calculateDigests(baseDir string, algorithms []DigestAlgorithm, include func(string, fs.DirEntry) bool) ([]FileMeta, error) {
	var fileMeta []FileMeta
	cleanBase := filepath.Clean(baseDir)

	err := filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &WalkError{Err: walkErr}
		}
		if filepath.Clean(path) == cleanBase {
			return nil
		}
		if !include(path, entry) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return &WalkError{Err: err}
		}

		log.Infof("Calculating digests for %s", path)

		digests, err := digestFile(path, algorithms)
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(cleanBase, path)
		if err != nil {
			return &WalkError{Err: err}
		}
		fileMeta = append(fileMeta, FileMeta{
			Path:    relative,
			Size:    fileInfo.Size(),
			Digests: digests,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fileMeta, nil
}

// digestFile streams a file through the digest sink in one pass.
func digestFile(path string, algorithms []DigestAlgorithm) (map[DigestAlgorithm]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: IORead, Path: path, Err: err}
	}
	defer file.Close()

	digests := NewMultiDigestWriter(algorithms)
	if _, err := io.Copy(digests, file); err != nil {
		return nil, &IOError{Op: IORead, Path: path, Err: err}
	}
	return digests.FinalizeHex(), nil
}

// detectDigestAlgorithms derives a bag's algorithms from the payload
// manifest file names at its root.
func detectDigestAlgorithms(baseDir string) ([]DigestAlgorithm, error) {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, &IOError{Op: IOReadDir, Path: baseDir, Err: err}
	}

	var algorithms []DigestAlgorithm
	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		match := constants.ManifestFileRegex.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		algorithm, err := AlgorithmFromString(match[1])
		if err != nil {
			log.Warningf("Detected unsupported digest algorithm: %s", match[1])
			continue
		}
		algorithms = append(algorithms, algorithm)
	}

	return SortAlgorithms(algorithms), nil
}

// deleteMatchingFiles removes every regular file at the bag root whose
// name matches fileRegex. Files that are already gone are fine; other
// delete failures are logged and skipped, because the subsequent rewrite
// replaces any file of the same name.
func deleteMatchingFiles(baseDir string, fileRegex *regexp.Regexp) error {
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return &IOError{Op: IOReadDir, Path: baseDir, Err: err}
	}

	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() || !fileRegex.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(baseDir, entry.Name())
		log.Infof("Deleting file %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Errorf("Failed to delete file %s: %v", path, err)
		}
	}
	return nil
}

func renamePath(from, to string) error {
	log.Infof("Moving %s to %s", from, to)
	if err := os.Rename(from, to); err != nil {
		return &MoveError{From: from, To: to, Err: err}
	}
	return nil
}

// addDataPrefix rewrites payload paths to be relative to the bag root.
func addDataPrefix(fileMeta []FileMeta) {
	for i := range fileMeta {
		fileMeta[i].Path = filepath.Join(constants.DataDir, fileMeta[i].Path)
	}
}

// defaultedAlgorithms substitutes sha512 for an empty selection and
// returns the sorted-unique closure otherwise.
func defaultedAlgorithms(algorithms []DigestAlgorithm) []DigestAlgorithm {
	if len(algorithms) == 0 {
		return []DigestAlgorithm{DefaultAlgorithm}
	}
	return SortAlgorithms(algorithms)
}

// buildPayloadOxum renders `OCTETSUM.FILECOUNT` over the payload files.
func buildPayloadOxum(fileMeta []FileMeta) string {
	var sum int64
	for _, meta := range fileMeta {
		sum += meta.Size
	}
	return fmt.Sprintf("%d.%d", sum, len(fileMeta))
}

func defaultSoftwareAgent() string {
	return fmt.Sprintf("bagr v%s <%s>", constants.Version, constants.SrcURL)
}

func currentDateString() string {
	return time.Now().Format("2006-01-02")
}
