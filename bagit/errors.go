package bagit

import "fmt"

// IOOp identifies the filesystem operation that failed in an IOError.
type IOOp string

const (
	IOCreate  IOOp = "create"
	IOWrite   IOOp = "write"
	IORead    IOOp = "read"
	IOReadDir IOOp = "readdir"
	IODelete  IOOp = "delete"
	IOStat    IOOp = "stat"
)

// IOError wraps a failed filesystem operation on a single path.
type IOError struct {
	Op   IOOp
	Path string
	Err  error
}

func (e *IOError) Error() string {
	switch e.Op {
	case IOCreate:
		return fmt.Sprintf("Error creating file %s: %v", e.Path, e.Err)
	case IOWrite:
		return fmt.Sprintf("Error writing to file %s: %v", e.Path, e.Err)
	case IORead:
		return fmt.Sprintf("Error reading file %s: %v", e.Path, e.Err)
	case IOReadDir:
		return fmt.Sprintf("Error reading directory %s: %v", e.Path, e.Err)
	case IODelete:
		return fmt.Sprintf("Failed to delete %s: %v", e.Path, e.Err)
	case IOStat:
		return fmt.Sprintf("Failed to stat %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("IO error on %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// MoveError wraps a failed file move.
type MoveError struct {
	From string
	To   string
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("Failed to move %s to %s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// CopyError wraps a failed file copy.
type CopyError struct {
	From string
	To   string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("Failed to copy %s to %s: %v", e.From, e.To, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// WalkError wraps a failed directory walk iteration.
type WalkError struct {
	Err error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("Error walking files: %v", e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }

// UnsupportedFileError is returned when the source tree contains an entry
// that is neither a regular file nor a directory, such as a symlink or a
// device node.
type UnsupportedFileError struct {
	Path string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("Encountered an unsupported file type at %s", e.Path)
}

// InvalidTagLineError indicates a line that does not conform to the
// `LABEL: VALUE` tag grammar.
type InvalidTagLineError struct {
	Details string
}

func (e *InvalidTagLineError) Error() string {
	return fmt.Sprintf("Invalid tag line: %s", e.Details)
}

// InvalidTagLineRefError is an InvalidTagLineError promoted with the file
// and 1-based logical line number it came from.
type InvalidTagLineRefError struct {
	Path    string
	Num     int
	Details string
}

func (e *InvalidTagLineRefError) Error() string {
	return fmt.Sprintf("Tag number %d in file %s is invalid: %s", e.Num, e.Path, e.Details)
}

// InvalidTagError indicates a tag label or value that failed validation.
type InvalidTagError struct {
	Label   string
	Details string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("Invalid tag with label '%s': %s", e.Label, e.Details)
}

// InvalidBagItVersionError indicates a version string that does not parse
// as MAJOR.MINOR.
type InvalidBagItVersionError struct {
	Value string
}

func (e *InvalidBagItVersionError) Error() string {
	return fmt.Sprintf("Invalid BagIt version: %s", e.Value)
}

// MissingTagError indicates a required tag was absent.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("Missing required tag %s", e.Tag)
}

// UnsupportedVersionError indicates a declared BagIt version this packager
// does not support.
type UnsupportedVersionError struct {
	Version BagItVersion
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("Unsupported BagIt version %s", e.Version)
}

// UnsupportedEncodingError indicates a declared tag file encoding other
// than UTF-8.
type UnsupportedEncodingError struct {
	Encoding string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("Unsupported file encoding %s", e.Encoding)
}

// InvalidUTF8PathError indicates a filesystem path that cannot be written
// to a manifest because it is not valid UTF-8.
type InvalidUTF8PathError struct {
	Path string
}

func (e *InvalidUTF8PathError) Error() string {
	return fmt.Sprintf("Path is not valid UTF-8: %s", e.Path)
}

// InvalidStringError indicates bytes that could not be decoded as UTF-8.
type InvalidStringError struct {
	Details string
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("Failed to decode string: %s", e.Details)
}
