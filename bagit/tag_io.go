package bagit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"

	"github.com/pwinckles/bagr/constants"
)

var log = logging.MustGetLogger("bagit")

// ParseTagLine splits a logical tag line into a Tag. The line must have
// the shape `LABEL ":" WS VALUE` where WS is exactly one space or tab.
// The label is taken verbatim; NewTag enforces its validity rules.
func ParseTagLine(line string) (Tag, error) {
	label, rest, found := strings.Cut(line, ":")
	if !found {
		return Tag{}, &InvalidTagLineError{Details: fmt.Sprintf("missing colon in '%s'", line)}
	}
	if len(rest) == 0 || (rest[0] != ' ' && rest[0] != '\t') {
		return Tag{}, &InvalidTagLineError{
			Details: fmt.Sprintf("colon must be followed by a space or tab in '%s'", line),
		}
	}
	return NewTag(label, rest[1:])
}

// WriteTagFile serializes the tags to destination, one `LABEL: VALUE`
// line each, LF terminated, with no trailing blank line.
func WriteTagFile(tags *TagList, destination string) error {
	log.Infof("Writing tag file %s", destination)

	file, err := os.Create(destination)
	if err != nil {
		return &IOError{Op: IOCreate, Path: destination, Err: err}
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, tag := range tags.Tags() {
		if _, err := fmt.Fprintf(writer, "%s: %s\n", tag.Label, tag.Value); err != nil {
			return &IOError{Op: IOWrite, Path: destination, Err: err}
		}
	}
	if err := writer.Flush(); err != nil {
		return &IOError{Op: IOWrite, Path: destination, Err: err}
	}
	if err := file.Close(); err != nil {
		return &IOError{Op: IOWrite, Path: destination, Err: err}
	}
	return nil
}

// ReadTagFile reads a tag file into a TagList, folding continuation
// lines. Grammar and validation failures are reported with the file path
// and the 1-based logical line number.
func ReadTagFile(path string) (*TagList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: IORead, Path: path, Err: err}
	}
	defer file.Close()

	tags := NewTagList()
	reader := NewTagLineReader(file)
	num := 0

	for {
		line, err := reader.ReadTagLine()
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
		tag, err := ParseTagLine(line)
		if err != nil {
			return nil, promoteTagLineError(err, path, num)
		}
		tags.Append(tag)
	}

	return tags, nil
}

// promoteTagLineError attaches the file path and line number to a tag
// parsing failure, preserving the original detail message.
func promoteTagLineError(err error, path string, num int) error {
	switch e := err.(type) {
	case *InvalidTagLineError:
		return &InvalidTagLineRefError{Path: path, Num: num, Details: e.Details}
	case *InvalidTagError:
		return &InvalidTagLineRefError{Path: path, Num: num, Details: e.Error()}
	}
	return err
}

// WriteBagDeclaration writes bagit.txt into baseDir.
func WriteBagDeclaration(declaration *BagDeclaration, baseDir string) error {
	return WriteTagFile(declaration.ToTagList(), filepath.Join(baseDir, constants.BagItTxt))
}

// ReadBagDeclaration reads and validates bagit.txt from baseDir.
func ReadBagDeclaration(baseDir string) (*BagDeclaration, error) {
	tags, err := ReadTagFile(filepath.Join(baseDir, constants.BagItTxt))
	if err != nil {
		return nil, err
	}
	return BagDeclarationFromTagList(tags)
}

// WriteBagInfo writes bag-info.txt into baseDir.
func WriteBagInfo(info *BagInfo, baseDir string) error {
	return WriteTagFile(info.Tags(), filepath.Join(baseDir, constants.BagInfoTxt))
}

// ReadBagInfo reads bag-info.txt from baseDir. A missing file yields an
// empty BagInfo; bags are not required to carry one.
func ReadBagInfo(baseDir string) (*BagInfo, error) {
	path := filepath.Join(baseDir, constants.BagInfoTxt)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewBagInfo(), nil
	}
	tags, err := ReadTagFile(path)
	if err != nil {
		return nil, err
	}
	return BagInfoFromTagList(tags), nil
}
