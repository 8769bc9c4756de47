package bagit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pwinckles/bagr/constants"
)

// BagItVersion is a parsed BagIt-Version value. Only 1.0 is supported
// for emission.
type BagItVersion struct {
	Major uint8
	Minor uint8
}

// BagItV1 is the only version this packager writes.
var BagItV1 = BagItVersion{Major: 1, Minor: 0}

func (v BagItVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseBagItVersion parses the literal form "MAJOR.MINOR". Anything else
// is an InvalidBagItVersionError.
func ParseBagItVersion(value string) (BagItVersion, error) {
	major, minor, found := strings.Cut(value, ".")
	if !found {
		return BagItVersion{}, &InvalidBagItVersionError{Value: value}
	}
	majorNum, err := strconv.ParseUint(major, 10, 8)
	if err != nil {
		return BagItVersion{}, &InvalidBagItVersionError{Value: value}
	}
	minorNum, err := strconv.ParseUint(minor, 10, 8)
	if err != nil {
		return BagItVersion{}, &InvalidBagItVersionError{Value: value}
	}
	return BagItVersion{Major: uint8(majorNum), Minor: uint8(minorNum)}, nil
}

// Tag is a single (label, value) pair from a tag file.
type Tag struct {
	Label string
	Value string
}

// NewTag validates and creates a tag. Labels must have no surrounding
// whitespace and no CR or LF; values must have no CR or LF. CR and LF
// only ever appear in serialized form as continuation structure.
func NewTag(label, value string) (Tag, error) {
	if strings.ContainsAny(label, "\r\n") {
		return Tag{}, &InvalidTagError{Label: label, Details: "labels cannot contain CR or LF characters"}
	}
	if strings.TrimSpace(label) != label {
		return Tag{}, &InvalidTagError{Label: label, Details: "labels cannot have leading or trailing whitespace"}
	}
	if strings.ContainsAny(value, "\r\n") {
		return Tag{}, &InvalidTagError{Label: label, Details: "values cannot contain CR or LF characters"}
	}
	return Tag{Label: label, Value: value}, nil
}

// TagList is an ordered list of tags. Order is preserved across
// read/write round-trips. Label lookups are ASCII-case-insensitive.
type TagList struct {
	tags []Tag
}

// NewTagList creates an empty TagList.
func NewTagList() *TagList {
	return &TagList{}
}

// AddTag validates the label and value and appends the tag.
func (l *TagList) AddTag(label, value string) error {
	tag, err := NewTag(label, value)
	if err != nil {
		return err
	}
	l.tags = append(l.tags, tag)
	return nil
}

// Append adds an already validated tag.
func (l *TagList) Append(tag Tag) {
	l.tags = append(l.tags, tag)
}

// GetTag returns the first tag with the label, case-insensitively.
func (l *TagList) GetTag(label string) (Tag, bool) {
	for _, tag := range l.tags {
		if strings.EqualFold(tag.Label, label) {
			return tag, true
		}
	}
	return Tag{}, false
}

// GetTags returns every tag with the label, case-insensitively, in order.
func (l *TagList) GetTags(label string) []Tag {
	var matched []Tag
	for _, tag := range l.tags {
		if strings.EqualFold(tag.Label, label) {
			matched = append(matched, tag)
		}
	}
	return matched
}

// RemoveTags removes every tag with the label, case-insensitively.
func (l *TagList) RemoveTags(label string) {
	kept := l.tags[:0]
	for _, tag := range l.tags {
		if !strings.EqualFold(tag.Label, label) {
			kept = append(kept, tag)
		}
	}
	l.tags = kept
}

// Tags returns the tags in order. The slice must not be modified.
func (l *TagList) Tags() []Tag {
	return l.tags
}

// Len returns the number of tags.
func (l *TagList) Len() int {
	return len(l.tags)
}

// BagDeclaration is the parsed content of bagit.txt.
type BagDeclaration struct {
	version  BagItVersion
	encoding string
}

// NewBagDeclaration creates the only declaration this packager emits:
// version 1.0 with UTF-8 tag files.
func NewBagDeclaration() *BagDeclaration {
	return &BagDeclaration{
		version:  BagItV1,
		encoding: constants.UTF8,
	}
}

// BagDeclarationFromTagList builds a declaration from the tags read out
// of bagit.txt, rejecting missing tags, malformed or unsupported
// versions, and encodings other than UTF-8.
func BagDeclarationFromTagList(tags *TagList) (*BagDeclaration, error) {
	versionTag, ok := tags.GetTag(constants.LabelBagItVersion)
	if !ok {
		return nil, &MissingTagError{Tag: constants.LabelBagItVersion}
	}
	version, err := ParseBagItVersion(versionTag.Value)
	if err != nil {
		return nil, err
	}
	if version != BagItV1 {
		return nil, &UnsupportedVersionError{Version: version}
	}
	encodingTag, ok := tags.GetTag(constants.LabelFileEncoding)
	if !ok {
		return nil, &MissingTagError{Tag: constants.LabelFileEncoding}
	}
	if encodingTag.Value != constants.UTF8 {
		return nil, &UnsupportedEncodingError{Encoding: encodingTag.Value}
	}
	return &BagDeclaration{version: version, encoding: encodingTag.Value}, nil
}

// Version returns the declared BagIt version.
func (d *BagDeclaration) Version() BagItVersion {
	return d.version
}

// Encoding returns the declared tag file encoding.
func (d *BagDeclaration) Encoding() string {
	return d.encoding
}

// ToTagList serializes the declaration as the two bagit.txt tags, in the
// order the RFC specifies them.
func (d *BagDeclaration) ToTagList() *TagList {
	tags := NewTagList()
	tags.Append(Tag{Label: constants.LabelBagItVersion, Value: d.version.String()})
	tags.Append(Tag{Label: constants.LabelFileEncoding, Value: d.encoding})
	return tags
}

// BagInfo wraps the bag-info.txt tag list with typed accessors for the
// reserved labels. Setters for non-repeatable labels replace any prior
// entry; setters for repeatable labels append.
type BagInfo struct {
	tags *TagList
}

// NewBagInfo creates an empty BagInfo.
func NewBagInfo() *BagInfo {
	return &BagInfo{tags: NewTagList()}
}

// BagInfoFromTagList wraps an existing tag list.
func BagInfoFromTagList(tags *TagList) *BagInfo {
	return &BagInfo{tags: tags}
}

// Tags returns the underlying tag list.
func (b *BagInfo) Tags() *TagList {
	return b.tags
}

// BaggingDate returns the Bagging-Date value, if set.
func (b *BagInfo) BaggingDate() (string, bool) {
	return b.getValue(constants.LabelBaggingDate)
}

// SoftwareAgent returns the Bag-Software-Agent value, if set.
func (b *BagInfo) SoftwareAgent() (string, bool) {
	return b.getValue(constants.LabelSoftwareAgent)
}

// PayloadOxum returns the Payload-Oxum value, if set.
func (b *BagInfo) PayloadOxum() (string, bool) {
	return b.getValue(constants.LabelPayloadOxum)
}

// SetBaggingDate replaces the Bagging-Date tag.
func (b *BagInfo) SetBaggingDate(value string) error {
	return b.replaceTag(constants.LabelBaggingDate, value)
}

// SetPayloadOxum replaces the Payload-Oxum tag.
func (b *BagInfo) SetPayloadOxum(value string) error {
	return b.replaceTag(constants.LabelPayloadOxum, value)
}

// SetSoftwareAgent replaces the Bag-Software-Agent tag.
func (b *BagInfo) SetSoftwareAgent(value string) error {
	return b.replaceTag(constants.LabelSoftwareAgent, value)
}

// SetBagSize replaces the Bag-Size tag.
func (b *BagInfo) SetBagSize(value string) error {
	return b.replaceTag(constants.LabelBagSize, value)
}

// SetBagGroupIdentifier replaces the Bag-Group-Identifier tag.
func (b *BagInfo) SetBagGroupIdentifier(value string) error {
	return b.replaceTag(constants.LabelBagGroupIdentifier, value)
}

// SetBagCount replaces the Bag-Count tag.
func (b *BagInfo) SetBagCount(value string) error {
	return b.replaceTag(constants.LabelBagCount, value)
}

// AddSourceOrganization appends a Source-Organization tag.
func (b *BagInfo) AddSourceOrganization(value string) error {
	return b.tags.AddTag(constants.LabelSourceOrganization, value)
}

// AddOrganizationAddress appends an Organization-Address tag.
func (b *BagInfo) AddOrganizationAddress(value string) error {
	return b.tags.AddTag(constants.LabelOrganizationAddress, value)
}

// AddContactName appends a Contact-Name tag.
func (b *BagInfo) AddContactName(value string) error {
	return b.tags.AddTag(constants.LabelContactName, value)
}

// AddContactPhone appends a Contact-Phone tag.
func (b *BagInfo) AddContactPhone(value string) error {
	return b.tags.AddTag(constants.LabelContactPhone, value)
}

// AddContactEmail appends a Contact-Email tag.
func (b *BagInfo) AddContactEmail(value string) error {
	return b.tags.AddTag(constants.LabelContactEmail, value)
}

// AddExternalDescription appends an External-Description tag.
func (b *BagInfo) AddExternalDescription(value string) error {
	return b.tags.AddTag(constants.LabelExternalDescription, value)
}

// AddExternalIdentifier appends an External-Identifier tag.
func (b *BagInfo) AddExternalIdentifier(value string) error {
	return b.tags.AddTag(constants.LabelExternalIdentifier, value)
}

// AddInternalSenderIdentifier appends an Internal-Sender-Identifier tag.
func (b *BagInfo) AddInternalSenderIdentifier(value string) error {
	return b.tags.AddTag(constants.LabelInternalSenderIdentifier, value)
}

// AddInternalSenderDescription appends an Internal-Sender-Description tag.
func (b *BagInfo) AddInternalSenderDescription(value string) error {
	return b.tags.AddTag(constants.LabelInternalSenderDescription, value)
}

// AddBagItProfileIdentifier appends a BagIt-Profile-Identifier tag.
func (b *BagInfo) AddBagItProfileIdentifier(value string) error {
	return b.tags.AddTag(constants.LabelBagItProfileIdentifier, value)
}

// AddTag adds an arbitrary tag, replacing any existing entry when the
// label is a non-repeatable reserved label and appending otherwise.
func (b *BagInfo) AddTag(label, value string) error {
	if !constants.LabelIsRepeatable(label) {
		return b.replaceTag(label, value)
	}
	return b.tags.AddTag(label, value)
}

func (b *BagInfo) getValue(label string) (string, bool) {
	tag, ok := b.tags.GetTag(label)
	if !ok {
		return "", false
	}
	return tag.Value, true
}

func (b *BagInfo) replaceTag(label, value string) error {
	tag, err := NewTag(label, value)
	if err != nil {
		return err
	}
	b.tags.RemoveTags(label)
	b.tags.Append(tag)
	return nil
}
