// Common values shared by the bagit library and the bagr command-line tool.
package constants

import (
	"regexp"
	"strings"
)

// Version is the bagr release this build identifies itself as in the
// default Bag-Software-Agent tag.
const Version = "0.3.0"

// SrcURL is where to find this packager. It is embedded in the default
// Bag-Software-Agent tag.
const SrcURL = "https://github.com/pwinckles/bagr"

// ManifestFileRegex matches payload manifest file names, such as
// "manifest-sha256.txt". The first capture group is the algorithm token.
var ManifestFileRegex = regexp.MustCompile(`^manifest-([A-Za-z0-9]+)\.txt$`)

// TagManifestFileRegex matches tag manifest file names, such as
// "tagmanifest-sha256.txt". The first capture group is the algorithm token.
var TagManifestFileRegex = regexp.MustCompile(`^tagmanifest-([A-Za-z0-9]+)\.txt$`)

// Well-known file and directory names within a bag.
const (
	BagItTxt          = "bagit.txt"
	BagInfoTxt        = "bag-info.txt"
	FetchTxt          = "fetch.txt"
	DataDir           = "data"
	ManifestPrefix    = "manifest"
	TagManifestPrefix = "tagmanifest"
)

// Tag labels required in bagit.txt.
const (
	LabelBagItVersion = "BagIt-Version"
	LabelFileEncoding = "Tag-File-Character-Encoding"
)

// UTF8 is the only tag file encoding this packager reads or writes.
const UTF8 = "UTF-8"

// Reserved bag-info.txt labels from RFC 8493 section 2.2.2.
const (
	LabelBaggingDate               = "Bagging-Date"
	LabelPayloadOxum               = "Payload-Oxum"
	LabelSoftwareAgent             = "Bag-Software-Agent"
	LabelBagSize                   = "Bag-Size"
	LabelBagGroupIdentifier        = "Bag-Group-Identifier"
	LabelBagCount                  = "Bag-Count"
	LabelSourceOrganization        = "Source-Organization"
	LabelOrganizationAddress       = "Organization-Address"
	LabelContactName               = "Contact-Name"
	LabelContactPhone              = "Contact-Phone"
	LabelContactEmail              = "Contact-Email"
	LabelExternalDescription       = "External-Description"
	LabelExternalIdentifier        = "External-Identifier"
	LabelInternalSenderIdentifier  = "Internal-Sender-Identifier"
	LabelInternalSenderDescription = "Internal-Sender-Description"
	LabelBagItProfileIdentifier    = "BagIt-Profile-Identifier"
)

// BufferSize is the read buffer size used when scanning tag files.
const BufferSize = 8 * 1024

// labelRepeatable says whether a reserved bag-info label may appear more
// than once. Keys are lowercased.
var labelRepeatable = map[string]bool{
	"bagging-date":                false,
	"payload-oxum":                false,
	"bag-software-agent":          false,
	"bag-size":                    false,
	"bag-group-identifier":        false,
	"bag-count":                   false,
	"source-organization":         true,
	"organization-address":        true,
	"contact-name":                true,
	"contact-phone":               true,
	"contact-email":               true,
	"external-description":        true,
	"external-identifier":         true,
	"internal-sender-identifier":  true,
	"internal-sender-description": true,
	"bagit-profile-identifier":    true,
}

// LabelIsRepeatable returns whether the label may appear more than once
// in bag-info.txt. Comparison is case-insensitive. Labels that are not
// reserved are always repeatable.
func LabelIsRepeatable(label string) bool {
	repeatable, ok := labelRepeatable[strings.ToLower(label)]
	if !ok {
		return true
	}
	return repeatable
}
