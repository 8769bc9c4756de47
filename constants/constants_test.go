package constants_test

import (
	"testing"

	"github.com/pwinckles/bagr/constants"
	"github.com/stretchr/testify/assert"
)

func TestManifestFileRegex(t *testing.T) {
	match := constants.ManifestFileRegex.FindStringSubmatch("manifest-sha256.txt")
	assert.Equal(t, "sha256", match[1])

	match = constants.ManifestFileRegex.FindStringSubmatch("manifest-BLAKE2b512.txt")
	assert.Equal(t, "BLAKE2b512", match[1])

	assert.Nil(t, constants.ManifestFileRegex.FindStringSubmatch("tagmanifest-sha256.txt"))
	assert.Nil(t, constants.ManifestFileRegex.FindStringSubmatch("manifest-sha-256.txt"))
	assert.Nil(t, constants.ManifestFileRegex.FindStringSubmatch("manifest-sha256.txt.bak"))
	assert.Nil(t, constants.ManifestFileRegex.FindStringSubmatch("xmanifest-sha256.txt"))
}

func TestTagManifestFileRegex(t *testing.T) {
	match := constants.TagManifestFileRegex.FindStringSubmatch("tagmanifest-md5.txt")
	assert.Equal(t, "md5", match[1])

	assert.Nil(t, constants.TagManifestFileRegex.FindStringSubmatch("manifest-md5.txt"))
}

func TestLabelIsRepeatable(t *testing.T) {
	assert.False(t, constants.LabelIsRepeatable("Bagging-Date"))
	assert.False(t, constants.LabelIsRepeatable("payload-oxum"))
	assert.False(t, constants.LabelIsRepeatable("BAG-SOFTWARE-AGENT"))
	assert.False(t, constants.LabelIsRepeatable("Bag-Size"))
	assert.False(t, constants.LabelIsRepeatable("Bag-Group-Identifier"))
	assert.False(t, constants.LabelIsRepeatable("Bag-Count"))

	assert.True(t, constants.LabelIsRepeatable("Contact-Name"))
	assert.True(t, constants.LabelIsRepeatable("source-organization"))
	assert.True(t, constants.LabelIsRepeatable("BagIt-Profile-Identifier"))

	// Labels we know nothing about may repeat.
	assert.True(t, constants.LabelIsRepeatable("X-Custom-Label"))
}
