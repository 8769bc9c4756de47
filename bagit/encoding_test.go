package bagit_test

import (
	"testing"

	"github.com/pwinckles/bagr/bagit"
	"github.com/stretchr/testify/assert"
)

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "a\tbc%25123%0Dqwe%0A%25%25asd%0D%0A !",
		bagit.PercentEncode("a\tbc%123\rqwe\n%%asd\r\n !"))
	assert.Equal(t, "nothing to see here", bagit.PercentEncode("nothing to see here"))
	assert.Equal(t, "", bagit.PercentEncode(""))

	// Spaces, tabs, Unicode, and path separators pass through untouched.
	assert.Equal(t, "data/päck age\t.txt", bagit.PercentEncode("data/päck age\t.txt"))
}

func TestPercentDecode(t *testing.T) {
	assert.Equal(t, "a\tbc%123\rqwe\n%%asd\r\n !",
		bagit.PercentDecode("a\tbc%25123%0Dqwe%0A%25%25asd%0D%0A !"))
	assert.Equal(t, "nothing to see here", bagit.PercentDecode("nothing to see here"))

	// Unrecognized escapes pass through; the manifest reader polices format.
	assert.Equal(t, "100%", bagit.PercentDecode("100%"))
	assert.Equal(t, "%zz", bagit.PercentDecode("%zz"))
}

func TestPercentEncodeRoundTrip(t *testing.T) {
	inputs := []string{
		"plain",
		"with\rcr",
		"with\nlf",
		"with%percent",
		"dir\r\nwith%everything\r\n/file.txt",
		"%%%\r\n\r\n",
	}
	for _, input := range inputs {
		assert.Equal(t, input, bagit.PercentDecode(bagit.PercentEncode(input)), input)
	}
}
