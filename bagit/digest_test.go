package bagit_test

import (
	"io"
	"strings"
	"testing"

	"github.com/pwinckles/bagr/bagit"
	_ "github.com/pwinckles/bagr/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiDigestWriter(t *testing.T) {
	algorithms := []bagit.DigestAlgorithm{
		bagit.Md5, bagit.Sha1, bagit.Sha256, bagit.Sha512,
		bagit.Blake2b256, bagit.Blake2b512,
	}
	writer := bagit.NewMultiDigestWriter(algorithms)
	_, err := io.Copy(writer, strings.NewReader("hi\n"))
	require.Nil(t, err)

	digests := writer.FinalizeHex()
	assert.Equal(t, "764efa883dda1e11db47671c4a3bbd9e", digests[bagit.Md5])
	assert.Equal(t, "55ca6286e3e4f4fba5d0448333fa99fc5a404a73", digests[bagit.Sha1])
	assert.Equal(t, "98ea6e4f216f2fb4b69fff9b3a44842c38686ca685f3f55dc48c5d3fb1107be4", digests[bagit.Sha256])
	assert.Equal(t, "d78abb0542736865f94704521609c230dac03a2f369d043ac212d6933b91410e"+
		"06399e37f9c5cc88436a31737330c1c8eccb2c2f9f374d62f716432a32d50fac", digests[bagit.Sha512])
	assert.Equal(t, "de9543b2ae1b2b87434a730727db17f5ac8b8c020b84a5cb8c5fbcc1423443ba", digests[bagit.Blake2b256])
	assert.Equal(t, "7ea59e7a000ec003846b6607dfd5f9217b681dc1a81b0789b464c3995105d930"+
		"83f7f0a86fca01a1bed27e9f9303ae58d01746e3b20443480bea56198e65bfc5", digests[bagit.Blake2b512])
}

func TestMultiDigestWriterEmptyInput(t *testing.T) {
	writer := bagit.NewMultiDigestWriter([]bagit.DigestAlgorithm{bagit.Sha256})
	digests := writer.FinalizeHex()
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		digests[bagit.Sha256])
}

func TestAlgorithmFromString(t *testing.T) {
	algorithm, err := bagit.AlgorithmFromString("sha256")
	require.Nil(t, err)
	assert.Equal(t, bagit.Sha256, algorithm)

	algorithm, err = bagit.AlgorithmFromString("SHA512")
	require.Nil(t, err)
	assert.Equal(t, bagit.Sha512, algorithm)

	algorithm, err = bagit.AlgorithmFromString("Blake2b256")
	require.Nil(t, err)
	assert.Equal(t, bagit.Blake2b256, algorithm)

	_, err = bagit.AlgorithmFromString("sha3")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown digest algorithm 'sha3'")
}

func TestSortAlgorithms(t *testing.T) {
	sorted := bagit.SortAlgorithms([]bagit.DigestAlgorithm{
		bagit.Sha512, bagit.Md5, bagit.Sha512, bagit.Blake2b256, bagit.Md5,
	})
	assert.Equal(t, []bagit.DigestAlgorithm{bagit.Blake2b256, bagit.Md5, bagit.Sha512}, sorted)

	assert.Empty(t, bagit.SortAlgorithms(nil))
}
