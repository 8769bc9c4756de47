package bagit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pwinckles/bagr/bagit"
	"github.com/pwinckles/bagr/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePayloadManifestsSortedAndEncoded(t *testing.T) {
	dir := t.TempDir()
	algorithms := []bagit.DigestAlgorithm{bagit.Md5, bagit.Sha256}
	meta := []bagit.FileMeta{
		{
			Path: "data/z.txt",
			Digests: map[bagit.DigestAlgorithm]string{
				bagit.Md5: "aa", bagit.Sha256: "bb",
			},
		},
		{
			Path: "data/a\nb.txt",
			Digests: map[bagit.DigestAlgorithm]string{
				bagit.Md5: "cc", bagit.Sha256: "dd",
			},
		},
		{
			Path: "data/100%.txt",
			Digests: map[bagit.DigestAlgorithm]string{
				bagit.Md5: "ee", bagit.Sha256: "ff",
			},
		},
	}

	require.Nil(t, bagit.WritePayloadManifests(algorithms, meta, dir))

	assert.Equal(t,
		"ee  data/100%25.txt\n"+
			"cc  data/a%0Ab.txt\n"+
			"aa  data/z.txt\n",
		testutil.ReadFile(t, filepath.Join(dir, "manifest-md5.txt")))
	assert.Equal(t,
		"ff  data/100%25.txt\n"+
			"dd  data/a%0Ab.txt\n"+
			"bb  data/z.txt\n",
		testutil.ReadFile(t, filepath.Join(dir, "manifest-sha256.txt")))
}

func TestWriteTagManifests(t *testing.T) {
	dir := t.TempDir()
	meta := []bagit.FileMeta{
		{Path: "bagit.txt", Digests: map[bagit.DigestAlgorithm]string{bagit.Sha512: "11"}},
		{Path: "bag-info.txt", Digests: map[bagit.DigestAlgorithm]string{bagit.Sha512: "22"}},
	}

	require.Nil(t, bagit.WriteTagManifests([]bagit.DigestAlgorithm{bagit.Sha512}, meta, dir))

	assert.Equal(t, "22  bag-info.txt\n11  bagit.txt\n",
		testutil.ReadFile(t, filepath.Join(dir, "tagmanifest-sha512.txt")))
}

func TestReadManifestToleratesProducerVariants(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest-sha256.txt")
	content := "aaaa  data/two-spaces.txt\n" +
		"bbbb data/one-space.txt\n" +
		"cccc *data/binary-marker.txt\n" +
		"dddd\tdata/tab.txt\n" +
		"eeee  ./data/dot-slash.txt\n" +
		"ffff  data/enc%0Aoded.txt\n"
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))

	manifestEntries, err := bagit.ReadManifest(path)
	require.Nil(t, err)
	require.Len(t, manifestEntries, 6)

	assert.Equal(t, bagit.ManifestEntry{Digest: "aaaa", Path: "data/two-spaces.txt"}, manifestEntries[0])
	assert.Equal(t, bagit.ManifestEntry{Digest: "bbbb", Path: "data/one-space.txt"}, manifestEntries[1])
	assert.Equal(t, bagit.ManifestEntry{Digest: "cccc", Path: "data/binary-marker.txt"}, manifestEntries[2])
	assert.Equal(t, bagit.ManifestEntry{Digest: "dddd", Path: "data/tab.txt"}, manifestEntries[3])
	assert.Equal(t, bagit.ManifestEntry{Digest: "eeee", Path: "data/dot-slash.txt"}, manifestEntries[4])
	assert.Equal(t, bagit.ManifestEntry{Digest: "ffff", Path: "data/enc\noded.txt"}, manifestEntries[5])
}

func TestReadManifestRejectsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest-sha256.txt")

	require.Nil(t, os.WriteFile(path, []byte("aaaa  data/ok.txt\njust-a-digest\n"), 0644))
	_, err := bagit.ReadManifest(path)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 2")

	require.Nil(t, os.WriteFile(path, []byte("aaaa  \n"), 0644))
	_, err = bagit.ReadManifest(path)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing a path")
}

func TestReadManifestRejectsUnrecognizedEscapes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest-sha256.txt")

	for _, bad := range []string{
		"aaaa  data/100%zz.txt\n",
		"aaaa  data/ok.txt\nbbbb  data/trailing%2\n",
		"cccc  data/%\n",
	} {
		require.Nil(t, os.WriteFile(path, []byte(bad), 0644))
		_, err := bagit.ReadManifest(path)
		require.NotNil(t, err, bad)
		assert.Contains(t, err.Error(), "does not begin %0D, %0A, or %25", bad)
	}

	// The recognized pairs are still fine in any case.
	require.Nil(t, os.WriteFile(path, []byte("dddd  data/a%0d%0A%25.txt\n"), 0644))
	manifestEntries, err := bagit.ReadManifest(path)
	require.Nil(t, err)
	require.Len(t, manifestEntries, 1)
	assert.Equal(t, "data/a\r\n%.txt", manifestEntries[0].Path)
}

func TestAlgorithmFromManifestName(t *testing.T) {
	algorithm, ok := bagit.AlgorithmFromManifestName("manifest-sha256.txt")
	require.True(t, ok)
	assert.Equal(t, bagit.Sha256, algorithm)

	algorithm, ok = bagit.AlgorithmFromManifestName("tagmanifest-MD5.txt")
	require.True(t, ok)
	assert.Equal(t, bagit.Md5, algorithm)

	_, ok = bagit.AlgorithmFromManifestName("manifest-unknownalg.txt")
	assert.False(t, ok)
	_, ok = bagit.AlgorithmFromManifestName("bagit.txt")
	assert.False(t, ok)
}
