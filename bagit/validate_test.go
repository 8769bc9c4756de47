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

func issueMessages(result *bagit.ValidationResult) []string {
	messages := make([]string, 0, len(result.Issues()))
	for _, issue := range result.Issues() {
		messages = append(messages, issue.Message)
	}
	return messages
}

func TestValidateFreshBag(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{
		"a.txt":     "hi\n",
		"sub/b.txt": "hello world\n",
	}, bagit.Sha256, bagit.Md5)

	result, err := bagit.ValidateBag(dir, true)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictValid, result.Verdict())
	assert.Empty(t, result.Issues())
}

func TestValidateCompletenessOnly(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)

	// Corrupt the payload. Without an integrity check the bag is still
	// complete, because the file the manifest names exists.
	require.Nil(t, os.WriteFile(filepath.Join(dir, "data", "a.txt"), []byte("tampered"), 0644))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictComplete, result.Verdict())
	assert.Empty(t, result.Issues())
}

func TestValidateDetectsCorruptPayload(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "data", "a.txt"), []byte("tampered"), 0644))

	result, err := bagit.ValidateBag(dir, true)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())

	messages := issueMessages(result)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "sha256 checksum of data/a.txt does not match")
	assert.Contains(t, messages[0], hiSha256)
}

func TestValidateMissingDeclaration(t *testing.T) {
	dir := t.TempDir()
	testutil.MakeSourceTree(t, dir, map[string]string{"data/a.txt": "hi\n"})

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	assert.Equal(t, []string{"bagit.txt does not exist"}, issueMessages(result))
}

func TestValidateUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	testutil.MakeSourceTree(t, dir, map[string]string{
		"bagit.txt": "BagIt-Version: 0.97\nTag-File-Character-Encoding: UTF-8\n",
	})

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	assert.Equal(t, []string{"bagit.txt declares unsupported version 0.97"}, issueMessages(result))
}

func TestValidateMissingPayloadFile(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n", "b.txt": "hi\n"}, bagit.Sha256)
	require.Nil(t, os.Remove(filepath.Join(dir, "data", "b.txt")))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	assert.Contains(t, issueMessages(result),
		"manifest-sha256.txt references data/b.txt, which does not exist")
}

func TestValidateUnlistedPayloadFile(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "data", "extra.txt"), []byte("hi\n"), 0644))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	assert.Contains(t, issueMessages(result),
		"data/extra.txt is not listed in manifest-sha256.txt")
}

func TestValidateNoPayloadManifests(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)
	require.Nil(t, os.Remove(filepath.Join(dir, "manifest-sha256.txt")))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	messages := issueMessages(result)
	assert.Contains(t, messages, "bag has no payload manifests")
	// The tag manifest still references the deleted payload manifest.
	assert.Contains(t, messages,
		"tagmanifest-sha256.txt references manifest-sha256.txt, which does not exist")
}

func TestValidateUnknownAlgorithmWarns(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "manifest-unknownalg.txt"),
		[]byte("aaaa  data/a.txt\n"), 0644))

	result, err := bagit.ValidateBag(dir, true)
	require.Nil(t, err)

	// An unverifiable manifest is a warning, not a blocker.
	assert.Equal(t, bagit.VerdictValid, result.Verdict())
	require.Len(t, result.Issues(), 1)
	assert.Equal(t, bagit.IssueWarn, result.Issues()[0].Level)
	assert.Contains(t, result.Issues()[0].Message, "manifest-unknownalg.txt")
}

func TestValidateRepeatedNonRepeatableLabel(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)

	infoPath := filepath.Join(dir, "bag-info.txt")
	info := testutil.ReadFile(t, infoPath)
	require.Nil(t, os.WriteFile(infoPath,
		[]byte(info+"Payload-Oxum: 3.1\n"), 0644))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)

	// A repeated non-repeatable label is a warning. The edited
	// bag-info.txt no longer matches its tag manifest digest, but that
	// only surfaces with an integrity check.
	assert.Equal(t, bagit.VerdictComplete, result.Verdict())
	require.Len(t, result.Issues(), 1)
	assert.Equal(t, bagit.IssueWarn, result.Issues()[0].Level)
	assert.Contains(t, result.Issues()[0].Message, "payload-oxum")
}

func TestValidateManifestEscapesPayload(t *testing.T) {
	dir, _ := makeBag(t, map[string]string{"a.txt": "hi\n"}, bagit.Sha256)

	manifestPath := filepath.Join(dir, "manifest-sha256.txt")
	manifest := testutil.ReadFile(t, manifestPath)
	require.Nil(t, os.WriteFile(manifestPath,
		[]byte(manifest+hiSha256+"  bagit.txt\n"), 0644))

	result, err := bagit.ValidateBag(dir, false)
	require.Nil(t, err)
	assert.Equal(t, bagit.VerdictInvalid, result.Verdict())
	assert.Contains(t, issueMessages(result),
		"manifest-sha256.txt references bagit.txt, which is outside the payload")
}

func TestVerdictStrings(t *testing.T) {
	assert.Equal(t, "valid", bagit.VerdictValid.String())
	assert.Equal(t, "complete", bagit.VerdictComplete.String())
	assert.Equal(t, "invalid", bagit.VerdictInvalid.String())
}
