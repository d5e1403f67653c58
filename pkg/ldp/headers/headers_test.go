package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeBasic(t *testing.T) {
	r, err := ParseRange("bytes=0-499")
	require.NoError(t, err)
	assert.Equal(t, ByteRange{Start: 0, End: 499, HasEnd: true}, r)
}

func TestParseRangeOpenEnded(t *testing.T) {
	r, err := ParseRange("bytes=500-")
	require.NoError(t, err)
	assert.Equal(t, ByteRange{Start: 500}, r)
}

func TestParseRangeSuffix(t *testing.T) {
	r, err := ParseRange("bytes=-500")
	require.NoError(t, err)
	assert.True(t, r.Suffix)
	assert.Equal(t, int64(500), r.Start)
}

func TestParseRangeRejectsMultiRange(t *testing.T) {
	_, err := ParseRange("bytes=0-50,100-150")
	assert.Error(t, err)
}

func TestParseRangeRejectsNonBytesUnit(t *testing.T) {
	_, err := ParseRange("items=0-5")
	assert.Error(t, err)
}

func TestParseRangeRejectsInvertedRange(t *testing.T) {
	_, err := ParseRange("bytes=500-100")
	assert.Error(t, err)
}

func TestByteRangeNotSatisfiableWhenStartBeyondSize(t *testing.T) {
	r, err := ParseRange("bytes=1000-1500")
	require.NoError(t, err)
	assert.True(t, r.RangeNotSatisfiable(100))
}

func TestByteRangeSuffixNeverUnsatisfiable(t *testing.T) {
	r, err := ParseRange("bytes=-5000")
	require.NoError(t, err)
	assert.False(t, r.RangeNotSatisfiable(100))
}

func TestByteRangeResolveClampsOverlongEnd(t *testing.T) {
	r, err := ParseRange("bytes=0-999999")
	require.NoError(t, err)
	start, end := r.Resolve(100)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(99), end)
}

func TestByteRangeResolveSuffixClampsToZero(t *testing.T) {
	r, err := ParseRange("bytes=-5000")
	require.NoError(t, err)
	start, end := r.Resolve(100)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(99), end)
}

func TestParseWantDigestOrdersByQValue(t *testing.T) {
	algs, err := ParseWantDigest("md5;q=0.3, sha-256;q=1.0, sha;q=0")
	require.NoError(t, err)
	require.Len(t, algs, 2)
	assert.Equal(t, "sha-256", algs[0].Name)
	assert.Equal(t, "md5", algs[1].Name)
}

func TestParseWantDigestEmptyIsNil(t *testing.T) {
	algs, err := ParseWantDigest("")
	require.NoError(t, err)
	assert.Nil(t, algs)
}

func TestParseWantDigestRejectsInvalidQ(t *testing.T) {
	_, err := ParseWantDigest("md5;q=7")
	assert.Error(t, err)
}

func TestParseDigestValues(t *testing.T) {
	d, err := ParseDigest("md5=abc123, sha-256=def456")
	require.NoError(t, err)
	assert.Equal(t, "abc123", d.Values["MD5"])
	assert.Equal(t, "def456", d.Values["SHA-256"])
}

func TestParseDigestSkipsMalformedEntries(t *testing.T) {
	d, err := ParseDigest("garbage, md5=abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", d.Values["MD5"])
}

func TestParseDigestAllMalformedIsBadRequest(t *testing.T) {
	_, err := ParseDigest("garbage-with-no-equals")
	assert.Error(t, err)
}

func TestParsePreferReturnMinimal(t *testing.T) {
	p, err := ParsePrefer("return=minimal")
	require.NoError(t, err)
	assert.True(t, p.WantsMinimal())
	assert.False(t, p.WantsRepresentation())
}

func TestParsePreferHandlingAndWait(t *testing.T) {
	p, err := ParsePrefer(`handling=lenient; wait=30; respond-async`)
	require.NoError(t, err)
	assert.Equal(t, "lenient", p.Handling)
	assert.Equal(t, 30, p.Wait)
	assert.True(t, p.HasWait)
	assert.True(t, p.Flags["respond-async"])
}

func TestParsePreferIncludeOmitLists(t *testing.T) {
	p, err := ParsePrefer(`include="http://a/b http://c/d"; omit="http://e/f"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a/b", "http://c/d"}, p.Include)
	assert.Equal(t, []string{"http://e/f"}, p.Omit)
}

func TestParsePreferInvalidWaitIsError(t *testing.T) {
	_, err := ParsePrefer("wait=not-a-number")
	assert.Error(t, err)
}

func TestParsePreferEmptyIsZeroValue(t *testing.T) {
	p, err := ParsePrefer("")
	require.NoError(t, err)
	assert.False(t, p.WantsMinimal())
	assert.False(t, p.HasWait)
}
