package memento

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
)

func ranges() []model.VersionRange {
	return []model.VersionRange{
		{From: time.UnixMilli(3000), Until: time.UnixMilli(4000)},
		{From: time.UnixMilli(1000), Until: time.UnixMilli(2000)},
		{From: time.UnixMilli(2000), Until: time.UnixMilli(3000)},
	}
}

func TestNewSortsOldestFirst(t *testing.T) {
	e := New("http://example.org/r", ranges())
	require.Len(t, e.Mementos, 3)
	assert.Equal(t, time.UnixMilli(1000), e.Mementos[0].From)
	assert.Equal(t, time.UnixMilli(2000), e.Mementos[1].From)
	assert.Equal(t, time.UnixMilli(3000), e.Mementos[2].From)
}

func TestFindByDatetimeExactIntervalMatch(t *testing.T) {
	e := New("http://example.org/r", ranges())
	vr, err := e.FindByDatetime(time.UnixMilli(2500))
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(2000), vr.From)
}

func TestFindByDatetimeClosestPreceding(t *testing.T) {
	e := New("http://example.org/r", ranges())
	vr, err := e.FindByDatetime(time.UnixMilli(3500))
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(3000), vr.From)
}

func TestFindByDatetimeBeforeEarliestIsNotFound(t *testing.T) {
	e := New("http://example.org/r", ranges())
	_, err := e.FindByDatetime(time.UnixMilli(500))
	assert.Error(t, err)
}

func TestFindByDatetimeEmptyHistoryIsNotFound(t *testing.T) {
	e := New("http://example.org/r", nil)
	_, err := e.FindByDatetime(time.UnixMilli(1000))
	assert.Error(t, err)
}

func TestTimeMapLinksMatchesLiteralScenario(t *testing.T) {
	e := New("http://example.org/a/b", []model.VersionRange{
		{From: time.UnixMilli(1000), Until: time.UnixMilli(2000)},
		{From: time.UnixMilli(2000), Until: time.UnixMilli(3000)},
	})
	links := e.TimeMapLinks()
	require.Len(t, links, 4)
	assert.Equal(t, `<http://example.org/a/b>; rel="original timegate"`, links[0])
	assert.Equal(t, `<http://example.org/a/b?version=1000>; rel="memento"; datetime="Thu, 01 Jan 1970 00:00:01 GMT"`, links[1])
	assert.Equal(t, `<http://example.org/a/b?version=2000>; rel="memento"; datetime="Thu, 01 Jan 1970 00:00:02 GMT"`, links[2])
	assert.Contains(t, links[3], `rel="timemap"; type="application/link-format"`)
}

func TestTimeMapLinksEmptyHistoryOmitsSummary(t *testing.T) {
	e := New("http://example.org/a/b", nil)
	links := e.TimeMapLinks()
	require.Len(t, links, 1)
	assert.Contains(t, links[0], `rel="original timegate"`)
}
