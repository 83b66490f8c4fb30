package voevent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPacket = `<?xml version="1.0" encoding="UTF-8"?>
<voe:VOEvent xmlns:voe="http://www.ivoa.net/xml/VOEvent/v2.0"
  ivorn="ivo://nvo.caltech/voeventnet/catot#1404" role="observation" version="2.0">
  <Who>
    <Date>2020-01-01T12:00:00Z</Date>
    <AuthorIVORN>ivo://nvo.caltech/voeventnet</AuthorIVORN>
  </Who>
  <What>
    <Param name="mag" value="19.2"/>
  </What>
  <Citations>
    <EventIVORN cite="followup">ivo://nvo.caltech/voeventnet/catot#1403</EventIVORN>
    <EventIVORN cite="supersedes">ivo://nvo.caltech/voeventnet/catot#1402</EventIVORN>
    <Description>Candidate optical transient, earlier detections.</Description>
  </Citations>
</voe:VOEvent>`

func mustParse(t *testing.T, data string) *Packet {
	t.Helper()
	p, err := Parse([]byte(data))
	require.NoError(t, err)
	return p
}

func TestExtractFullPacket(t *testing.T) {
	p := mustParse(t, fullPacket)
	received := time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC)

	row, cites, err := Extract(p, received)
	require.NoError(t, err)

	assert.Equal(t, "ivo://nvo.caltech/voeventnet/catot#1404", row.Ivorn)
	assert.Equal(t, "nvo.caltech/voeventnet/catot", row.Stream)
	assert.Equal(t, "observation", row.Role)
	assert.Equal(t, "2.0", row.Version)
	assert.Equal(t, "ivo://nvo.caltech/voeventnet", row.AuthorIvorn)
	assert.Equal(t, received, row.Received)
	assert.Equal(t, fullPacket, row.XML)

	require.False(t, row.AuthorDatetime.IsZero())
	assert.Equal(t, time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), row.AuthorDatetime.Time)

	require.Len(t, cites, 2)
	assert.Equal(t, "ivo://nvo.caltech/voeventnet/catot#1403", cites[0].RefIvorn)
	assert.Equal(t, "followup", cites[0].CiteType)
	assert.Equal(t, "ivo://nvo.caltech/voeventnet/catot#1402", cites[1].RefIvorn)
	assert.Equal(t, "supersedes", cites[1].CiteType)
	// the Citations block description is shared by every entry
	assert.Equal(t, "Candidate optical transient, earlier detections.", cites[0].Description)
	assert.Equal(t, cites[0].Description, cites[1].Description)
}

func TestExtractDefaultsReceivedToNow(t *testing.T) {
	p := mustParse(t, fullPacket)

	before := time.Now().UTC()
	row, _, err := Extract(p, time.Time{})
	require.NoError(t, err)

	assert.False(t, row.Received.Before(before))
	assert.False(t, row.Received.After(time.Now().UTC()))
	assert.Equal(t, time.UTC, row.Received.Location())
}

func TestExtractMissingIvorn(t *testing.T) {
	p := mustParse(t, `<VOEvent role="test" version="2.0"></VOEvent>`)

	_, _, err := Extract(p, time.Time{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestExtractInvalidRole(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="speculation" version="2.0"></VOEvent>`)

	_, _, err := Extract(p, time.Time{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestExtractIvornWithoutSeparator(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c" role="test" version="2.0"></VOEvent>`)

	_, _, err := Extract(p, time.Time{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestExtractUnparseableWhoDate(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="test" version="2.0">
  <Who><Date>yesterday-ish</Date></Who>
</VOEvent>`)

	_, _, err := Extract(p, time.Time{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestExtractNaiveWhoDateTreatedAsUTC(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="test" version="2.0">
  <Who><Date>2015-06-26T13:25:00</Date></Who>
</VOEvent>`)

	row, _, err := Extract(p, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 6, 26, 13, 25, 0, 0, time.UTC), row.AuthorDatetime.Time)
}

func TestExtractMissingWhoIsNotAnError(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="utility" version="2.0"></VOEvent>`)

	row, cites, err := Extract(p, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, row.AuthorIvorn)
	assert.True(t, row.AuthorDatetime.IsZero())
	assert.Empty(t, cites)
}

func TestExtractNoCitationsYieldsEmptyList(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="observation" version="2.0"></VOEvent>`)

	_, cites, err := Extract(p, time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, cites)
	assert.Len(t, cites, 0)
}

func TestExtractSkipsEmptyCitations(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="observation" version="2.0">
  <Citations>
    <EventIVORN cite="followup">ivo://a.b/c#0</EventIVORN>
    <EventIVORN cite="followup"></EventIVORN>
    <EventIVORN cite="retraction">ivo://a.b/c#00</EventIVORN>
  </Citations>
</VOEvent>`)

	_, cites, err := Extract(p, time.Time{})
	require.NoError(t, err)
	require.Len(t, cites, 2)
	assert.Equal(t, "ivo://a.b/c#0", cites[0].RefIvorn)
	assert.Equal(t, "ivo://a.b/c#00", cites[1].RefIvorn)
}

func TestExtractInvalidCiteType(t *testing.T) {
	p := mustParse(t, `<VOEvent ivorn="ivo://a.b/c#1" role="observation" version="2.0">
  <Citations>
    <EventIVORN cite="refutes">ivo://a.b/c#0</EventIVORN>
  </Citations>
</VOEvent>`)

	_, _, err := Extract(p, time.Time{})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestParseRejectsInvalidXML(t *testing.T) {
	_, err := Parse([]byte(`<VOEvent ivorn=`))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestDeriveStream(t *testing.T) {
	stream, err := DeriveStream("ivo://nasa.gsfc.gcn/SWIFT#BAT_GRB_Pos_532871-725")
	require.NoError(t, err)
	assert.Equal(t, "nasa.gsfc.gcn/SWIFT", stream)

	_, err = DeriveStream("ivo://no.separator/here")
	assert.Error(t, err)

	_, err = DeriveStream("not-an-ivorn#1")
	assert.Error(t, err)
}
