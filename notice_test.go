package voevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotice(t *testing.T) {
	notice, err := ParseNotice(loadFixture(t, "gbm_flt_pos.xml"))
	require.NoError(t, err)

	assert.Equal(t, FermiGBMFltPos, notice.Type)
	assert.Equal(t, "VOEvent", notice.Root.Local)
	assert.Equal(t, "ivo://nasa.gsfc.gcn/Fermi#GBM_Flt_Pos_2012-11-07T08:40:29.63_373970431_46-297", notice.IVORN)
	assert.Equal(t, "observation", notice.Role)
	assert.Equal(t, "2012-11-07T08:40:41", notice.Date)

	trig, ok := notice.Param("TrigID")
	assert.True(t, ok)
	assert.Equal(t, "373970431", trig)

	_, ok = notice.Param("NoSuchParam")
	assert.False(t, ok)
}

func TestParseNotice_KillSocket(t *testing.T) {
	notice, err := ParseNotice(loadFixture(t, "kill_socket.xml"))
	require.NoError(t, err)
	assert.Equal(t, KillSocket, notice.Type)
	assert.Equal(t, "utility", notice.Role)
}

func TestParseNotice_Truncated(t *testing.T) {
	gbm := loadFixture(t, "gbm_flt_pos.xml")
	_, err := ParseNotice(gbm[:len(gbm)-20])
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransportMessage)
}

func TestParseNotice_Errors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{
			name:    "missing packet type",
			payload: `<voe:VOEvent xmlns:voe="http://www.ivoa.net/xml/VOEvent/v2.0" ivorn="ivo://x"><What><Param name="TrigID" value="1"/></What></voe:VOEvent>`,
			want:    ErrMissingNoticeType,
		},
		{
			name:    "non numeric packet type",
			payload: `<VOEvent ivorn="ivo://x"><What><Param name="Packet_Type" value="grb"/></What></VOEvent>`,
			want:    ErrMissingNoticeType,
		},
		{
			name:    "other root",
			payload: `<html><body/></html>`,
			want:    ErrNotVOEvent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNotice([]byte(tc.payload))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("not xml", func(t *testing.T) {
		_, err := ParseNotice([]byte("this is not xml"))
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseNotice(nil)
		assert.Error(t, err)
	})
}

func TestParseNotice_TransportMessage(t *testing.T) {
	_, err := ParseNotice(loadFixture(t, "iamalive.xml"))
	assert.ErrorIs(t, err, ErrTransportMessage)
}

func TestParseNotice_Latin1(t *testing.T) {
	payload := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<VOEvent ivorn=\"ivo://x#1\" role=\"test\"><What>" +
		"<Param name=\"Packet_Type\" value=\"60\"/>" +
		"<Param name=\"Observer\" value=\"Andr\xe9\"/>" +
		"</What></VOEvent>")

	notice, err := ParseNotice(payload)
	require.NoError(t, err)
	assert.Equal(t, SwiftBATGRBAlert, notice.Type)

	observer, _ := notice.Param("Observer")
	assert.Equal(t, "André", observer)
}

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope(loadFixture(t, "iamalive.xml"))
	require.NoError(t, err)
	assert.Equal(t, RoleIAmAlive, env.Role)
	assert.Equal(t, "ivo://nasa.gsfc.tan/gcn", env.Origin)
	assert.Equal(t, "2014-01-23T01:02:03", env.TimeStamp)

	_, err = ParseEnvelope(loadFixture(t, "gbm_flt_pos.xml"))
	assert.Error(t, err)
}

func TestNoticeType_String(t *testing.T) {
	assert.Equal(t, "FERMI_GBM_FLT_POS", FermiGBMFltPos.String())
	assert.Equal(t, "KILL_SOCKET", KillSocket.String())
	assert.Equal(t, "9999", NoticeType(9999).String())
}
