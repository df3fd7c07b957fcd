package logger

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGELFWriter_SendsEvent(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	w, err := NewGELFWriter(pc.LocalAddr().String(), "spotq")
	require.NoError(t, err)
	defer w.Close()

	l := zerolog.New(w)
	l.Warn().Str("kind", "melting-logs").Int("status", 400).Msg("validation failed")

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 8192)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &msg))
	assert.Equal(t, "1.1", msg["version"])
	assert.Equal(t, "validation failed", msg["short_message"])
	assert.EqualValues(t, 4, msg["level"])
	assert.Equal(t, "spotq", msg["_service"])
	assert.Equal(t, "melting-logs", msg["_kind"])
	assert.EqualValues(t, 400, msg["_status"])
	assert.NotContains(t, msg, "_level")
	assert.NotContains(t, msg, "_message")
}

func TestSyslogLevel(t *testing.T) {
	assert.Equal(t, 3, syslogLevel(zerolog.ErrorLevel))
	assert.Equal(t, 6, syslogLevel(zerolog.InfoLevel))
	assert.Equal(t, 6, syslogLevel(zerolog.NoLevel))
	assert.Equal(t, 7, syslogLevel(zerolog.DebugLevel))
}
