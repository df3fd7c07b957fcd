package logger

import (
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// GELFWriter sends each zerolog event as a GELF 1.1 message over UDP.
// It implements zerolog.LevelWriter so it can be combined with the console
// writer through zerolog.MultiLevelWriter.
type GELFWriter struct {
	conn    net.Conn
	host    string
	service string
}

// NewGELFWriter dials addr (e.g. "172.17.0.1:12201").
func NewGELFWriter(addr, service string) (*GELFWriter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = service + "-server"
	}
	return &GELFWriter{conn: conn, host: host, service: service}, nil
}

func (w *GELFWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel converts one JSON encoded event. Fields other than level, time
// and message become GELF additional fields prefixed with an underscore.
// Delivery is fire-and-forget; a failed send never fails the log call.
func (w *GELFWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var event map[string]any
	if err := json.Unmarshal(p, &event); err != nil {
		event = map[string]any{zerolog.MessageFieldName: string(p)}
	}

	short, _ := event[zerolog.MessageFieldName].(string)
	if short == "" {
		short = "-"
	}
	msg := map[string]any{
		"version":       "1.1",
		"host":          w.host,
		"short_message": short,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         syslogLevel(level),
		"_service":      w.service,
	}
	for k, v := range event {
		switch k {
		case zerolog.MessageFieldName, zerolog.LevelFieldName, zerolog.TimestampFieldName, "id":
			continue
		}
		msg["_"+k] = v
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return len(p), nil
	}
	_, _ = w.conn.Write(payload)
	return len(p), nil
}

func (w *GELFWriter) Close() error {
	return w.conn.Close()
}

func syslogLevel(l zerolog.Level) int {
	switch l {
	case zerolog.PanicLevel:
		return 1
	case zerolog.FatalLevel:
		return 2
	case zerolog.ErrorLevel:
		return 3
	case zerolog.WarnLevel:
		return 4
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return 7
	default:
		return 6
	}
}
