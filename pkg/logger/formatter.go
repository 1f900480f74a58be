package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// correlationKeys stay at the top level of every JSON line so log search can
// follow a request, rider, booking or payment without digging into context.
var correlationKeys = map[string]bool{
	"request_id":      true,
	"user_id":         true,
	"booking_id":      true,
	"driver_id":       true,
	"transaction_id":  true,
	"notification_id": true,
}

// JSONFormatter writes one JSON object per entry. Fields other than the
// correlation ids are grouped under "context".
type JSONFormatter struct {
	TimestampFormat string
	AppName         string
	Version         string
}

func (f *JSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	line := make(map[string]interface{}, 8)
	extra := make(map[string]interface{}, len(entry.Data))

	for key, value := range entry.Data {
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		if correlationKeys[key] {
			line[key] = value
		} else {
			extra[key] = value
		}
	}
	if len(extra) > 0 {
		line["context"] = extra
	}

	layout := f.TimestampFormat
	if layout == "" {
		layout = time.RFC3339Nano
	}
	line["timestamp"] = entry.Time.UTC().Format(layout)
	line["level"] = entry.Level.String()
	line["message"] = entry.Message

	if f.AppName != "" {
		line["app"] = f.AppName
	}
	if f.Version != "" {
		line["version"] = f.Version
	}
	if entry.HasCaller() {
		line["caller"] = fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
	}

	buf := entry.Buffer
	if buf == nil {
		buf = &bytes.Buffer{}
	}
	if err := json.NewEncoder(buf).Encode(line); err != nil {
		return nil, fmt.Errorf("failed to encode log entry: %w", err)
	}
	return buf.Bytes(), nil
}
