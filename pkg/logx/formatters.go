package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ConsoleFormatter renders entries as aligned, human-readable lines.
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format implements Formatter
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(entry.Timestamp.Format(f.config.TimeFormat))
	buf.WriteString(" | ")
	fmt.Fprintf(&buf, "%-5s", entry.Level.String())
	buf.WriteString(" | ")
	buf.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&buf, " %s=%v", k, entry.Fields[k])
		}
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// JSONFormatter renders entries as single-line JSON objects.
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format implements Formatter
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	payload := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		payload[k] = v
	}
	payload["time"] = entry.Timestamp.Format(f.config.TimeFormat)
	payload["level"] = entry.Level.String()
	payload["message"] = entry.Message
	if entry.Error != nil {
		payload["error"] = entry.Error.Error()
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
