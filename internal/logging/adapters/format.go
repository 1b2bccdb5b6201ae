package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"jobdesk/internal/logging/types"
)

// formatEntry renders an entry as a single json or text line
func formatEntry(format string, entry *types.LogEntry, colorize func(string) string) (string, error) {
	if strings.ToLower(format) == "text" {
		return formatText(entry, colorize), nil
	}
	return formatJSON(entry)
}

func formatJSON(entry *types.LogEntry) (string, error) {
	logData := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		logData[k] = v
	}
	logData["level"] = entry.Level.String()
	logData["message"] = entry.Message
	logData["time"] = entry.Timestamp.Format(time.RFC3339)

	data, err := json.Marshal(logData)
	if err != nil {
		return "", fmt.Errorf("failed to format log entry: %w", err)
	}
	return string(data), nil
}

func formatText(entry *types.LogEntry, colorize func(string) string) string {
	level := strings.ToUpper(entry.Level.String())
	if colorize != nil {
		level = colorize(level)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"), level, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	return b.String()
}
