package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ComponentField is the logrus field naming the pipeline stage that logged.
const ComponentField = "component"

// PrettyFormatter renders entries for a terminal. The component field, when
// present, is printed as a bracketed prefix instead of a key=value pair.
type PrettyFormatter struct {
	NoColor bool
}

// Format renders a logrus entry as a single human-readable line.
func (f *PrettyFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	paint := func(color, s string) string {
		if f.NoColor {
			return s
		}
		return color + s + colorReset
	}

	var icon, color string
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		icon, color = "✗", colorRed
	case logrus.WarnLevel:
		icon, color = "⚠", colorYellow
	case logrus.InfoLevel:
		icon, color = "•", colorGreen
	default:
		icon, color = "·", colorGray
	}

	var b strings.Builder
	b.WriteString(paint(colorGray, entry.Time.Format("15:04:05")))
	b.WriteByte(' ')
	b.WriteString(paint(color, icon))
	b.WriteByte(' ')
	if component, ok := entry.Data[ComponentField]; ok {
		b.WriteString(paint(colorBlue, fmt.Sprintf("[%v]", component)))
		b.WriteByte(' ')
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == ComponentField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(paint(colorCyan, k))
		b.WriteString(fmt.Sprintf("=%v", entry.Data[k]))
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// NewLogger creates a configured logrus logger writing to stdout.
func NewLogger(level string, format string) *logrus.Logger {
	logger := logrus.New()
	Configure(logger, os.Stdout, level, format)
	return logger
}

// Configure sets output, format, and level on an existing logger.
func Configure(logger *logrus.Logger, out io.Writer, level string, format string) {
	if out != nil {
		logger.SetOutput(out)
	}
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "pretty":
		logger.SetFormatter(&PrettyFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// ConfigureStandard applies the settings to the logrus standard logger,
// which every package logs through.
func ConfigureStandard(level string, format string) {
	Configure(logrus.StandardLogger(), nil, level, format)
}

// Component returns an entry tagged with a pipeline stage name.
func Component(name string) *logrus.Entry {
	return logrus.WithField(ComponentField, name)
}
