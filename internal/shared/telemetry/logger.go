package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	texthandler "github.com/apex/log/handlers/text"
)

var setupOnce sync.Once

func init() {
	log.SetHandler(jsonhandler.New(os.Stdout))
}

// Setup selects the output format ("json" or "text") and minimum level.
// Only the first call has an effect.
func Setup(format, level string) {
	setupOnce.Do(func() {
		configure(os.Stdout, format, level)
	})
}

// SetOutput redirects log output to w, replacing any earlier Setup.
func SetOutput(w io.Writer, format, level string) {
	setupOnce.Do(func() {})
	configure(w, format, level)
}

func configure(w io.Writer, format, level string) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		log.SetHandler(texthandler.New(w))
	default:
		log.SetHandler(jsonhandler.New(w))
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	entry(fields).Info(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	entry(fields).Warn(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	entry(fields).Error(msg)
}

func entry(fields map[string]any) *log.Entry {
	f := make(log.Fields, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			f[k] = err.Error()
			continue
		}
		f[k] = v
	}
	return log.WithFields(f)
}
