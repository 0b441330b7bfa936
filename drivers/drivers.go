// Builds upon the pd package to provide common interfaces and higher-level
// features.
package drivers

import (
	"bytes"
	"io"

	"github.com/clktmr/playdate/pd"
)

// NewLogWriter returns an io.Writer that forwards each write to the device
// console log, e.g. for log.SetOutput. A trailing newline is dropped, the
// console starts a new entry per write anyway.
func NewLogWriter(p *pd.PD) io.Writer {
	return logWriter{p}
}

type logWriter struct{ pd *pd.PD }

func (w logWriter) Write(p []byte) (int, error) {
	w.pd.Logf("%s", bytes.TrimSuffix(p, []byte{'\n'}))
	return len(p), nil
}
