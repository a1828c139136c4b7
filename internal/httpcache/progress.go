package httpcache

import (
	"github.com/YPSH-DGC/YPMS/internal/log"
	"github.com/dustin/go-humanize"
)

// LoggingObserver reports download progress to a Logger at Debug level,
// formatting the "read" and "total" byte counts with humanize.Bytes
// (e.g. "12 MB" and "50 MB"). It is the default Observer used when the manager
// façade does not wire a richer terminal UI (out of core scope per
// spec.md §1).
type LoggingObserver struct {
	Logger log.Logger
}

// OnProgress implements Observer.
func (o LoggingObserver) OnProgress(url string, bytesRead, totalBytes int64) {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	if totalBytes > 0 {
		logger.Debug("download progress", "url", url,
			"read", humanize.Bytes(uint64(bytesRead)),
			"total", humanize.Bytes(uint64(totalBytes)))
		return
	}
	logger.Debug("download progress", "url", url, "read", humanize.Bytes(uint64(bytesRead)))
}
