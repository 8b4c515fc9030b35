package voevent

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ArchiveHandler returns a handler that saves each payload to dir, named
// after the notice IVORN (query-escaped so it is a single path element).
// A notice delivered twice overwrites its earlier copy.
func ArchiveHandler(dir string, logger Logger) Handler {
	if logger == nil {
		logger = defaultLogger()
	}
	return func(payload []byte, notice *Notice) error {
		if notice.IVORN == "" {
			return errors.New("archive: notice has no ivorn")
		}
		name := filepath.Join(dir, url.QueryEscape(notice.IVORN))
		if err := os.WriteFile(name, payload, 0o644); err != nil {
			return errors.Wrap(err, "archive")
		}
		logger.Info("archived notice", "ivorn", notice.IVORN, "path", name)
		return nil
	}
}
