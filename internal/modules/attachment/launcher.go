package attachment

import (
	"errors"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ErrNoViewer means no suitable application was found on the host.
var ErrNoViewer = errors.New("no suitable viewer application found")

// Launcher starts host applications for attachment files. It is an
// abstraction over the desktop environment so the attachment logic stays
// testable without one.
type Launcher interface {
	OpenFile(path, mimeType string) error
	OpenFolder(dir string) error
}

// pdfViewers is the ordered viewer preference list for PDF files. The last
// resort is the generic desktop opener.
var pdfViewers = []string{"evince", "okular", "qpdfview", "zathura", "mupdf", "atril", "xdg-open"}

// ExecLauncher launches external processes via the host PATH.
type ExecLauncher struct {
	logger *zap.Logger
}

func NewExecLauncher(logger *zap.Logger) *ExecLauncher {
	return &ExecLauncher{logger: logger}
}

func (l *ExecLauncher) OpenFile(path, mimeType string) error {
	candidates := []string{"xdg-open"}
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		candidates = pdfViewers
	}

	for _, viewer := range candidates {
		bin, err := exec.LookPath(viewer)
		if err != nil {
			continue
		}
		cmd := exec.Command(bin, path)
		if err := cmd.Start(); err != nil {
			l.logger.Warn("viewer failed to start", zap.String("viewer", viewer), zap.Error(err))
			continue
		}
		// Detach: the viewer outlives the request.
		go func() { _ = cmd.Wait() }()
		l.logger.Info("opened attachment", zap.String("viewer", viewer), zap.String("path", path))
		return nil
	}
	return ErrNoViewer
}

func (l *ExecLauncher) OpenFolder(dir string) error {
	for _, opener := range [][]string{{"gio", "open"}, {"xdg-open"}} {
		bin, err := exec.LookPath(opener[0])
		if err != nil {
			continue
		}
		args := append(opener[1:], dir)
		cmd := exec.Command(bin, args...)
		if err := cmd.Start(); err != nil {
			l.logger.Warn("folder opener failed to start", zap.String("opener", opener[0]), zap.Error(err))
			continue
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	return ErrNoViewer
}
