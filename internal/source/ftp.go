package source

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/garagehq/servicebot/internal/recall"
)

// FTP is a recall source backed by one directory on an FTP server. Some
// fleets publish recall bulletins on plain FTP drops rather than Drive.
type FTP struct {
	host    string
	dir     string
	timeout time.Duration
}

// NewFTP creates a recall source over an FTP directory URL, e.g.
// ftp://files.example.com/recalls. A missing port defaults to 21.
func NewFTP(rawURL string, timeout time.Duration) (*FTP, error) {
	host, dir, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FTP{host: host, dir: dir, timeout: timeout}, nil
}

// parseFTPURL extracts host (with port) and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "source: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("source: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		path = "/"
	}

	return host, path, nil
}

// Name identifies the source in logs and errors.
func (f *FTP) Name() string {
	return fmt.Sprintf("ftp:%s%s", f.host, f.dir)
}

// ListFiles connects, lists the directory, and returns the plain files
// found there. Each call uses a fresh connection.
func (f *FTP) ListFiles(ctx context.Context) ([]recall.File, error) {
	zap.L().Debug("ftp: connecting", zap.String("host", f.host), zap.String("dir", f.dir))

	conn, err := ftp.Dial(f.host, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return nil, eris.Wrap(err, "source: ftp login")
	}

	entries, err := conn.List(f.dir)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp list")
	}

	var files []recall.File
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		files = append(files, recall.File{Name: e.Name})
	}
	return files, nil
}
