// SPDX-License-Identifier: EPL-2.0

package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/audroom/audio"
)

// Options configure a Loader. The zero value loads relative paths from the
// working directory with DefaultRegistry and a 30 second HTTP client.
type Options struct {
	Registry *audio.Registry
	// BaseDir resolves relative file paths.
	BaseDir string
	// BaseURL, when set, resolves every reference without a scheme, so a
	// catalog written for a web server can be served from one.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Loader struct {
	registry *audio.Registry
	baseDir  string
	baseURL  *url.URL
	client   *http.Client
	log      *slog.Logger
}

func New(opt Options) (*Loader, error) {
	l := &Loader{
		registry: opt.Registry,
		baseDir:  opt.BaseDir,
		client:   opt.HTTPClient,
		log:      opt.Logger,
	}
	if l.registry == nil {
		l.registry = DefaultRegistry()
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: 30 * time.Second}
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	if opt.BaseURL != "" {
		u, err := url.Parse(opt.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("asset: base URL: %w", err)
		}
		l.baseURL = u
	}
	return l, nil
}

// Load fetches ref, picks a decoder from its extension and decodes the
// whole stream. Every failure is an *Error.
func (l *Loader) Load(ctx context.Context, ref string) (*audio.Buffer, error) {
	buf, err := l.load(ctx, ref)
	if err != nil {
		return nil, &Error{URI: ref, Err: err}
	}
	return buf, nil
}

func (l *Loader) load(ctx context.Context, ref string) (*audio.Buffer, error) {
	start := time.Now()

	loc, remote, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	name := loc
	if remote {
		u, _ := url.Parse(loc)
		name = u.Path
	}
	dec, ok := l.registry.ForPath(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}

	var data []byte
	if remote {
		data, err = l.fetch(ctx, loc)
	} else {
		data, err = os.ReadFile(loc)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	buf, err := audio.ReadAll(src)
	if err != nil {
		return nil, err
	}

	l.log.Debug("asset loaded",
		"uri", ref,
		"rate", buf.SampleRate(),
		"channels", buf.Channels(),
		"duration", buf.Duration(),
		"took", time.Since(start))

	return buf, nil
}

// resolve turns ref into a file path or an absolute URL.
func (l *Loader) resolve(ref string) (loc string, remote bool, err error) {
	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) == 1 {
		// Not a URI, or a Windows drive letter.
		return l.localPath(ref), false, nil
	}

	switch u.Scheme {
	case "http", "https":
		return u.String(), true, nil
	case "file":
		return filepath.FromSlash(u.Path), false, nil
	case "":
		if l.baseURL != nil {
			return l.baseURL.ResolveReference(u).String(), true, nil
		}
		return l.localPath(ref), false, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *Loader) localPath(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || l.baseDir == "" {
		return p
	}
	return filepath.Join(l.baseDir, p)
}

func (l *Loader) fetch(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
