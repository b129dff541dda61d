package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"vsixget/internal/utils"
)

var (
	ErrFileExists  = errors.New("file already exists")
	ErrInvalidName = errors.New("invalid file name")
)

// ProgressFunc receives the bytes written so far and the declared total,
// which is zero when the server sent no Content-Length.
type ProgressFunc func(written, total int64)

type Options struct {
	Directory string
	Timeout   time.Duration
	ChunkSize int
	UserAgent string
}

type Downloader struct {
	client    *http.Client
	dir       string
	chunkSize int
	userAgent string
}

// New builds a Downloader whose timeout bounds connecting and waiting for
// response headers. The body itself may take as long as it needs.
func New(opts Options) *Downloader {
	dialer := &net.Dialer{Timeout: opts.Timeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = opts.Timeout
	transport.ResponseHeaderTimeout = opts.Timeout
	return NewWithClient(&http.Client{Transport: transport}, opts)
}

func NewWithClient(client *http.Client, opts Options) *Downloader {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}
	dir := opts.Directory
	if dir == "" {
		dir = "."
	}
	return &Downloader{
		client:    client,
		dir:       dir,
		chunkSize: chunkSize,
		userAgent: opts.UserAgent,
	}
}

// Path returns the absolute target path for fileName, which must be a bare
// name inside the download directory.
func (d *Downloader) Path(fileName string) (string, error) {
	if fileName == "" || fileName == "." || fileName == ".." || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
	}
	return filepath.Abs(filepath.Join(d.dir, fileName))
}

func (d *Downloader) Exists(fileName string) bool {
	filePath, err := d.Path(fileName)
	if err != nil {
		return false
	}
	return utils.FileExists(filePath)
}

// Download streams downloadURL into fileName inside the download directory
// and returns the absolute path written. An existing file is never touched
// and no request is made for it.
func (d *Downloader) Download(ctx context.Context, downloadURL, fileName string, progress ProgressFunc) (string, error) {
	filePath, err := d.Path(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if utils.FileExists(filePath) {
		return "", fmt.Errorf("%w: %s", ErrFileExists, filePath)
	}
	if err := utils.EnsureDirectory(d.dir); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set(utils.UserAgentHeader, d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrFileExists, filePath)
		}
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := d.copyChunks(file, resp.Body, total, progress)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err == nil && total > 0 && written != total {
		err = fmt.Errorf("short download: got %d of %d bytes", written, total)
	}
	if err != nil {
		if rmErr := os.Remove(filePath); rmErr != nil {
			log.Warn().Str("op", "downloader").Err(rmErr).Msgf("Could not remove partial file %s", filePath)
		}
		return "", err
	}

	log.Debug().Str("op", "downloader").Int64("bytes", written).Msgf("Downloaded %s", filePath)
	return filePath, nil
}

func (d *Downloader) copyChunks(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	buffer := make([]byte, d.chunkSize)
	var written int64
	for {
		bytesRead, readErr := src.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := dst.Write(buffer[:bytesRead]); writeErr != nil {
				return written, fmt.Errorf("failed to write file: %w", writeErr)
			}
			written += int64(bytesRead)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, fmt.Errorf("failed to read response body: %w", readErr)
		}
	}
}
