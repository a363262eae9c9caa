package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a file doesn't exist.
	ErrNotFound = errors.New("upload: file not found")

	// ErrTooLarge is returned when a file exceeds the size limit.
	ErrTooLarge = errors.New("upload: file too large")

	// ErrTypeNotAllowed is returned when the detected MIME type is not allowed.
	ErrTypeNotAllowed = errors.New("upload: file type not allowed")

	// ErrNoFile is returned when the form has no file in the expected field.
	ErrNoFile = errors.New("upload: no file provided")
)

// Store is the interface for avatar storage backends.
type Store interface {
	// Save stores the content and returns the stored file. The returned
	// File has no Reader.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (*File, error)

	// Open returns the file with its Reader set. The caller closes it.
	Open(ctx context.Context, id string) (*File, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, id string) error
}

// File represents a stored file.
type File struct {
	// ID is the storage key, a uuid plus the original extension.
	ID string

	// Filename is the original filename from the client.
	Filename string

	// ContentType is the MIME type of the file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// URL is a direct download link, when the backend can provide one.
	URL string

	// Reader provides access to the file contents.
	Reader io.ReadCloser
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}

// Config holds limits applied by Receive.
type Config struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	MaxFileSize int64

	// AllowedTypes is a list of allowed MIME types.
	// If empty, all types are allowed.
	AllowedTypes []string
}

// AvatarConfig returns the limits used for profile pictures.
func AvatarConfig() Config {
	return Config{
		MaxFileSize:  5 << 20,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
}

// newID returns a fresh storage key keeping a sanitized extension.
func newID(filename string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// validID rejects keys that could escape the store root.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// Receive reads the file in field from a multipart request and saves it.
func Receive(w http.ResponseWriter, r *http.Request, store Store, field string, cfg Config) (*File, error) {
	f, err := Accept(w, r, field, cfg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return store.Save(r.Context(), f.Filename, f.ContentType, f.Reader)
}

// Accept reads the file in field from a multipart request and checks it
// against cfg without storing it. The body is limited before parsing and
// the content type is detected from the first 512 bytes. The returned
// File has no ID; the caller closes it.
func Accept(w http.ResponseWriter, r *http.Request, field string, cfg Config) (*File, error) {
	if cfg.MaxFileSize > 0 {
		// multipart framing needs some room on top of the file itself
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize+64<<10)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return nil, ErrTooLarge
		}
		return nil, err
	}

	part, header, err := r.FormFile(field)
	if err != nil {
		return nil, ErrNoFile
	}

	if cfg.MaxFileSize > 0 && header.Size > cfg.MaxFileSize {
		part.Close()
		return nil, ErrTooLarge
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(part, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		part.Close()
		return nil, err
	}
	sniff = sniff[:n]
	contentType := http.DetectContentType(sniff)
	if !allowed(contentType, cfg.AllowedTypes) {
		part.Close()
		return nil, ErrTypeNotAllowed
	}

	return &File{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader: struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(sniff), part), part},
	}, nil
}

func allowed(contentType string, types []string) bool {
	if len(types) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, t := range types {
		if strings.EqualFold(t, mediaType) {
			return true
		}
	}
	return false
}

// StatusCode maps a Receive error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTypeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ServeFile returns a handler streaming the file whose id is the last path
// segment of the request URL.
func ServeFile(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := path.Base(r.URL.Path)
		if !validID(id) {
			http.NotFound(w, r)
			return
		}
		f, err := store.Open(r.Context(), id)
		if err != nil {
			http.Error(w, http.StatusText(StatusCode(err)), StatusCode(err))
			return
		}
		defer f.Close()

		if f.ContentType != "" {
			w.Header().Set("Content-Type", f.ContentType)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
		io.Copy(w, f.Reader)
	})
}

// limitedCopy copies at most max bytes (0 = no limit) and reports
// ErrTooLarge when the source is longer.
func limitedCopy(dst io.Writer, src io.Reader, max int64) (int64, error) {
	if max <= 0 {
		return io.Copy(dst, src)
	}
	n, err := io.Copy(dst, io.LimitReader(src, max+1))
	if err != nil {
		return n, err
	}
	if n > max {
		return n, ErrTooLarge
	}
	return n, nil
}
