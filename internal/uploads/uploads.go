// Package uploads stores files received over HTTP, one directory per session.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultExtensions are the document types the chunker can read.
var DefaultExtensions = []string{"pdf", "docx", "txt", "md"}

var (
	ErrExtension = errors.New("file type not allowed")
	ErrName      = errors.New("invalid file name")
	ErrTooLarge  = errors.New("file too large")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// FileInfo describes one uploaded file for listing.
type FileInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Size       string `json:"size"`
	UploadDate string `json:"upload_date"`
	Status     string `json:"status"`
	Issues     int    `json:"issues"`
}

// Store saves uploads under dir/<session>/ and remembers the saved paths in
// upload order.
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]bool

	mu    sync.Mutex
	paths map[string][]string
}

// New creates a store rooted at dir. maxBytes <= 0 disables the size limit
// and an empty extension list selects DefaultExtensions.
func New(dir string, maxBytes int64, extensions []string) *Store {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		allowed:  allowed,
		paths:    make(map[string][]string),
	}
}

// Dir returns the root upload directory.
func (s *Store) Dir() string { return s.dir }

// Allowed reports whether name carries a permitted extension.
func (s *Store) Allowed(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && s.allowed[ext]
}

// SanitizeName reduces a client-supplied file name to a safe base name.
// It returns "" when nothing usable is left.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" || name == "." {
		return ""
	}
	return name
}

// Save writes r to the session directory and returns the stored file name.
// Uploading the same name twice replaces the earlier file.
func (s *Store) Save(sessionID, name string, r io.Reader) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}
	if !s.Allowed(clean) {
		return "", fmt.Errorf("%w: %s", ErrExtension, clean)
	}

	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	path := filepath.Join(dir, clean)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", clean, err)
	}
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("saving %s: %w", clean, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.paths[sessionID] {
		if p == path {
			return clean, nil
		}
	}
	s.paths[sessionID] = append(s.paths[sessionID], path)
	return clean, nil
}

// Paths returns the stored paths for a session in upload order.
func (s *Store) Paths(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths[sessionID]...)
}

// List describes the session's files. Files removed from disk since upload
// are left out.
func (s *Store) List(sessionID string, processed bool) []FileInfo {
	status := "uploaded"
	if processed {
		status = "processed"
	}
	out := []FileInfo{}
	for _, path := range s.Paths(sessionID) {
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			ID:         len(out) + 1,
			Name:       filepath.Base(path),
			Size:       FormatSize(st.Size()),
			UploadDate: st.ModTime().Format(time.RFC3339),
			Status:     status,
		})
	}
	return out
}

// Clear forgets the session's uploads and removes its directory.
func (s *Store) Clear(sessionID string) error {
	s.mu.Lock()
	delete(s.paths, sessionID)
	s.mu.Unlock()
	if err := os.RemoveAll(s.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("removing uploads: %w", err)
	}
	return nil
}

// FormatSize renders a byte count in megabytes with one decimal.
func FormatSize(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}

// hashedDir holds sessions whose ids are not safe file names. Sanitized
// names never start with "_", so it cannot collide with a plain id.
const hashedDir = "_h"

// sessionDir maps a session id to its own directory. Ids that survive
// SanitizeName unchanged are used as is; any other id gets a name-based
// UUID so that ids like "x/alice" and "alice" never share files.
func (s *Store) sessionDir(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	if SanitizeName(sessionID) == sessionID {
		return filepath.Join(s.dir, sessionID)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(sessionID)).String()
	return filepath.Join(s.dir, hashedDir, id)
}
