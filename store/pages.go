package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"docuvert/core"
)

// pageImagePattern matches rasterized page files. The conversion script may
// emit either unpadded (page_3.png) or zero-padded (page_003.png) names;
// both parse to the same 1-based index.
var pageImagePattern = regexp.MustCompile(`^page_(\d+)\.(png|jpg|jpeg)$`)

// markerSuffix is appended to a page's base name to form its completion marker.
const markerSuffix = ".done.json"

// PageMarker is the completion marker persisted per extracted page.
// Its existence on disk is the sole signal that the page's extraction
// succeeded; the content copy lets the aggregator read every page from
// one file enumeration.
type PageMarker struct {
	Page    int    `json:"page"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

// ParsePageIndex extracts the 1-based page index from a rasterized image
// filename. Returns false for anything that is not a page image.
func ParsePageIndex(filename string) (int, bool) {
	m := pageImagePattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ListPages returns the sorted 1-based indices of all rasterized pages for
// the session. A missing session or images directory yields an empty slice,
// not an error: absence of pages is a normal query result here.
func (s *SessionStore) ListPages(sessionID string) []int {
	if core.ValidateSessionID(sessionID) != nil {
		return nil
	}

	entries, err := os.ReadDir(s.ImagesDir(sessionID))
	if err != nil {
		return nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := ParsePageIndex(entry.Name()); ok && !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages
}

// PageImagePath resolves the rasterized image file for a page, trying the
// unpadded name first and the zero-padded variants second. Returns a
// NotFoundError when no candidate exists.
func (s *SessionStore) PageImagePath(sessionID string, page int) (string, error) {
	dir := s.ImagesDir(sessionID)
	candidates := []string{
		fmt.Sprintf("page_%d", page),
		fmt.Sprintf("page_%03d", page),
		fmt.Sprintf("page_%04d", page),
	}
	for _, base := range candidates {
		for _, ext := range []string{"png", "jpg", "jpeg"} {
			path := filepath.Join(dir, base+"."+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", core.NewNotFoundError("page image", fmt.Sprintf("%s page %d", sessionID, page))
}

// markerPath returns the completion-marker path for a page.
func (s *SessionStore) markerPath(sessionID string, page int) string {
	return filepath.Join(s.OutputDir(sessionID), fmt.Sprintf("page_%d%s", page, markerSuffix))
}

// pageOutputPath returns the content-file path for a page in a format.
func (s *SessionStore) pageOutputPath(sessionID string, page int, format core.Format) string {
	return filepath.Join(s.OutputDir(sessionID), fmt.Sprintf("page_%d.%s", page, format.Extension()))
}

// IsPageExtracted reports whether the page's completion marker exists.
// This is a pure existence check with no side effects, and it is the
// resumability contract: a page without a marker will be re-extracted.
func (s *SessionStore) IsPageExtracted(sessionID string, page int) bool {
	info, err := os.Stat(s.markerPath(sessionID, page))
	return err == nil && !info.IsDir()
}

// WritePageResult persists a successful extraction: the raw content file
// first, then the completion marker. The marker is written last so that a
// crash between the two writes leaves the page formally un-extracted and
// it is retried on the next run.
func (s *SessionStore) WritePageResult(sessionID string, page int, format core.Format, content string) error {
	if err := os.MkdirAll(s.OutputDir(sessionID), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := s.pageOutputPath(sessionID, page, format)
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write page output: %w", err)
	}

	marker := PageMarker{Page: page, Format: string(format), Content: content}
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("failed to encode page marker: %w", err)
	}
	if err := os.WriteFile(s.markerPath(sessionID, page), data, 0o644); err != nil {
		return fmt.Errorf("failed to write page marker: %w", err)
	}
	return nil
}

// ReadMarker loads one page's completion marker.
func (s *SessionStore) ReadMarker(sessionID string, page int) (*PageMarker, error) {
	data, err := os.ReadFile(s.markerPath(sessionID, page))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewNotFoundError("page marker", fmt.Sprintf("%s page %d", sessionID, page))
		}
		return nil, fmt.Errorf("failed to read page marker: %w", err)
	}
	var marker PageMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("failed to decode page marker: %w", err)
	}
	return &marker, nil
}

// ListMarkers loads every completion marker for the session, sorted by
// numeric page index. Sorting is strictly numeric: page_10 sorts after
// page_9, never between page_1 and page_2.
func (s *SessionStore) ListMarkers(sessionID string) ([]PageMarker, error) {
	entries, err := os.ReadDir(s.OutputDir(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var markers []PageMarker
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, markerSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.OutputDir(sessionID), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read page marker %s: %w", name, err)
		}
		var marker PageMarker
		if err := json.Unmarshal(data, &marker); err != nil {
			return nil, fmt.Errorf("failed to decode page marker %s: %w", name, err)
		}
		markers = append(markers, marker)
	}

	sort.Slice(markers, func(i, j int) bool {
		return markers[i].Page < markers[j].Page
	})
	return markers, nil
}

// PageImageName returns the filename of the page's rasterized image, or an
// empty string when it cannot be resolved. Used by the aggregator to report
// source images alongside each page.
func (s *SessionStore) PageImageName(sessionID string, page int) string {
	path, err := s.PageImagePath(sessionID, page)
	if err != nil {
		return ""
	}
	return filepath.Base(path)
}
