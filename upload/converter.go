package upload

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"docuvert/logging"
	"docuvert/store"

	"go.uber.org/zap"
)

// Converter rasterizes a PDF into one image file per page, named with the
// page-index convention the page store recognizes (page_1.png, page_001.png
// and friends). Returns the number of pages produced.
type Converter interface {
	Convert(ctx context.Context, pdfPath, imagesDir string) (int, error)
}

// ExecConverter shells out to an external conversion script. The script is
// a black box from the service's point of view: it receives the PDF path
// and the target directory and is judged only by its exit code and the
// image files it leaves behind.
type ExecConverter struct {
	script  string
	timeout time.Duration
	logger  *logging.Logger
}

// NewExecConverter creates a converter running the given script.
func NewExecConverter(script string, timeout time.Duration, logger *logging.Logger) *ExecConverter {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &ExecConverter{
		script:  script,
		timeout: timeout,
		logger:  logger.Named("converter"),
	}
}

// Convert runs the script and counts the page images it produced. The count
// comes from re-listing the directory rather than parsing script output, so
// a chatty or silent script makes no difference.
func (c *ExecConverter) Convert(ctx context.Context, pdfPath, imagesDir string) (int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, c.script, pdfPath, imagesDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		c.logger.Error("conversion script failed",
			zap.String("script", c.script),
			zap.ByteString("output", output),
			zap.Error(err),
		)
		return 0, fmt.Errorf("conversion script failed: %w", err)
	}

	count, err := countPageImages(imagesDir)
	if err != nil {
		return 0, err
	}

	c.logger.Info("conversion finished",
		zap.Int("pages", count),
		zap.Duration("duration", time.Since(started)),
	)
	return count, nil
}

// countPageImages counts files in dir matching the page-image naming
// convention, deduplicating indices so a script emitting both padded and
// unpadded names for one page is not double-counted.
func countPageImages(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read images directory: %w", err)
	}
	seen := make(map[int]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := store.ParsePageIndex(entry.Name()); ok {
			seen[n] = true
		}
	}
	return len(seen), nil
}
