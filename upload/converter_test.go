package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docuvert/logging"
)

// writeScript drops an executable shell script into a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "convert.sh")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecConverterCountsProducedPages(t *testing.T) {
	script := writeScript(t, `
touch "$2/page_1.png" "$2/page_2.png" "$2/page_10.png"
touch "$2/thumbnail.jpg.tmp"
`)
	converter := NewExecConverter(script, time.Minute, logging.NewTestLogger())

	imagesDir := t.TempDir()
	count, err := converter.Convert(context.Background(), "/dev/null", imagesDir)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 (tmp file must not count)", count)
	}
}

func TestExecConverterDeduplicatesPaddedNames(t *testing.T) {
	script := writeScript(t, `touch "$2/page_1.png" "$2/page_001.png"`)
	converter := NewExecConverter(script, time.Minute, logging.NewTestLogger())

	count, err := converter.Convert(context.Background(), "/dev/null", t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (padded and unpadded names are one page)", count)
	}
}

func TestExecConverterNonZeroExit(t *testing.T) {
	script := writeScript(t, `exit 3`)
	converter := NewExecConverter(script, time.Minute, logging.NewTestLogger())

	if _, err := converter.Convert(context.Background(), "/dev/null", t.TempDir()); err == nil {
		t.Fatal("Convert succeeded despite non-zero exit")
	}
}

func TestExecConverterTimeout(t *testing.T) {
	script := writeScript(t, `sleep 10`)
	converter := NewExecConverter(script, 50*time.Millisecond, logging.NewTestLogger())

	if _, err := converter.Convert(context.Background(), "/dev/null", t.TempDir()); err == nil {
		t.Fatal("Convert succeeded despite timeout")
	}
}
