package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"report.xlsx", "report.xlsx"},
		{"../../etc/passwd", "passwd"},
		{"week plan (v2).pdf", "week_plan_v2_.pdf"},
		{"..", "file"},
		{"C:\\temp\\notes.txt", "notes.txt"},
		{"résumé.docx", "r_sum_.docx"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	dir := t.TempDir()

	if got := UniqueFilename(dir, "plan.xlsx"); got != "plan.xlsx" {
		t.Fatalf("first candidate = %q, want plan.xlsx", got)
	}

	for _, name := range []string{"plan.xlsx", "plan_1.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seeding %s: %v", name, err)
		}
	}

	if got := UniqueFilename(dir, "plan.xlsx"); got != "plan_2.xlsx" {
		t.Errorf("collision candidate = %q, want plan_2.xlsx", got)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if got := FileSize(path); got != 5 {
		t.Errorf("FileSize = %d, want 5", got)
	}
	if got := FileSize(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing FileSize = %d, want 0", got)
	}
}
