package features

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestPerceptualHashFormat(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "g.png", gradientImage(64))

	hash := PerceptualHash(path)
	if !hexHash.MatchString(hash) {
		t.Errorf("PerceptualHash = %q, want 16 lowercase hex digits", hash)
	}
}

func TestPerceptualHashDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", gradientImage(64))
	b := writePNG(t, dir, "b.png", gradientImage(64))

	if PerceptualHash(a) != PerceptualHash(b) {
		t.Error("identical pixel content must produce identical hashes")
	}
}

func TestPerceptualHashDistinguishesContent(t *testing.T) {
	dir := t.TempDir()
	gradient := writePNG(t, dir, "g.png", gradientImage(64))
	checker := writePNG(t, dir, "c.png", checkerImage(64))

	if PerceptualHash(gradient) == PerceptualHash(checker) {
		t.Error("structurally different images should not share a hash")
	}
}

func TestPerceptualHashFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(path, []byte{0x00, 0x01}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := PerceptualHash(path); got != "" {
		t.Errorf("PerceptualHash of corrupt file = %q, want empty", got)
	}
}

func TestFormatHash(t *testing.T) {
	tests := []struct {
		bits uint64
		want string
	}{
		{0, "0000000000000000"},
		{0xff, "00000000000000ff"},
		{0xdeadbeefcafebabe, "deadbeefcafebabe"},
	}
	for _, tt := range tests {
		if got := FormatHash(tt.bits); got != tt.want {
			t.Errorf("FormatHash(%#x) = %q, want %q", tt.bits, got, tt.want)
		}
	}
}
