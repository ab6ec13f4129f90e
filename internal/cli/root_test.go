package cli

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeField(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "field.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write field: %v", err)
	}
	return path
}

func decodePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("size = %v, want 640x480", b)
	}
}

func TestRenderImageCommand(t *testing.T) {
	t.Parallel()

	in := writeField(t, `{"rows":2,"cols":2,"re":[1,0,-1,0],"im":[0,1,0,-1]}`)
	if _, err := runCLI(t, "render", "image", in, "--origin", "lower", "--pixel-size", "0.5"); err != nil {
		t.Fatalf("render image: %v", err)
	}
	decodePNG(t, strings.TrimSuffix(in, ".json")+".png")
}

func TestRenderProfileCommand(t *testing.T) {
	t.Parallel()

	in := writeField(t, `{"mag":[0,1,2,1],"phase":[0,1,2,3]}`)
	out := filepath.Join(t.TempDir(), "profile.png")
	if _, err := runCLI(t, "render", "profile", in, "-o", out, "--orientation", "vert", "--title", "beam"); err != nil {
		t.Fatalf("render profile: %v", err)
	}
	decodePNG(t, out)

	if _, err := runCLI(t, "render", "profile", in, "--orientation", "diagonal"); err == nil {
		t.Fatal("expected error for unknown orientation")
	}
}

func TestRenderLegendCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bar := filepath.Join(dir, "amp.png")
	if _, err := runCLI(t, "render", "colorbar", "-o", bar, "--max", "255", "--horizontal"); err != nil {
		t.Fatalf("render colorbar: %v", err)
	}
	decodePNG(t, bar)

	phase := filepath.Join(dir, "phase.png")
	if _, err := runCLI(t, "render", "phasebar", "-o", phase, "--phase-on-x", "--min-visible", "0.2"); err != nil {
		t.Fatalf("render phasebar: %v", err)
	}
	decodePNG(t, phase)

	if _, err := runCLI(t, "render", "phasebar", "-o", phase, "--style", "billboard"); err == nil {
		t.Fatal("expected error for unknown style preset")
	}
}

func TestScalebarCommand(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "scalebar", "--pixel-size", "0.5", "--span", "1000")
	if err != nil {
		t.Fatalf("scalebar: %v", err)
	}
	for _, want := range []string{"Scalebar 200 µm", "400.0 px", "70.0 px"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "scalebar", "--pixel-size", "-1", "--span", "1000"); err == nil {
		t.Fatal("expected error for negative pixel size")
	}
}

func TestPreviewCommand(t *testing.T) {
	t.Parallel()

	in := writeField(t, `{"mag":[0,1,3,1,0],"phase":[3,-3,3,-3,3]}`)
	out, err := runCLI(t, "preview", in, "--phase", "--width", "20", "--height", "5")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "magnitude (peak 3)") || !strings.Contains(out, "unwrapped phase") {
		t.Fatalf("unexpected preview:\n%s", out)
	}

	twoD := writeField(t, `{"rows":2,"cols":1,"re":[1,2]}`)
	if _, err := runCLI(t, "preview", twoD); err == nil {
		t.Fatal("expected error for a 2D field")
	}
}

func TestPNGPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"field.json":        "field.png",
		"dir/field.json.gz": "dir/field.png",
		"a.json.zst":        "a.png",
		"noext":             "noext.png",
	}
	for in, want := range tests {
		if got := pngPath(in); got != want {
			t.Errorf("pngPath(%q) = %q, want %q", in, got, want)
		}
	}
}
