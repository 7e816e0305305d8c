package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"storyreel/config"
	"storyreel/types"
)

type fakeStore struct {
	objects    map[string][]byte
	uploadPath string
	uploadData []byte
	uploadType string
}

func (f *fakeStore) Download(ctx context.Context, url string) ([]byte, error) {
	data, ok := f.objects[url]
	if !ok {
		return nil, fmt.Errorf("no object at %s", url)
	}
	return data, nil
}

func (f *fakeStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.uploadPath = path
	f.uploadData = data
	f.uploadType = contentType
	return "https://store.example/" + path, nil
}

type cmdCall struct {
	name string
	args []string
}

// recordingRun captures every invocation and creates the output file (the
// last argument) so the engine's final read succeeds.
func recordingRun(calls *[]cmdCall) runFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, cmdCall{name: name, args: args})
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("media"), 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func testEngine(t *testing.T, store *fakeStore) (*Engine, string) {
	t.Helper()
	scratch := t.TempDir()
	e := New(config.VideoConfig{FPS: 25, ScratchDir: scratch}, 0, store, zap.NewNop())
	return e, scratch
}

func TestRunAssemblesInOrder(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"https://store.example/images/a.png": []byte("img-a"),
		"https://store.example/images/b.png": []byte("img-b"),
		"https://store.example/images/c.png": []byte("img-c"),
		"https://store.example/audio/n.mp3":  []byte("narration"),
	}}
	e, scratchRoot := testEngine(t, store)

	var calls []cmdCall
	var manifest string
	e.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, cmdCall{name: name, args: args})
		if list := argAfter(args, "-i"); strings.HasSuffix(list, "filelist.txt") {
			data, err := os.ReadFile(list)
			if err != nil {
				t.Fatalf("read manifest: %v", err)
			}
			manifest = string(data)
		}
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("media"), 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}

	images := []types.GeneratedImage{
		{Start: 0, End: 5, URL: "https://store.example/images/a.png"},
		{Start: 5, End: 5.04, URL: "https://store.example/images/b.png"},
		{Start: 5.04, End: 125.04, URL: "https://store.example/images/c.png"},
	}
	video, err := e.Run(context.Background(), "req-1", images, types.AudioTrack{URL: "https://store.example/audio/n.mp3"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// One clip conversion per image, then concat, then mux.
	if len(calls) != 5 {
		t.Fatalf("calls = %d, want 5", len(calls))
	}
	wantDurations := []string{"5.000", "0.040", "120.000"}
	for i, want := range wantDurations {
		if got := argAfter(calls[i].args, "-t"); got != want {
			t.Errorf("clip %d -t = %q, want %q", i, got, want)
		}
		if got := argAfter(calls[i].args, "-vf"); got != "fps=25" {
			t.Errorf("clip %d -vf = %q", i, got)
		}
		if !hasArg(calls[i].args, "-an") {
			t.Errorf("clip %d keeps audio", i)
		}
	}

	concat := calls[3].args
	if argAfter(concat, "-f") != "concat" || argAfter(concat, "-safe") != "0" {
		t.Errorf("concat args = %v", concat)
	}
	lines := strings.Split(strings.TrimSpace(manifest), "\n")
	if len(lines) != 3 {
		t.Fatalf("manifest lines = %d, want 3", len(lines))
	}
	for i, line := range lines {
		if !strings.Contains(line, fmt.Sprintf("clip_%03d.mp4", i)) {
			t.Errorf("manifest line %d out of order: %q", i, line)
		}
	}

	mux := calls[4].args
	for _, want := range []string{"-shortest", "0:v:0", "1:a:0"} {
		if !hasArg(mux, want) {
			t.Errorf("mux args missing %q: %v", want, mux)
		}
	}
	if argAfter(mux, "-c:a") != "aac" {
		t.Errorf("mux audio codec = %q", argAfter(mux, "-c:a"))
	}

	if store.uploadPath != "videos/req-1.mp4" {
		t.Errorf("upload path = %q", store.uploadPath)
	}
	if store.uploadType != "video/mp4" {
		t.Errorf("upload type = %q", store.uploadType)
	}
	if video.URL != "https://store.example/videos/req-1.mp4" {
		t.Errorf("video url = %q", video.URL)
	}

	if _, err := os.Stat(filepath.Join(scratchRoot, "storyreel-req-1")); !os.IsNotExist(err) {
		t.Errorf("scratch dir not removed: %v", err)
	}
}

func TestRunConversionFailure(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"https://store.example/images/a.png": []byte("img"),
	}}
	e, scratchRoot := testEngine(t, store)
	e.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Unknown encoder 'libx264'"), errors.New("exit status 1")
	}

	images := []types.GeneratedImage{{Start: 0, End: 3, URL: "https://store.example/images/a.png"}}
	_, err := e.Run(context.Background(), "req-2", images, types.AudioTrack{URL: "x"})

	var mediaErr *types.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *types.MediaError, got %v", err)
	}
	if !strings.Contains(mediaErr.Stderr, "libx264") {
		t.Errorf("stderr not preserved: %q", mediaErr.Stderr)
	}

	// Scratch is removed on failure too.
	if _, err := os.Stat(filepath.Join(scratchRoot, "storyreel-req-2")); !os.IsNotExist(err) {
		t.Errorf("scratch dir not removed: %v", err)
	}
}

func TestRunRejectsEmptyImageSet(t *testing.T) {
	e, _ := testEngine(t, &fakeStore{})
	if _, err := e.Run(context.Background(), "req-3", nil, types.AudioTrack{URL: "x"}); err == nil {
		t.Fatal("expected error for empty image set")
	}
}

func TestRunRejectsNonPositiveSpan(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"https://store.example/images/a.png": []byte("img"),
	}}
	e, _ := testEngine(t, store)
	var calls []cmdCall
	e.run = recordingRun(&calls)

	images := []types.GeneratedImage{{Start: 4, End: 4, URL: "https://store.example/images/a.png"}}
	if _, err := e.Run(context.Background(), "req-4", images, types.AudioTrack{URL: "x"}); err == nil {
		t.Fatal("expected error for zero-length span")
	}
	if len(calls) != 0 {
		t.Errorf("conversion ran despite invalid span")
	}
}
