package segment

import (
	"io"
	"math"
	"testing"
)

// fakeFrames replays canned intensity frames at a fixed cadence
type fakeFrames struct {
	frames   [][]byte
	interval float64
	i        int
}

func (f *fakeFrames) Next() ([]byte, float64, error) {
	if f.i >= len(f.frames) {
		return nil, 0, io.EOF
	}
	frame := f.frames[f.i]
	t := float64(f.i) * f.interval
	f.i++
	return frame, t, nil
}

func (f *fakeFrames) Close() error { return nil }

func uniformFrame(value byte, size int) []byte {
	frame := make([]byte, size)
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func testSegmenter() *Segmenter {
	return &Segmenter{threshold: 30, interval: 1, fallbackStride: 30}
}

func assertPartition(t *testing.T, scenes []Scene, duration float64) {
	t.Helper()

	if len(scenes) == 0 {
		t.Fatal("expected at least one scene")
	}
	if scenes[0].Start != 0 {
		t.Errorf("first scene starts at %f, want 0", scenes[0].Start)
	}
	if scenes[len(scenes)-1].End != duration {
		t.Errorf("last scene ends at %f, want %f", scenes[len(scenes)-1].End, duration)
	}
	for i := 0; i < len(scenes)-1; i++ {
		if scenes[i].End != scenes[i+1].Start {
			t.Errorf("gap between scene %d (end %f) and scene %d (start %f)",
				i, scenes[i].End, i+1, scenes[i+1].Start)
		}
	}
	for i, scene := range scenes {
		if math.Abs(scene.Duration-(scene.End-scene.Start)) > 1e-9 {
			t.Errorf("scene %d duration %f != end-start %f", i, scene.Duration, scene.End-scene.Start)
		}
	}
}

func TestScanScenesUniformVideo(t *testing.T) {
	// 10 seconds of identical frames: no cuts, one scene covering all
	frames := make([][]byte, 10)
	for i := range frames {
		frames[i] = uniformFrame(128, 64)
	}

	scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 10)
	if err != nil {
		t.Fatalf("scanScenes failed: %v", err)
	}

	if len(scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(scenes))
	}
	want := Scene{Start: 0, End: 10, Duration: 10}
	if scenes[0] != want {
		t.Errorf("got %+v, want %+v", scenes[0], want)
	}
}

func TestScanScenesDetectsCut(t *testing.T) {
	// Hard cut from black to white at sample 5
	frames := make([][]byte, 10)
	for i := range frames {
		if i < 5 {
			frames[i] = uniformFrame(0, 64)
		} else {
			frames[i] = uniformFrame(255, 64)
		}
	}

	scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 10)
	if err != nil {
		t.Fatalf("scanScenes failed: %v", err)
	}

	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[0].End != 5 || scenes[1].Start != 5 {
		t.Errorf("cut not at t=5: %+v", scenes)
	}
	assertPartition(t, scenes, 10)
}

func TestScanScenesBelowThresholdNoCut(t *testing.T) {
	// Mean diff of 20 stays under the default threshold of 30
	frames := [][]byte{
		uniformFrame(100, 64),
		uniformFrame(120, 64),
		uniformFrame(100, 64),
	}

	scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 3)
	if err != nil {
		t.Fatalf("scanScenes failed: %v", err)
	}

	if len(scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(scenes))
	}
}

func TestScanScenesFewerThanTwoSamples(t *testing.T) {
	for _, frames := range [][][]byte{nil, {uniformFrame(50, 64)}} {
		scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 7.5)
		if err != nil {
			t.Fatalf("scanScenes failed: %v", err)
		}
		if len(scenes) != 1 {
			t.Fatalf("expected 1 scene for %d samples, got %d", len(frames), len(scenes))
		}
		if scenes[0].Start != 0 || scenes[0].End != 7.5 {
			t.Errorf("scene does not span asset: %+v", scenes[0])
		}
	}
}

func TestScanScenesFinalSceneClosesAtTrueEnd(t *testing.T) {
	// Samples stop at t=3 but the asset runs 4.7s; coverage must still
	// reach the true end
	frames := [][]byte{
		uniformFrame(0, 64),
		uniformFrame(0, 64),
		uniformFrame(255, 64),
		uniformFrame(255, 64),
	}

	scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 4.7)
	if err != nil {
		t.Fatalf("scanScenes failed: %v", err)
	}
	assertPartition(t, scenes, 4.7)
}

func TestScanScenesCutAtDurationIgnored(t *testing.T) {
	// A diff spike on the very last sample must not open a zero-length
	// scene past the asset end
	frames := [][]byte{
		uniformFrame(0, 64),
		uniformFrame(0, 64),
		uniformFrame(255, 64),
	}

	scenes, err := testSegmenter().scanScenes(&fakeFrames{frames: frames, interval: 1}, 2)
	if err != nil {
		t.Fatalf("scanScenes failed: %v", err)
	}
	for _, scene := range scenes {
		if scene.Start >= scene.End {
			t.Errorf("degenerate scene %+v", scene)
		}
	}
	assertPartition(t, scenes, 2)
}

func TestMeanAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want float64
	}{
		{"identical", []byte{10, 20, 30}, []byte{10, 20, 30}, 0},
		{"max", []byte{0, 0}, []byte{255, 255}, 255},
		{"mixed", []byte{10, 250}, []byte{20, 240}, 10},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meanAbsDiff(tt.a, tt.b); got != tt.want {
				t.Errorf("meanAbsDiff = %f, want %f", got, tt.want)
			}
		})
	}
}
