package clip

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/anim-go/common"
)

const epsilon = 1e-5

func floatNear(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vecNear(a, b [3]float32) bool {
	return floatNear(a[0], b[0]) && floatNear(a[1], b[1]) && floatNear(a[2], b[2])
}

func TestNewClipValidation(t *testing.T) {
	tests := []struct {
		name     string
		clipName string
		duration float32
		tps      float32
		wantErr  bool
	}{
		{"valid", "walk", 2.0, 30, false},
		{"empty name", "", 2.0, 30, true},
		{"zero duration", "walk", 0, 30, true},
		{"negative duration", "walk", -1, 30, true},
		{"zero tps", "walk", 2.0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClip(tt.clipName, tt.duration, tt.tps)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidArgument) {
					t.Errorf("NewClip error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClip returned unexpected error: %v", err)
			}
			if c.Name() != tt.clipName || c.Duration() != tt.duration || c.TicksPerSecond() != tt.tps {
				t.Errorf("clip fields = (%q, %v, %v), want (%q, %v, %v)",
					c.Name(), c.Duration(), c.TicksPerSecond(), tt.clipName, tt.duration, tt.tps)
			}
		})
	}
}

func TestAddBoneChannelIdempotent(t *testing.T) {
	c, err := NewClip("walk", 2.0, 30)
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}

	first, err := c.AddBoneChannel("spine")
	if err != nil {
		t.Fatalf("AddBoneChannel: %v", err)
	}
	second, err := c.AddBoneChannel("spine")
	if err != nil {
		t.Fatalf("duplicate AddBoneChannel: %v", err)
	}
	if first != second {
		t.Error("duplicate AddBoneChannel returned a different channel")
	}
	if c.ChannelCount() != 1 {
		t.Errorf("ChannelCount = %d, want 1", c.ChannelCount())
	}

	if _, err := c.AddBoneChannel(""); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("empty bone name error = %v, want ErrInvalidArgument", err)
	}
}

func TestChannelLookup(t *testing.T) {
	c, _ := NewClip("walk", 2.0, 30, WithBoneChannels("hips", "spine"))

	idx, ok := c.ChannelIndex("spine")
	if !ok || idx != 1 {
		t.Errorf("ChannelIndex(spine) = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := c.ChannelIndex("tail"); ok {
		t.Error("ChannelIndex found a channel that was never added")
	}

	if _, err := c.Channel(5); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Channel(5) error = %v, want ErrNotFound", err)
	}
	ch, err := c.Channel(0)
	if err != nil || ch.BoneName != "hips" {
		t.Errorf("Channel(0) = (%v, %v), want hips channel", ch, err)
	}
}

func TestNegativeKeyTimes(t *testing.T) {
	ch := &BoneChannel{BoneName: "hips"}
	if err := ch.AddPositionKey(-0.1, [3]float32{}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("AddPositionKey(-0.1) error = %v, want ErrInvalidArgument", err)
	}
	if err := ch.AddRotationKey(-0.1, [4]float32{0, 0, 0, 1}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("AddRotationKey(-0.1) error = %v, want ErrInvalidArgument", err)
	}
	if err := ch.AddScaleKey(-0.1, [3]float32{1, 1, 1}); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("AddScaleKey(-0.1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSampleEmptyChannel(t *testing.T) {
	ch := &BoneChannel{BoneName: "hips"}
	got := ch.Sample(0.5)
	want := common.IdentityTransform()
	if got != want {
		t.Errorf("Sample on empty channel = %v, want identity transform", got)
	}
}

func TestSingleKeyframeInvariance(t *testing.T) {
	ch := &BoneChannel{BoneName: "hips"}
	if err := ch.AddPositionKey(1.0, [3]float32{3, 4, 5}); err != nil {
		t.Fatalf("AddPositionKey: %v", err)
	}

	for _, queryTime := range []float32{-100, -1, 0, 0.5, 1.0, 2.0, 1e6} {
		got := ch.Sample(queryTime)
		if !vecNear(got.Translation, [3]float32{3, 4, 5}) {
			t.Errorf("Sample(%v).Translation = %v, want (3, 4, 5)", queryTime, got.Translation)
		}
	}
}

func TestInterpolationClampToEdge(t *testing.T) {
	ch := &BoneChannel{BoneName: "hips"}
	_ = ch.AddPositionKey(1.0, [3]float32{0, 0, 0})
	_ = ch.AddPositionKey(2.0, [3]float32{10, 0, 0})

	tests := []struct {
		name string
		time float32
		want [3]float32
	}{
		{"before first", 0.5, [3]float32{0, 0, 0}},
		{"at first", 1.0, [3]float32{0, 0, 0}},
		{"midpoint", 1.5, [3]float32{5, 0, 0}},
		{"at last", 2.0, [3]float32{10, 0, 0}},
		{"past last", 3.0, [3]float32{10, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ch.Sample(tt.time)
			if !vecNear(got.Translation, tt.want) {
				t.Errorf("Sample(%v).Translation = %v, want %v", tt.time, got.Translation, tt.want)
			}
		})
	}
}

func TestInterpolationZeroSpanPair(t *testing.T) {
	// Two keyframes at the same timestamp: the factor collapses to 0 and the
	// first value of the pair wins, no NaNs.
	ch := &BoneChannel{BoneName: "hips"}
	_ = ch.AddPositionKey(1.0, [3]float32{1, 1, 1})
	_ = ch.AddPositionKey(1.0, [3]float32{9, 9, 9})

	got := ch.Sample(1.0)
	if !vecNear(got.Translation, [3]float32{1, 1, 1}) {
		t.Errorf("Sample(1.0).Translation = %v, want (1, 1, 1)", got.Translation)
	}
}

func TestRotationInterpolation(t *testing.T) {
	qz90 := [4]float32{0, 0, float32(math.Sin(math.Pi / 4)), float32(math.Cos(math.Pi / 4))}
	qz45 := [4]float32{0, 0, float32(math.Sin(math.Pi / 8)), float32(math.Cos(math.Pi / 8))}

	ch := &BoneChannel{BoneName: "hips"}
	_ = ch.AddRotationKey(0, [4]float32{0, 0, 0, 1})
	_ = ch.AddRotationKey(1.0, qz90)

	got := ch.Sample(0.5)
	for i := range got.Rotation {
		if !floatNear(got.Rotation[i], qz45[i]) {
			t.Fatalf("Sample(0.5).Rotation = %v, want %v", got.Rotation, qz45)
		}
	}
}

func TestSampleBone(t *testing.T) {
	c, _ := NewClip("walk", 2.0, 30)
	ch, _ := c.AddBoneChannel("hips")
	_ = ch.AddPositionKey(0, [3]float32{0, 0, 0})
	_ = ch.AddPositionKey(2.0, [3]float32{4, 0, 0})

	got, ok := c.SampleBone("hips", 1.0)
	if !ok || !vecNear(got.Translation, [3]float32{2, 0, 0}) {
		t.Errorf("SampleBone(hips, 1.0) = (%v, %v), want ((2, 0, 0), true)", got.Translation, ok)
	}

	if _, ok := c.SampleBone("tail", 1.0); ok {
		t.Error("SampleBone found a bone the clip does not animate")
	}
}
