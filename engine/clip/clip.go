package clip

import (
	"fmt"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/common/logging"
)

// clip is the implementation of the Clip interface.
type clip struct {
	name           string
	duration       float32
	ticksPerSecond float32

	channels     []*BoneChannel
	channelIndex map[string]int
}

// Clip defines the public interface for an animation clip: an immutable,
// named, fixed-duration set of per-bone keyframe channels.
//
// A Clip has two phases. During authoring, AddBoneChannel and the channel
// Add*Key methods build up keyframe data (append-only). After authoring the
// clip must be treated as read-only; in that state it is safe to share one
// Clip across any number of controllers and goroutines concurrently. The
// clip is never owned by a controller — the creator owns it and must keep
// it alive for as long as any controller references it.
type Clip interface {
	// Name returns the clip's identifier, unique per controller registry.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// Duration returns the total length of the clip in seconds.
	//
	// Returns:
	//   - float32: the clip duration
	Duration() float32

	// TicksPerSecond returns the authored sample rate of the clip.
	//
	// Returns:
	//   - float32: the tick rate
	TicksPerSecond() float32

	// AddBoneChannel adds a keyframe channel for the named bone and returns
	// it. Adding a channel for a name that already exists is idempotent: the
	// existing channel is returned and a warning is logged, storage is
	// unchanged.
	//
	// Parameters:
	//   - boneName: the skeleton bone the channel animates
	//
	// Returns:
	//   - *BoneChannel: the new or existing channel
	//   - error: ErrInvalidArgument if boneName is empty
	AddBoneChannel(boneName string) (*BoneChannel, error)

	// ChannelIndex looks up a channel by bone name.
	//
	// Parameters:
	//   - boneName: the bone name to look up
	//
	// Returns:
	//   - int: the channel index
	//   - bool: true if a channel exists for the bone
	ChannelIndex(boneName string) (int, bool)

	// Channel returns the channel at the given index.
	//
	// Parameters:
	//   - index: the channel index
	//
	// Returns:
	//   - *BoneChannel: the channel
	//   - error: ErrNotFound if index is out of range
	Channel(index int) (*BoneChannel, error)

	// ChannelCount returns the number of bone channels in the clip.
	//
	// Returns:
	//   - int: the channel count
	ChannelCount() int

	// SampleBone returns the interpolated local transform of the named bone
	// at the given time. The second return is false when the clip has no
	// channel for the bone, in which case callers fall back to the bind pose.
	//
	// Parameters:
	//   - boneName: the bone to sample
	//   - time: the query time in seconds
	//
	// Returns:
	//   - common.Transform: the interpolated bone-local transform
	//   - bool: true if the clip animates this bone
	SampleBone(boneName string, time float32) (common.Transform, bool)
}

var _ Clip = &clip{}

// NewClip creates a new animation clip.
//
// Parameters:
//   - name: the clip identifier
//   - duration: the total clip length in seconds (must be > 0)
//   - ticksPerSecond: the authored sample rate (must be > 0)
//   - options: functional options applied after validation
//
// Returns:
//   - Clip: the new clip, nil on error
//   - error: ErrInvalidArgument if name is empty or duration/ticksPerSecond are non-positive
func NewClip(name string, duration, ticksPerSecond float32, options ...ClipBuilderOption) (Clip, error) {
	if name == "" {
		return nil, fmt.Errorf("clip: name must not be empty: %w", common.ErrInvalidArgument)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("clip %q: duration %v must be positive: %w", name, duration, common.ErrInvalidArgument)
	}
	if ticksPerSecond <= 0 {
		return nil, fmt.Errorf("clip %q: ticksPerSecond %v must be positive: %w", name, ticksPerSecond, common.ErrInvalidArgument)
	}

	c := &clip{
		name:           name,
		duration:       duration,
		ticksPerSecond: ticksPerSecond,
		channelIndex:   make(map[string]int),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *clip) Name() string {
	return c.name
}

func (c *clip) Duration() float32 {
	return c.duration
}

func (c *clip) TicksPerSecond() float32 {
	return c.ticksPerSecond
}

func (c *clip) AddBoneChannel(boneName string) (*BoneChannel, error) {
	if boneName == "" {
		return nil, fmt.Errorf("clip %q: bone name must not be empty: %w", c.name, common.ErrInvalidArgument)
	}

	if idx, ok := c.channelIndex[boneName]; ok {
		logging.Warn("duplicate bone channel, returning existing", "clip", c.name, "bone", boneName)
		return c.channels[idx], nil
	}

	ch := &BoneChannel{BoneName: boneName}
	c.channelIndex[boneName] = len(c.channels)
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *clip) ChannelIndex(boneName string) (int, bool) {
	idx, ok := c.channelIndex[boneName]
	return idx, ok
}

func (c *clip) Channel(index int) (*BoneChannel, error) {
	if index < 0 || index >= len(c.channels) {
		return nil, fmt.Errorf("clip %q: channel index %d out of range [0, %d): %w", c.name, index, len(c.channels), common.ErrNotFound)
	}
	return c.channels[index], nil
}

func (c *clip) ChannelCount() int {
	return len(c.channels)
}

func (c *clip) SampleBone(boneName string, time float32) (common.Transform, bool) {
	idx, ok := c.channelIndex[boneName]
	if !ok {
		return common.IdentityTransform(), false
	}
	return c.channels[idx].Sample(time), true
}

// --- Channel Authoring ---

// AddPositionKey appends a translation keyframe to the channel. Keyframes
// must be appended in non-decreasing time order; the channel does not sort.
//
// Parameters:
//   - time: the keyframe timestamp in seconds (must be >= 0)
//   - value: the translation at this keyframe
//
// Returns:
//   - error: ErrInvalidArgument if time is negative
func (ch *BoneChannel) AddPositionKey(time float32, value [3]float32) error {
	if time < 0 {
		return fmt.Errorf("channel %q: position key time %v must not be negative: %w", ch.BoneName, time, common.ErrInvalidArgument)
	}
	ch.PositionKeys = append(ch.PositionKeys, VectorKeyframe{Time: time, Value: value})
	return nil
}

// AddRotationKey appends a rotation keyframe to the channel. Keyframes must
// be appended in non-decreasing time order; the channel does not sort.
//
// Parameters:
//   - time: the keyframe timestamp in seconds (must be >= 0)
//   - value: the rotation quaternion (x, y, z, w) at this keyframe
//
// Returns:
//   - error: ErrInvalidArgument if time is negative
func (ch *BoneChannel) AddRotationKey(time float32, value [4]float32) error {
	if time < 0 {
		return fmt.Errorf("channel %q: rotation key time %v must not be negative: %w", ch.BoneName, time, common.ErrInvalidArgument)
	}
	ch.RotationKeys = append(ch.RotationKeys, QuaternionKeyframe{Time: time, Value: value})
	return nil
}

// AddScaleKey appends a scale keyframe to the channel. Keyframes must be
// appended in non-decreasing time order; the channel does not sort.
//
// Parameters:
//   - time: the keyframe timestamp in seconds (must be >= 0)
//   - value: the scale at this keyframe
//
// Returns:
//   - error: ErrInvalidArgument if time is negative
func (ch *BoneChannel) AddScaleKey(time float32, value [3]float32) error {
	if time < 0 {
		return fmt.Errorf("channel %q: scale key time %v must not be negative: %w", ch.BoneName, time, common.ErrInvalidArgument)
	}
	ch.ScaleKeys = append(ch.ScaleKeys, VectorKeyframe{Time: time, Value: value})
	return nil
}
