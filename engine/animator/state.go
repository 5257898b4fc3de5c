package animator

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/common/logging"
	"github.com/Carmen-Shannon/anim-go/engine/clip"
	"github.com/Carmen-Shannon/anim-go/engine/skeleton"
)

// LoopMode controls what happens when playback time reaches the end of the
// clip.
type LoopMode int

const (
	// LoopNone clamps time at the clip's duration and finishes playback.
	LoopNone LoopMode = iota

	// LoopRepeat wraps time modulo the clip's duration and keeps playing.
	LoopRepeat
)

// animationState is the implementation of the AnimationState interface.
type animationState struct {
	currentClip clip.Clip
	currentTime float32
	speed       float32
	loop        LoopMode
	playing     bool
	finished    bool

	// pose is scratch storage for the direct Update path, sized to the
	// skeleton it last drove.
	pose []common.Transform
}

// AnimationState tracks playback of exactly one clip: current time, speed,
// loop mode, and the playing flag. It is a small state machine over the
// states Stopped, Playing, Paused, and Finished (the last only reachable
// with LoopNone when time reaches the clip duration).
//
// One AnimationState exists per controller layer; it may also drive a
// skeleton directly through Update as a simplified single-track path below
// the controller.
type AnimationState interface {
	// Play starts playback of a clip from time zero. Legal from any state.
	//
	// Parameters:
	//   - c: the clip to play (must not be nil)
	//   - speed: the playback speed multiplier (must be > 0)
	//   - loop: the loop mode
	//
	// Returns:
	//   - error: ErrInvalidArgument if c is nil or speed is not positive
	Play(c clip.Clip, speed float32, loop LoopMode) error

	// Pause suspends playback, keeping the clip and current time.
	//
	// Returns:
	//   - error: ErrInvalidState if the state is not currently playing
	//     (recoverable; callers may ignore it)
	Pause() error

	// Resume continues playback after a pause.
	//
	// Returns:
	//   - error: ErrAlreadyPlaying if already playing, ErrInvalidState if no
	//     clip is set (both recoverable)
	Resume() error

	// Stop halts playback, clears the clip reference, and resets time to 0.
	// Legal from any state.
	Stop()

	// Advance moves playback time forward without touching any skeleton.
	// Under LoopRepeat, time past the duration wraps modulo the duration;
	// under LoopNone it clamps to the duration and the state transitions to
	// Finished (finishing is success, not an error).
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds, scaled by the playback speed
	//
	// Returns:
	//   - error: ErrInvalidState unless the state is Playing (recoverable)
	Advance(deltaTime float32) error

	// Update advances time like Advance, then samples every bone of the
	// skeleton from the clip (bind pose for bones without a channel) and
	// propagates the resulting local pose through the hierarchy into final
	// skin matrices. This is the single-track path used when a skeleton is
	// driven by one state directly, without a controller.
	//
	// Parameters:
	//   - skel: the skeleton to drive (must not be nil)
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - error: ErrInvalidArgument if skel is nil; ErrInvalidState unless Playing
	Update(skel skeleton.Skeleton, deltaTime float32) error

	// Clip returns the clip being played, or nil when stopped.
	//
	// Returns:
	//   - clip.Clip: the current clip or nil
	Clip() clip.Clip

	// Time returns the current playback position in seconds.
	//
	// Returns:
	//   - float32: the current time
	Time() float32

	// SetTime seeks to a playback position. The position is not wrapped or
	// clamped against the clip duration until the next Advance.
	//
	// Parameters:
	//   - time: the playback time in seconds (must be >= 0)
	//
	// Returns:
	//   - error: ErrInvalidArgument if time is negative
	SetTime(time float32) error

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed multiplier
	Speed() float32

	// SetSpeed sets the playback speed multiplier.
	//
	// Parameters:
	//   - speed: the multiplier (must be > 0; 1.0 = normal, 0.5 = half speed)
	//
	// Returns:
	//   - error: ErrInvalidArgument if speed is not positive
	SetSpeed(speed float32) error

	// Loop returns the loop mode set by the last Play.
	//
	// Returns:
	//   - LoopMode: the loop mode
	Loop() LoopMode

	// Playing reports whether the state is actively playing.
	//
	// Returns:
	//   - bool: true if Playing
	Playing() bool

	// Finished reports whether a LoopNone playback has reached the clip's
	// duration.
	//
	// Returns:
	//   - bool: true if Finished
	Finished() bool

	// BoneLocal samples the current clip for the named bone at the current
	// playback time. The second return is false when no clip is set or the
	// clip has no channel for the bone; callers fall back to the bind pose.
	//
	// Parameters:
	//   - boneName: the bone to sample
	//
	// Returns:
	//   - common.Transform: the sampled bone-local transform
	//   - bool: true if the clip animates this bone
	BoneLocal(boneName string) (common.Transform, bool)
}

var _ AnimationState = &animationState{}

// NewAnimationState creates a new animation state in the Stopped state.
//
// Returns:
//   - AnimationState: the new state
func NewAnimationState() AnimationState {
	return &animationState{speed: 1.0}
}

func (s *animationState) Play(c clip.Clip, speed float32, loop LoopMode) error {
	if c == nil {
		return fmt.Errorf("animation state: play requires a non-nil clip: %w", common.ErrInvalidArgument)
	}
	if speed <= 0 {
		return fmt.Errorf("animation state: play speed %v must be positive: %w", speed, common.ErrInvalidArgument)
	}

	s.currentClip = c
	s.currentTime = 0
	s.speed = speed
	s.loop = loop
	s.playing = true
	s.finished = false
	logging.Debug("animation state playing", "clip", c.Name(), "speed", speed, "loop", loop)
	return nil
}

func (s *animationState) Pause() error {
	if !s.playing {
		logging.Warn("pause ignored: state is not playing")
		return fmt.Errorf("animation state: pause while not playing: %w", common.ErrInvalidState)
	}
	s.playing = false
	return nil
}

func (s *animationState) Resume() error {
	if s.playing {
		logging.Warn("resume ignored: state is already playing")
		return fmt.Errorf("animation state: %w", common.ErrAlreadyPlaying)
	}
	if s.currentClip == nil {
		logging.Warn("resume ignored: no clip set")
		return fmt.Errorf("animation state: resume with no clip: %w", common.ErrInvalidState)
	}
	s.playing = true
	s.finished = false
	return nil
}

func (s *animationState) Stop() {
	s.currentClip = nil
	s.currentTime = 0
	s.playing = false
	s.finished = false
}

func (s *animationState) Advance(deltaTime float32) error {
	if !s.playing || s.currentClip == nil {
		return fmt.Errorf("animation state: advance while not playing: %w", common.ErrInvalidState)
	}

	s.currentTime += deltaTime * s.speed

	duration := s.currentClip.Duration()
	if s.currentTime >= duration {
		switch s.loop {
		case LoopRepeat:
			if duration > 0 {
				s.currentTime = float32(math.Mod(float64(s.currentTime), float64(duration)))
			}
		case LoopNone:
			s.currentTime = duration
			s.playing = false
			s.finished = true
			logging.Debug("animation state finished", "clip", s.currentClip.Name())
		}
	}
	return nil
}

func (s *animationState) Update(skel skeleton.Skeleton, deltaTime float32) error {
	if skel == nil {
		return fmt.Errorf("animation state: update requires a non-nil skeleton: %w", common.ErrInvalidArgument)
	}
	if err := s.Advance(deltaTime); err != nil {
		return err
	}

	count := skel.BoneCount()
	if cap(s.pose) < count {
		s.pose = make([]common.Transform, count)
	}
	s.pose = s.pose[:count]

	for i := int32(0); i < int32(count); i++ {
		bone, err := skel.Bone(i)
		if err != nil {
			return err
		}
		if local, ok := s.BoneLocal(bone.Name); ok {
			s.pose[i] = local
		} else {
			s.pose[i] = bone.LocalBind
		}
	}

	return skel.ApplyLocalPose(s.pose)
}

func (s *animationState) Clip() clip.Clip {
	return s.currentClip
}

func (s *animationState) Time() float32 {
	return s.currentTime
}

func (s *animationState) SetTime(time float32) error {
	if time < 0 {
		return fmt.Errorf("animation state: time %v must not be negative: %w", time, common.ErrInvalidArgument)
	}
	s.currentTime = time
	return nil
}

func (s *animationState) Speed() float32 {
	return s.speed
}

func (s *animationState) SetSpeed(speed float32) error {
	if speed <= 0 {
		return fmt.Errorf("animation state: speed %v must be positive: %w", speed, common.ErrInvalidArgument)
	}
	s.speed = speed
	return nil
}

func (s *animationState) Loop() LoopMode {
	return s.loop
}

func (s *animationState) Playing() bool {
	return s.playing
}

func (s *animationState) Finished() bool {
	return s.finished
}

func (s *animationState) BoneLocal(boneName string) (common.Transform, bool) {
	if s.currentClip == nil {
		return common.IdentityTransform(), false
	}
	return s.currentClip.SampleBone(boneName, s.currentTime)
}
