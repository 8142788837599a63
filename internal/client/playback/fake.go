package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
	"github.com/dmitrijs2005/alarmify/internal/common"
)

// PlayCall records one Play invocation on the fake.
type PlayCall struct {
	DeviceID   string
	PlaylistID string
	Volume     int
}

// Fake is an in-memory Player and DeviceDirectory. It backs the dry-run
// mode of the CLI and the wake monitor tests: reachability per device is
// controlled by the caller and can change between polls.
type Fake struct {
	mu        sync.Mutex
	devices   []models.PlaybackTarget
	reachable map[string]bool
	failPlay  bool
	plays     []PlayCall
	attempts  int
	wakes     []string
	volumes   map[string]int
}

func NewFake(devices ...models.PlaybackTarget) *Fake {
	f := &Fake{
		devices:   devices,
		reachable: make(map[string]bool),
		volumes:   make(map[string]int),
	}
	for _, d := range devices {
		f.reachable[d.ID] = true
	}
	return f
}

// SetReachable toggles whether the device answers reachability probes.
func (f *Fake) SetReachable(deviceID string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reachable[deviceID] = ok
}

// FailPlay makes subsequent Play calls return a playback failure.
func (f *Fake) FailPlay(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPlay = fail
}

// Plays returns the recorded successful Play calls.
func (f *Fake) Plays() []PlayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PlayCall(nil), f.plays...)
}

// PlayAttempts returns how many times Play was invoked, including
// invocations that failed.
func (f *Fake) PlayAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// Wakes returns the device IDs that received a wake request, in order.
func (f *Fake) Wakes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.wakes...)
}

func (f *Fake) Play(ctx context.Context, deviceID, playlistID string, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failPlay {
		return fmt.Errorf("%w: device %s rejected start", common.ErrPlaybackFailure, deviceID)
	}
	if !f.reachable[deviceID] {
		return fmt.Errorf("%w: device %s not reachable", common.ErrPlaybackFailure, deviceID)
	}
	f.plays = append(f.plays, PlayCall{DeviceID: deviceID, PlaylistID: playlistID, Volume: volume})
	f.volumes[deviceID] = volume
	return nil
}

func (f *Fake) SetVolume(ctx context.Context, deviceID string, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.reachable[deviceID] {
		return fmt.Errorf("%w: device %s not reachable", common.ErrPlaybackFailure, deviceID)
	}
	f.volumes[deviceID] = volume
	return nil
}

func (f *Fake) Wake(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakes = append(f.wakes, deviceID)
	return nil
}

func (f *Fake) IsReachable(ctx context.Context, deviceID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reachable[deviceID], nil
}

func (f *Fake) ListDevices(ctx context.Context) ([]models.PlaybackTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PlaybackTarget(nil), f.devices...), nil
}
