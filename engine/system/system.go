package system

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"github.com/Carmen-Shannon/anim-go/engine/profiler"
	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Entity pairs a controller with its identity in the system's registry.
type Entity struct {
	// ID is the system-assigned identifier.
	ID uint64

	// Controller drives the entity's skeleton.
	Controller animator.Controller
}

// System updates a collection of animation controllers each frame, fanning
// the per-controller work out across a bounded worker pool. Each controller
// drives its own skeleton, so no two tasks share mutable state and the
// whole frame joins on a single barrier.
//
// Registry access is thread-safe; Update itself must not run concurrently
// with another Update on the same system.
type System interface {
	// Add registers a controller and assigns it an ID.
	//
	// Parameters:
	//   - ctrl: the controller to register (must not be nil)
	//
	// Returns:
	//   - uint64: the assigned entity ID
	//   - error: ErrInvalidArgument if ctrl is nil
	Add(ctrl animator.Controller) (uint64, error)

	// Get retrieves a registered controller by ID.
	//
	// Parameters:
	//   - id: the entity ID
	//
	// Returns:
	//   - animator.Controller: the controller or nil
	Get(id uint64) animator.Controller

	// Remove unregisters an entity by ID. Removing an unknown ID is a no-op.
	//
	// Parameters:
	//   - id: the entity ID
	Remove(id uint64)

	// Count returns the number of registered entities.
	//
	// Returns:
	//   - int: the entity count
	Count() int

	// Clear removes all entities from the registry.
	Clear()

	// Update advances every registered controller by deltaTime, one pool
	// task per controller, and waits for all of them to finish. The first
	// controller error observed is returned after the barrier; the remaining
	// controllers still complete their updates.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: the first controller update error, or nil
	Update(deltaTime float32) error

	// Entities returns a snapshot of the registered entities in unspecified
	// order.
	//
	// Returns:
	//   - []Entity: the registered entities
	Entities() []Entity
}

type system struct {
	mu *sync.RWMutex

	registry map[uint64]animator.Controller
	nextID   uint64

	// updatePool manages a bounded set of reusable goroutines for the
	// parallel controller update phase. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int // stored so we can log/inspect the configured count

	prof *profiler.Profiler
}

// Ensure system implements System interface.
var _ System = &system{}

// NewSystem creates a new System with an empty registry and a running
// worker pool. The worker count defaults to runtime.NumCPU()-1 (minimum 1)
// and can be overridden with WithWorkers.
//
// Parameters:
//   - options: functional options to further configure the system
//
// Returns:
//   - System: the newly created system
func NewSystem(options ...SystemBuilderOption) System {
	s := &system{
		mu:            &sync.RWMutex{},
		registry:      make(map[uint64]animator.Controller),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	// Queue size of 256 accommodates typical entity counts with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	return s
}

func (s *system) Add(ctrl animator.Controller) (uint64, error) {
	if ctrl == nil {
		return 0, fmt.Errorf("system: add requires a non-nil controller: %w", common.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.registry[id] = ctrl
	return id, nil
}

func (s *system) Get(id uint64) animator.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *system) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *system) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *system) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]animator.Controller)
}

func (s *system) Update(deltaTime float32) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()

	// One task per controller. Controllers own disjoint skeletons, so tasks
	// never contend; the WaitGroup is the frame barrier.
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	taskID := 0
	for id, ctrl := range s.registry {
		wg.Add(1)
		ctrlCap := ctrl // capture for closure
		entityID := id
		s.updatePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctrlCap.Update(deltaTime); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("system: entity %d: %w", entityID, err)
					}
					errMu.Unlock()
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()

	if s.prof != nil {
		s.prof.Tick(time.Since(start))
	}
	return firstErr
}

func (s *system) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0, len(s.registry))
	for id, ctrl := range s.registry {
		out = append(out, Entity{ID: id, Controller: ctrl})
	}
	return out
}
