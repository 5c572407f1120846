package bot

import (
	"sync"
	"time"

	"groombot/internal/booking"
	"groombot/internal/groomapi"
	"groombot/internal/model"
)

type flowStep string

const (
	stepNone flowStep = "none"

	stepLoginEmail    flowStep = "login_email"
	stepLoginPassword flowStep = "login_password"

	stepRegisterName     flowStep = "register_name"
	stepRegisterEmail    flowStep = "register_email"
	stepRegisterPassword flowStep = "register_password"
	stepRegisterDogName  flowStep = "register_dog_name"
	stepRegisterDogBreed flowStep = "register_dog_breed"
	stepRegisterDogAge   flowStep = "register_dog_age"

	stepDogName  flowStep = "dog_name"
	stepDogBreed flowStep = "dog_breed"
	stepDogAge   flowStep = "dog_age"
)

// userState is the per-user flow state. The update loop is the only writer;
// fetch goroutines never touch it and report back over channels instead.
type userState struct {
	Step flowStep

	// Booking view state.
	Selection *booking.Selection
	Services  []model.Service
	Dogs      []model.Dog
	CalYear   int
	CalMonth  time.Month
	Marked    map[string]struct{}

	// At most one booking submission may be in flight (guarded by the
	// update loop, reset when the submit result is processed).
	SubmitInFlight bool

	// Login/registration scratch.
	LoginEmail string
	Register   groomapi.RegisterRequest

	// Dog form scratch. EditDogID == 0 means "add".
	DogForm   groomapi.DogRequest
	EditDogID int64
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*userState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*userState)}
}

func (s *stateStore) get(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userState{Step: stepNone, Selection: booking.NewSelection()}
		s.m[userID] = st
	}
	return st
}

func (s *stateStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
