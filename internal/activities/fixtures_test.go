package activities_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/kv"
)

var errStoreDown = errors.New("store down")

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (failingStore) Set(context.Context, string, string) error         { return errStoreDown }
func (failingStore) Remove(context.Context, string) error              { return errStoreDown }

// stallingStore blocks the first Get after it has read from the wrapped store,
// until resume is closed
type stallingStore struct {
	kv.Store
	started atomic.Bool
	stalled chan struct{}
	resume  chan struct{}
}

func newStallingStore(next kv.Store) *stallingStore {
	return &stallingStore{
		Store:   next,
		stalled: make(chan struct{}),
		resume:  make(chan struct{}),
	}
}

func (s *stallingStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, found, err := s.Store.Get(ctx, key)
	if s.started.CompareAndSwap(false, true) {
		close(s.stalled)
		<-s.resume
	}
	return value, found, err
}

func newTestRepo(t *testing.T) (*activities.Repo, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	return activities.NewRepo(store), store
}

func fakeActivity(faker *gofakeit.Faker) activities.Activity {
	types := []string{"swim", "bike", "run", "recovery", "strength", "alternative", "competition", "other"}
	intensities := []string{"I1", "I2", "I3", "I4", "I5", "I6", "I7"}
	date := faker.DateRange(
		mustDate("2024-01-01"),
		mustDate("2024-12-31"),
	)
	return activities.Activity{
		Date:      date.Format("2006-01-02"),
		Type:      activities.ActivityType(faker.RandomString(types)),
		Intensity: activities.Intensity(faker.RandomString(intensities)),
		Time:      fmt.Sprintf("%d:%02d", faker.Number(0, 3), faker.Number(0, 59)),
		Distance:  activities.Distance(faker.Float64Range(0, 42)),
		Details:   faker.Sentence(4),
		Feeling:   activities.FeelingGood,
		Rating:    activities.Rating(faker.Number(1, 5)),
	}
}
