package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"junkfactory/pkg/models"
)

// StoreTestSuite tests the allocation journal
type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	now   time.Time
}

// SetupTest runs before each test
func (s *StoreTestSuite) SetupTest() {
	var err error
	s.store, err = NewMemoryStore()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

// TearDownTest runs after each test
func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreTestSuite) record(id string, outcome models.Outcome) models.AllocationRecord {
	outcome.RequestID = id
	return models.AllocationRecord{
		Request: models.AllocationRequest{
			ID:        id,
			Directory: "/data/out",
			Filename:  "junk.bin",
			Size:      1 << 20,
			Unit:      models.UnitMB,
			UseSparse: true,
		},
		Outcome:    outcome,
		StartedAt:  s.now,
		FinishedAt: s.now.Add(1500 * time.Millisecond),
	}
}

// TestRecordAndList tests a full round trip of a successful allocation
func (s *StoreTestSuite) TestRecordAndList() {
	outcome := models.Success(models.MethodSparse, 1<<20, 20*time.Millisecond)
	outcome.Target = &models.ResolvedTarget{Path: "/data/out/junk1.bin", Filename: "junk1.bin"}
	want := s.record("req-1", outcome)

	s.Require().NoError(s.store.Record(s.ctx, want))

	records, err := s.store.List(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)

	got := records[0]
	s.Equal(want.Request, got.Request)
	s.Equal(want.Outcome, got.Outcome)
	s.True(want.StartedAt.Equal(got.StartedAt))
	s.True(want.FinishedAt.Equal(got.FinishedAt))
}

// TestFailureWithoutTarget tests outcomes that never resolved a name
func (s *StoreTestSuite) TestFailureWithoutTarget() {
	s.Require().NoError(s.store.Record(s.ctx, s.record("req-1", models.PathRejected("/etc is a protected system location"))))

	records, err := s.store.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].Outcome.Target)
	s.Equal(models.OutcomePathRejected, records[0].Outcome.Kind)
	s.Equal("/etc is a protected system location", records[0].Outcome.Reason)
}

// TestListNewestFirstWithLimit tests ordering and limits
func (s *StoreTestSuite) TestListNewestFirstWithLimit() {
	for i := range 5 {
		s.Require().NoError(s.store.Record(s.ctx, s.record(fmt.Sprintf("req-%d", i), models.InsufficientSpace())))
	}

	records, err := s.store.List(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("req-4", records[0].Request.ID)
	s.Equal("req-2", records[2].Request.ID)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(5), count)
}

// TestListEmpty tests that an empty journal yields an empty slice
func (s *StoreTestSuite) TestListEmpty() {
	records, err := s.store.List(s.ctx, 10)
	s.Require().NoError(err)
	s.NotNil(records)
	s.Empty(records)
}

// TestDuplicateRecord tests the unique request id
func (s *StoreTestSuite) TestDuplicateRecord() {
	record := s.record("req-1", models.IOFailure(fmt.Errorf("disk full")))
	s.Require().NoError(s.store.Record(s.ctx, record))
	s.ErrorIs(s.store.Record(s.ctx, record), ErrDuplicateRecord)
}

// TestClosedStore tests that errors are wrapped
func (s *StoreTestSuite) TestClosedStore() {
	s.Require().NoError(s.store.Close())

	_, err := s.store.List(s.ctx, 1)
	s.ErrorIs(err, ErrDatabaseError)
	s.store = nil
}

// TestFileStore tests a journal opened on disk
func (s *StoreTestSuite) TestFileStore() {
	dir, err := os.MkdirTemp("", "history-test-*")
	s.Require().NoError(err)
	defer os.RemoveAll(dir)

	store, err := NewStore(filepath.Join(dir, "history.db"))
	s.Require().NoError(err)
	defer store.Close()

	s.Require().NoError(store.Record(s.ctx, s.record("req-1", models.InsufficientSpace())))
	count, err := store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
