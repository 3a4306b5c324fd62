package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/guard"
	"junkfactory/pkg/history"
	"junkfactory/pkg/models"
	"junkfactory/pkg/server"
	"junkfactory/pkg/sparse"
)

type enoughSpace struct{}

func (enoughSpace) HasEnoughSpace(string, int64) bool { return true }

type fixedVolumes struct{}

func (fixedVolumes) Usage(path string) (*models.DiskUsage, error) {
	return &models.DiskUsage{Path: path, Volume: "/", SpaceAvailable: 1 << 30, TotalSpace: 1 << 31}, nil
}

// ClientTestSuite tests the client against a real control surface
type ClientTestSuite struct {
	suite.Suite
	fs      afero.Fs
	engine  *engine.Engine
	history *history.Store
	httpSrv *httptest.Server
	client  *Client
	ctx     context.Context
}

// SetupTest runs before each test
func (s *ClientTestSuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.fs = afero.NewMemMapFs()
	s.history, err = history.NewMemoryStore()
	s.Require().NoError(err)

	s.engine = engine.New(
		engine.WithFs(s.fs),
		engine.WithClock(clockwork.NewFakeClock()),
		engine.WithGuard(guard.NewPolicy("linux", "", guard.InvalidTokens)),
		engine.WithSpaceChecker(enoughSpace{}),
		engine.WithAllocator(sparse.AllocatorFunc(func(string, int64) bool { return false })),
		engine.WithRecorder(s.history),
	)
	s.httpSrv = httptest.NewServer(server.New(s.engine, s.history, fixedVolumes{}, "test").Handler())
	s.client = New(s.httpSrv.URL, 2, time.Millisecond, 5*time.Millisecond, 5*time.Second)
}

// TearDownTest runs after each test
func (s *ClientTestSuite) TearDownTest() {
	s.httpSrv.Close()
	s.history.Close()
}

// TestSubmitAndPoll tests a full allocation through the API
func (s *ClientTestSuite) TestSubmitAndPoll() {
	id, err := s.client.Submit(s.ctx, models.SubmitRequest{
		Directory: "/data", Filename: "junk.bin", Size: 3, Unit: "KB",
	})
	s.Require().NoError(err)
	s.NotEmpty(id)
	s.engine.Wait()

	events, err := s.client.Poll(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	terminal := events[len(events)-1]
	s.Require().True(terminal.Terminal())
	s.Equal(id, terminal.Outcome.RequestID)
	s.Equal(int64(3072), terminal.Outcome.BytesWritten)

	events, err = s.client.Poll(s.ctx)
	s.Require().NoError(err)
	s.Empty(events)

	status, err := s.client.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(string(engine.StateDone), status.State)
	s.False(status.Busy)

	records, err := s.client.History(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(id, records[0].Request.ID)
}

// TestSubmitInvalid tests that a 400 maps to the invalid request sentinel
func (s *ClientTestSuite) TestSubmitInvalid() {
	_, err := s.client.Submit(s.ctx, models.SubmitRequest{Directory: "/data", Filename: "", Size: 1, Unit: "B"})
	s.ErrorIs(err, models.ErrInvalidRequest)

	var statusErr *StatusError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusBadRequest, statusErr.StatusCode)
	s.Contains(statusErr.Message, "filename is required")
}

// TestCheckPath tests the browse contract through the API
func (s *ClientTestSuite) TestCheckPath() {
	allowed, err := s.client.CheckPath(s.ctx, "/data/out")
	s.Require().NoError(err)
	s.True(allowed.Allowed)

	rejected, err := s.client.CheckPath(s.ctx, "/etc")
	s.Require().NoError(err)
	s.False(rejected.Allowed)
	s.Equal("/etc is a protected system location", rejected.Reason)
}

// TestVolume tests the disk usage call
func (s *ClientTestSuite) TestVolume() {
	usage, err := s.client.Volume(s.ctx, "/data with space")
	s.Require().NoError(err)
	s.Equal("/data with space", usage.Path)
	s.Equal(uint64(1<<30), usage.SpaceAvailable)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// RetryTestSuite tests the retry policy
type RetryTestSuite struct {
	suite.Suite
}

// TestHTTPErrorsAreNotRetried tests that a response is returned as is
func (s *RetryTestSuite) TestHTTPErrorsAreNotRetried() {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"down for maintenance"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 3, time.Millisecond, time.Millisecond, time.Second)
	_, err := c.Status(context.Background())

	var statusErr *StatusError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusServiceUnavailable, statusErr.StatusCode)
	s.Equal("down for maintenance", statusErr.Message)
	s.Equal(int32(1), calls.Load())
}

// TestConflictMapsToBusy tests the busy sentinel
func (s *RetryTestSuite) TestConflictMapsToBusy() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0, time.Millisecond, time.Millisecond, time.Second).
		Submit(context.Background(), models.SubmitRequest{})
	s.ErrorIs(err, engine.ErrBusy)
}

// TestConnectionErrorsAreRetried tests retries against a closed port
func (s *RetryTestSuite) TestConnectionErrorsAreRetried() {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	addr := listener.Addr().String()
	s.Require().NoError(listener.Close())

	c := New("http://"+addr, 2, time.Millisecond, time.Millisecond, time.Second)
	_, err = c.Status(context.Background())
	s.Error(err)
	s.Contains(err.Error(), "giving up after 3 attempt(s)")
}

// TestRetryPolicy tests the decision table
func (s *RetryTestSuite) TestRetryPolicy() {
	ctx := context.Background()
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	tests := []struct {
		name  string
		ctx   context.Context
		resp  *http.Response
		err   error
		retry bool
	}{
		{"response", ctx, &http.Response{StatusCode: http.StatusInternalServerError}, nil, false},
		{"connection error", ctx, nil, errors.New("connection refused"), true},
		{"nothing", ctx, nil, nil, false},
		{"cancelled", cancelled, nil, errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			retry, _ := customRetryPolicy(tt.ctx, tt.resp, tt.err)
			s.Equal(tt.retry, retry)
		})
	}
}

func TestRetrySuite(t *testing.T) {
	suite.Run(t, new(RetryTestSuite))
}
