package testutil

import (
	"context"
	"os"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ClickHouseAddrEnv names the environment variable carrying the address
// of a ClickHouse instance for integration tests.
const ClickHouseAddrEnv = "H3CELLSTORE_TEST_CLICKHOUSE"

// IntegrationTestSuite provides base functionality for tests that need a
// running ClickHouse instance. Suites embedding it are skipped unless
// ClickHouseAddrEnv is set.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	addr      string
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.addr = os.Getenv(ClickHouseAddrEnv)
	if s.addr == "" {
		s.T().Skipf("%s not set, skipping integration tests", ClickHouseAddrEnv)
	}

	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "h3cellstore-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the test context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// Addr returns the ClickHouse address under test
func (s *IntegrationTestSuite) Addr() string {
	return s.addr
}

// TempDir returns the temporary directory path
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}
