package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/scenepool/pkg/catalog"
)

// IntegrationTestSuite provides base functionality for integration tests:
// a per-suite context and a temporary directory removed on teardown.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 2*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "scenepool-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
	s.T().Logf("integration suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// Path returns name joined to the suite's temporary directory
func (s *IntegrationTestSuite) Path(name string) string {
	return filepath.Join(s.tempDir, name)
}

// CreateTempFile creates a file with content in the temporary directory
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	path := s.Path(name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}

// WriteCatalog saves c under name; the extension picks format and compression.
func (s *IntegrationTestSuite) WriteCatalog(name string, c *catalog.Catalog) string {
	path := s.Path(name)
	require.NoError(s.T(), catalog.Save(path, c))
	return path
}

// ReadFile returns the contents of a file written during the suite.
func (s *IntegrationTestSuite) ReadFile(path string) []byte {
	data, err := os.ReadFile(path) //nolint:gosec // test-controlled path
	require.NoError(s.T(), err)
	return bytes.TrimSpace(data)
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
