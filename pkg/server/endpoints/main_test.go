package endpoints

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server"
)

func TestMain(m *testing.M) {
	audit.DefaultLogger.SetWriter(io.Discard)
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// mockStores bundles the mocks behind a mock-backed server
type mockStores struct {
	Tags      *MockTagStore
	Projects  *MockProjectsStore
	Runs      *MockRunsStore
	Schedules *MockSchedulesStore
	Health    *MockHealthStore
}

func (m *mockStores) AssertExpectations(t *testing.T) {
	m.Tags.AssertExpectations(t)
	m.Projects.AssertExpectations(t)
	m.Runs.AssertExpectations(t)
	m.Schedules.AssertExpectations(t)
	m.Health.AssertExpectations(t)
}

// newMockServer returns a server with every endpoint registered over mocks
func newMockServer(t *testing.T) (*server.Server, *mockStores) {
	t.Helper()

	mocks := &mockStores{
		Tags:      NewMockTagStore(),
		Projects:  NewMockProjectsStore(),
		Runs:      NewMockRunsStore(),
		Schedules: NewMockSchedulesStore(),
		Health:    NewMockHealthStore(),
	}
	cfg := &config.MetastoreConfig{
		BindAddress:    "127.0.0.1",
		DefaultProject: "default",
		TrustedProxies: []string{"10.0.0.1"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
	s := server.NewServer(nil, server.Stores{
		Tags:      mocks.Tags,
		Projects:  mocks.Projects,
		Runs:      mocks.Runs,
		Schedules: mocks.Schedules,
		Health:    mocks.Health,
	}, cfg)
	RegisterAll(s)
	return s, mocks
}

// captureAudit redirects audit output into a buffer for the test
func captureAudit(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	audit.DefaultLogger.SetWriter(&buf)
	t.Cleanup(func() { audit.DefaultLogger.SetWriter(io.Discard) })
	return &buf
}
