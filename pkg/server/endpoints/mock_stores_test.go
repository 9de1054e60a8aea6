package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// MockTagStore implements store.TagStore for testing using testify/mock
type MockTagStore struct {
	mock.Mock
}

func NewMockTagStore() *MockTagStore {
	return &MockTagStore{}
}

func (m *MockTagStore) Kinds() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockTagStore) StoreVersion(ctx context.Context, kind, key, uid string, body map[string]any, opts store.StoreOptions) (*store.Record, error) {
	args := m.Called(ctx, kind, key, uid, body, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Record), args.Error(1)
}

func (m *MockTagStore) Read(ctx context.Context, kind, key string, opts store.ReadOptions) (*store.Record, error) {
	args := m.Called(ctx, kind, key, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Record), args.Error(1)
}

func (m *MockTagStore) List(ctx context.Context, kind string, filter store.ListFilter) ([]store.Record, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Record), args.Error(1)
}

func (m *MockTagStore) DeleteVersions(ctx context.Context, kind, project, key string) (int64, error) {
	args := m.Called(ctx, kind, project, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTagStore) TagObjects(ctx context.Context, objects []store.ObjectRef, project, tag string) error {
	args := m.Called(ctx, objects, project, tag)
	return args.Error(0)
}

func (m *MockTagStore) DelTag(ctx context.Context, project, tag string) error {
	args := m.Called(ctx, project, tag)
	return args.Error(0)
}

func (m *MockTagStore) FindTagged(ctx context.Context, project, tag string) ([]store.Record, error) {
	args := m.Called(ctx, project, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Record), args.Error(1)
}

func (m *MockTagStore) ListTags(ctx context.Context, project string) ([]string, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTagStore) ListTagRefs(ctx context.Context, kind, project string) ([]store.TagRef, error) {
	args := m.Called(ctx, kind, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.TagRef), args.Error(1)
}

// MockProjectsStore implements store.ProjectsStore for testing using testify/mock
type MockProjectsStore struct {
	mock.Mock
}

func NewMockProjectsStore() *MockProjectsStore {
	return &MockProjectsStore{}
}

func (m *MockProjectsStore) CreateProject(ctx context.Context, project store.Project) (*store.Project, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Project), args.Error(1)
}

func (m *MockProjectsStore) GetProject(ctx context.Context, name string) (*store.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Project), args.Error(1)
}

func (m *MockProjectsStore) PatchProject(ctx context.Context, name string, patch store.ProjectPatch) (*store.Project, error) {
	args := m.Called(ctx, name, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Project), args.Error(1)
}

func (m *MockProjectsStore) ListProjects(ctx context.Context, format store.ProjectsFormat) ([]store.Project, error) {
	args := m.Called(ctx, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Project), args.Error(1)
}

func (m *MockProjectsStore) DeleteProject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockRunsStore implements store.RunsStore for testing using testify/mock
type MockRunsStore struct {
	mock.Mock
}

func NewMockRunsStore() *MockRunsStore {
	return &MockRunsStore{}
}

func (m *MockRunsStore) StoreRun(ctx context.Context, run map[string]any, uid, project string, iter int) error {
	args := m.Called(ctx, run, uid, project, iter)
	return args.Error(0)
}

func (m *MockRunsStore) ReadRun(ctx context.Context, uid, project string, iter int) (*store.Run, error) {
	args := m.Called(ctx, uid, project, iter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Run), args.Error(1)
}

func (m *MockRunsStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]store.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Run), args.Error(1)
}

func (m *MockRunsStore) DeleteRun(ctx context.Context, uid, project string, iter int) error {
	args := m.Called(ctx, uid, project, iter)
	return args.Error(0)
}

// MockSchedulesStore implements store.SchedulesStore for testing using testify/mock
type MockSchedulesStore struct {
	mock.Mock
}

func NewMockSchedulesStore() *MockSchedulesStore {
	return &MockSchedulesStore{}
}

func (m *MockSchedulesStore) UpsertSchedule(ctx context.Context, schedule store.Schedule) (*store.Schedule, error) {
	args := m.Called(ctx, schedule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Schedule), args.Error(1)
}

func (m *MockSchedulesStore) GetSchedule(ctx context.Context, project, name string) (*store.Schedule, error) {
	args := m.Called(ctx, project, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Schedule), args.Error(1)
}

func (m *MockSchedulesStore) ListSchedules(ctx context.Context, project string) ([]store.Schedule, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Schedule), args.Error(1)
}

func (m *MockSchedulesStore) DeleteSchedule(ctx context.Context, project, name string) error {
	args := m.Called(ctx, project, name)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Compile-time checks that the mocks implement the store interfaces
var (
	_ store.TagStore       = (*MockTagStore)(nil)
	_ store.ProjectsStore  = (*MockProjectsStore)(nil)
	_ store.RunsStore      = (*MockRunsStore)(nil)
	_ store.SchedulesStore = (*MockSchedulesStore)(nil)
	_ store.HealthStore    = (*MockHealthStore)(nil)
)
