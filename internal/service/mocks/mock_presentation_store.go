package mocks

import (
	"context"

	"prezstore/internal/model"
	"prezstore/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPresentationStore struct {
	mock.Mock
}

func (m *MockPresentationStore) Backend() service.Backend {
	args := m.Called()
	return args.Get(0).(service.Backend)
}

func (m *MockPresentationStore) Save(ctx context.Context, p *model.Presentation) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockPresentationStore) Load(ctx context.Context, id string) (*model.Presentation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Presentation), args.Error(1)
}

func (m *MockPresentationStore) Update(ctx context.Context, id string, patch model.PresentationPatch, updatedBy, changeSummary string, createVersion bool) (*model.Presentation, error) {
	args := m.Called(ctx, id, patch, updatedBy, changeSummary, createVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Presentation), args.Error(1)
}

func (m *MockPresentationStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPresentationStore) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPresentationStore) VersionHistory(ctx context.Context, id string) (*service.VersionHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VersionHistory), args.Error(1)
}

func (m *MockPresentationStore) RestoreVersion(ctx context.Context, id, versionID string, createBackup bool) (*model.Presentation, error) {
	args := m.Called(ctx, id, versionID, createBackup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Presentation), args.Error(1)
}
