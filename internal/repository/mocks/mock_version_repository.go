package mocks

import (
	"context"

	"prezstore/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Insert(ctx context.Context, v *model.Version) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVersionRepository) ListMeta(ctx context.Context, presentationID string) ([]model.VersionMeta, error) {
	args := m.Called(ctx, presentationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VersionMeta), args.Error(1)
}

func (m *MockVersionRepository) FindByID(ctx context.Context, presentationID, versionID string) (*model.Version, error) {
	args := m.Called(ctx, presentationID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}
