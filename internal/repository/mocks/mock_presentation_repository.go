package mocks

import (
	"context"

	"prezstore/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPresentationRepository struct {
	mock.Mock
}

func (m *MockPresentationRepository) Insert(ctx context.Context, p *model.Presentation) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPresentationRepository) FindByID(ctx context.Context, id string) (*model.Presentation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Presentation), args.Error(1)
}

func (m *MockPresentationRepository) Update(ctx context.Context, p *model.Presentation) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPresentationRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPresentationRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
