package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// MockReferenceStore implements store.ReferenceStore for testing using testify/mock
type MockReferenceStore struct {
	mock.Mock
}

func (m *MockReferenceStore) ListCities(ctx context.Context) ([]store.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.City), args.Error(1)
}

func (m *MockReferenceStore) ListSchoolsByCity(ctx context.Context, cityID int64) ([]store.School, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.School), args.Error(1)
}

func (m *MockReferenceStore) GetCity(ctx context.Context, id int64) (*store.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.City), args.Error(1)
}

func (m *MockReferenceStore) GetSchool(ctx context.Context, id int64) (*store.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.School), args.Error(1)
}
