// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/williamokano/r2_uploader/pkg/storage"
)

// MockObjectStore is a mock implementation of the storage.ObjectStore interface
type MockObjectStore struct {
	mock.Mock
}

var _ storage.ObjectStore = (*MockObjectStore)(nil)

// Name provides a mock function with given fields:
func (m *MockObjectStore) Name() string {
	ret := m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Put provides a mock function with given fields: ctx, key, contentType, body
func (m *MockObjectStore) Put(ctx context.Context, key string, contentType string, body []byte) error {
	ret := m.Called(ctx, key, contentType, body)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, []byte) error); ok {
		r0 = rf(ctx, key, contentType, body)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockObjectStore creates a new instance of MockObjectStore
func NewMockObjectStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockObjectStore {
	mock_1 := &MockObjectStore{}
	mock_1.Mock.Test(t)

	t.Cleanup(func() { mock_1.AssertExpectations(t) })

	return mock_1
}
