package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social_post_studio/generator"
)

// MockTextClient is a mock type for the TextClient type
type MockTextClient struct {
	mock.Mock
}

// GenerateJSON provides a mock function with given fields: ctx, prompt, schema
func (_m *MockTextClient) GenerateJSON(ctx context.Context, prompt generator.Prompt, schema generator.Schema) (string, error) {
	ret := _m.Called(ctx, prompt, schema)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, generator.Prompt, generator.Schema) string); ok {
		r0 = rf(ctx, prompt, schema)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, generator.Prompt, generator.Schema) error); ok {
		r1 = rf(ctx, prompt, schema)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockTextClient creates a new instance of MockTextClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTextClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTextClient {
	m := &MockTextClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockImageClient is a mock type for the ImageClient type
type MockImageClient struct {
	mock.Mock
}

// GenerateImage provides a mock function with given fields: ctx, prompt, ratio
func (_m *MockImageClient) GenerateImage(ctx context.Context, prompt string, ratio generator.AspectRatio) (generator.Image, error) {
	ret := _m.Called(ctx, prompt, ratio)

	var r0 generator.Image
	if rf, ok := ret.Get(0).(func(context.Context, string, generator.AspectRatio) generator.Image); ok {
		r0 = rf(ctx, prompt, ratio)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(generator.Image)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, generator.AspectRatio) error); ok {
		r1 = rf(ctx, prompt, ratio)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockImageClient creates a new instance of MockImageClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageClient {
	m := &MockImageClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var (
	_ generator.TextClient  = (*MockTextClient)(nil)
	_ generator.ImageClient = (*MockImageClient)(nil)
)
