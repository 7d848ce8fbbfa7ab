package mocks

import "github.com/entreg/entreg"
import "github.com/stretchr/testify/mock"

import (
	"context"
)

type Engine struct {
	mock.Mock
}

func (_m *Engine) Name() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}
func (_m *Engine) DefineModel(ctx context.Context, entity *entreg.Entity) (entreg.ModelHandle, error) {
	ret := _m.Called(ctx, entity)

	var r0 entreg.ModelHandle
	if rf, ok := ret.Get(0).(func(context.Context, *entreg.Entity) entreg.ModelHandle); ok {
		r0 = rf(ctx, entity)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(entreg.ModelHandle)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *entreg.Entity) error); ok {
		r1 = rf(ctx, entity)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
func (_m *Engine) CreateAssociation(ctx context.Context, req entreg.AssociationRequest) (entreg.AssociationHandle, error) {
	ret := _m.Called(ctx, req)

	var r0 entreg.AssociationHandle
	if rf, ok := ret.Get(0).(func(context.Context, entreg.AssociationRequest) entreg.AssociationHandle); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(entreg.AssociationHandle)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, entreg.AssociationRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

type ModelHandle struct {
	mock.Mock
}

func (_m *ModelHandle) ModelName() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

type AssociationHandle struct {
	mock.Mock
}

func (_m *AssociationHandle) AssociationName() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}
func (_m *AssociationHandle) AssociationKind() entreg.Kind {
	ret := _m.Called()

	var r0 entreg.Kind
	if rf, ok := ret.Get(0).(func() entreg.Kind); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(entreg.Kind)
	}

	return r0
}
