// Package telemetrymock holds a hand-maintained gomock-based mock
// for telemetry.Sink, in the shape mockgen would produce for
// that interface (Controller, Recorder, EXPECT()). Kept alongside its
// source interface rather than committing a generated file so it
// never drifts silently out of sync with telemetry.Sink's method set.
package telemetrymock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/semcore/semcore/telemetry"
)

// MockSink is a mock of the telemetry.Sink interface.
type MockSink struct {
	ctrl     *gomock.Controller
	recorder *MockSinkMockRecorder
}

// MockSinkMockRecorder is the mock recorder for MockSink.
type MockSinkMockRecorder struct {
	mock *MockSink
}

// NewMockSink constructs a MockSink.
func NewMockSink(ctrl *gomock.Controller) *MockSink {
	mock := &MockSink{ctrl: ctrl}
	mock.recorder = &MockSinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSink) EXPECT() *MockSinkMockRecorder {
	return m.recorder
}

func (m *MockSink) Operation(e telemetry.OperationEvent) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Operation", e)
}

func (mr *MockSinkMockRecorder) Operation(e interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Operation", reflect.TypeOf((*MockSink)(nil).Operation), e)
}

func (m *MockSink) Validation(e telemetry.ValidationEvent) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Validation", e)
}

func (mr *MockSinkMockRecorder) Validation(e interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Validation", reflect.TypeOf((*MockSink)(nil).Validation), e)
}

func (m *MockSink) Discovery(e telemetry.DiscoveryEvent) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Discovery", e)
}

func (mr *MockSinkMockRecorder) Discovery(e interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Discovery", reflect.TypeOf((*MockSink)(nil).Discovery), e)
}

func (m *MockSink) Supervision(e telemetry.SupervisionEvent) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Supervision", e)
}

func (mr *MockSinkMockRecorder) Supervision(e interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Supervision", reflect.TypeOf((*MockSink)(nil).Supervision), e)
}
