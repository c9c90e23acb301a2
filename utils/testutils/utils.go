// Package testutils provides small test helpers shared by the whole
// module.
package testutils

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tilford/csscade/logger"
)

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v", exp, got)
	}
}

func AssertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

// CaptureLogs redirects the package loggers to an in memory sink for
// the duration of the test and returns it.
func CaptureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	sugared := zap.New(core).Sugar()
	restore := logger.SetLoggers(sugared, sugared)
	t.Cleanup(restore)
	return logs
}
