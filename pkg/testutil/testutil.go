// Package testutil provides testing utilities for the cell store
package testutil

import (
	"context"
	"testing"
	"time"

	h3 "github.com/uber/h3-go/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Cell returns a valid cell at the given resolution, placed in Brandenburg
// and therefore far away from any pentagon.
func Cell(t *testing.T, resolution int) h3.Cell {
	t.Helper()
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: 52.52, Lng: 13.4}, resolution)
	if err != nil {
		t.Fatalf("building test cell at resolution %d: %v", resolution, err)
	}
	return cell
}

// Cells returns n sibling cells at the given resolution.
func Cells(t *testing.T, resolution, n int) []h3.Cell {
	t.Helper()
	parent := Cell(t, resolution-1)
	children, err := parent.Children(resolution)
	if err != nil {
		t.Fatalf("building test cells at resolution %d: %v", resolution, err)
	}
	if len(children) < n {
		t.Fatalf("need %d test cells, resolution step only yields %d", n, len(children))
	}
	return children[:n]
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
