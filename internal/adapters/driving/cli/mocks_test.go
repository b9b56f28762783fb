package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
)

// mockFetcher implements driving.Fetcher with canned reports.
type mockFetcher struct {
	report  *driving.FetchReport
	reports []*driving.FetchReport
	err     error

	gotClass, gotAssignment, gotDest string
}

func (m *mockFetcher) FetchAssignment(_ context.Context, class, assignment, destPath string) (*driving.FetchReport, error) {
	m.gotClass, m.gotAssignment, m.gotDest = class, assignment, destPath
	return m.report, m.err
}

func (m *mockFetcher) FetchClass(_ context.Context, class, destPath string) ([]*driving.FetchReport, error) {
	m.gotClass, m.gotDest = class, destPath
	return m.reports, m.err
}

// mockPublisher implements driving.Publisher by replaying responses.
type mockPublisher struct {
	responses []domain.ServerResponse
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, _, _ string, onResponse func(domain.ServerResponse)) error {
	for _, resp := range m.responses {
		onResponse(resp)
	}
	return m.err
}

// mockStatusReporter implements driving.StatusReporter.
type mockStatusReporter struct {
	statuses []driving.AssignmentStatus
	err      error
}

func (m *mockStatusReporter) ClassStatus(_ context.Context, _ string) ([]driving.AssignmentStatus, error) {
	return m.statuses, m.err
}

// execute runs the root command with the given args and returns its
// combined output, restoring command state afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices swaps the injected services for the duration of one test.
func withServices(t *testing.T, f driving.Fetcher, p driving.Publisher, s driving.StatusReporter) {
	t.Helper()

	oldFetcher, oldPublisher, oldReporter := fetcher, publisher, statusReporter
	fetcher, publisher, statusReporter = f, p, s
	t.Cleanup(func() {
		fetcher, publisher, statusReporter = oldFetcher, oldPublisher, oldReporter
	})
}
