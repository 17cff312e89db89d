// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"cratedig/internal/models"
)

// MockLibraryService is a test double for [services.LibraryService]
type MockLibraryService struct {
	Albums []models.Album
	Err    error
	User   string
	Calls  int
}

func (m *MockLibraryService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockLibraryService) UserID(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.User == "" {
		return "mock_user", nil
	}
	return m.User, nil
}

func (m *MockLibraryService) LibraryAlbums(ctx context.Context) ([]models.Album, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Albums, nil
}

func (m *MockLibraryService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
