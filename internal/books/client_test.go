package books

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"2020", 2020},
		{"2021-06", 2021},
		{"2021-06-15", 2021},
		{"", 0},
		{"n/a", 0},
		{"199", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := extractYear(tt.input)
			if result != tt.expected {
				t.Errorf("extractYear(%q) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "go concurrency", r.URL.Query().Get("q"))

		response := volumesResponse{
			TotalItems: 2,
			Items: []volumeItem{
				{
					ID: "vol-1",
					VolumeInfo: volumeInfo{
						Title:         "The Go Programming Language",
						Authors:       []string{"Alan Donovan", "Brian Kernighan"},
						PublishedDate: "2015-10-26",
						Description:   "The definitive reference.",
						Categories:    []string{"Computers"},
						IndustryIdentifiers: []industryIdentifier{
							{Type: "ISBN_10", Identifier: "0134190440"},
							{Type: "ISBN_13", Identifier: "9780134190440"},
						},
						ImageLinks: imageLinks{Thumbnail: "http://covers.example/vol-1.jpg"},
					},
				},
				{
					// Missing title, should be skipped
					ID:         "vol-2",
					VolumeInfo: volumeInfo{},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	records, err := client.Search(context.Background(), "go", "concurrency")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "vol-1", records[0].ID)
	assert.Equal(t, "The Go Programming Language", records[0].Title)
	assert.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, records[0].Authors)
	assert.Equal(t, "9780134190440", records[0].ISBN, "prefers ISBN-13")
	assert.Equal(t, 2015, records[0].PublishedYear)
	assert.Equal(t, "http://covers.example/vol-1.jpg", records[0].ThumbnailURL)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient()

	_, err := client.Search(context.Background(), "", "")
	assert.Error(t, err)
}

func TestSearch_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "go", "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(volumesResponse{
			Items: []volumeItem{{ID: "vol-1", VolumeInfo: volumeInfo{Title: "Retry Me"}}},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	records, err := client.Search(context.Background(), "retry", "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_UnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Closed immediately: connections are refused

	client := NewClient(WithBaseURL(server.URL), WithTimeout(time.Second))

	_, err := client.Search(context.Background(), "anything", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearch_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "anything", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}
