package httprange_test

import (
	"testing"

	"github.com/simplepub/simple-publish/pkg/simplepublish/httprange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected *httprange.Spec
	}{
		{"absent", "", nil},
		{"bounded", "bytes=0-99", &httprange.Spec{Start: 0, End: 99, HasEnd: true}},
		{"open ended", "bytes=500-", &httprange.Spec{Start: 500}},
		{"suffix range is malformed", "bytes=-500", nil},
		{"multiple ranges are malformed", "bytes=0-99,200-299", nil},
		{"wrong unit", "items=0-99", nil},
		{"missing dash", "bytes=100", nil},
		{"garbage start", "bytes=abc-", nil},
		{"garbage end", "bytes=0-xyz", nil},
		{"negative start", "bytes=-1-5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, httprange.Parse(tt.header))
		})
	}
}

func TestResolve(t *testing.T) {
	const size = 1000

	tests := []struct {
		name     string
		spec     httprange.Spec
		expected httprange.Range
		ok       bool
	}{
		{"bounded window", httprange.Spec{Start: 0, End: 99, HasEnd: true}, httprange.Range{Start: 0, End: 99}, true},
		{"open end serves to last byte", httprange.Spec{Start: 500}, httprange.Range{Start: 500, End: 999}, true},
		{"end clamped to object", httprange.Spec{Start: 900, End: 5000, HasEnd: true}, httprange.Range{Start: 900, End: 999}, true},
		{"single byte", httprange.Spec{Start: 999, End: 999, HasEnd: true}, httprange.Range{Start: 999, End: 999}, true},
		{"start at size", httprange.Spec{Start: 1000}, httprange.Range{}, false},
		{"start beyond size", httprange.Spec{Start: 2000}, httprange.Range{}, false},
		{"inverted window", httprange.Spec{Start: 500, End: 100, HasEnd: true}, httprange.Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.spec.Resolve(size)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveLength(t *testing.T) {
	spec := httprange.Parse("bytes=0-99")
	require.NotNil(t, spec)

	window, ok := spec.Resolve(1000)
	require.True(t, ok)
	assert.Equal(t, int64(100), window.Length())
}
