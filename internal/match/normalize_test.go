package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"name", "name"},
		{"require_paths", "requirepaths"},
		{"require-paths", "requirepaths"},
		{"requirePaths", "requirepaths"},
		{"RequirePaths", "requirepaths"},
		{"REQUIRE_PATHS", "requirepaths"},
		{"x.build cache", "xbuildcache"},
		{"HTTPProxy", "httpproxy"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdent(tt.in))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"devDependencies", []string{"dev", "dependencies"}},
		{"dev_dependencies", []string{"dev", "dependencies"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"lib__files", []string{"lib", "files"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeIdent(tt.in))
		})
	}
}
