package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type rendered struct{ Name string }

func (r rendered) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "custom %s\n", r.Name)
	return err
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("NOT_FOUND", "The requested record does not exist.", "req-1"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestOutputFormatter_TextUsesRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(rendered{Name: "view"}))
	assert.Equal(t, "custom view\n", buf.String())
}

func TestOutputFormatter_TextFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("All done"))
	assert.Equal(t, "All done\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		want      string
	}{
		{"with_request_id", "abc", "Error [BUSY]: try later (request abc)\n"},
		{"without_request_id", "", "Error [BUSY]: try later\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}
			require.NoError(t, formatter.Error("BUSY", "try later", tt.requestID))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_YAMLFollowsJSONNames(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "yaml", Writer: buf}

	data := struct {
		Zeta    string   `json:"zeta"`
		Alpha   int      `json:"alpha"`
		Skipped *string  `json:"skipped,omitempty"`
		Flag    string   `json:"flag"`
		Tags    []string `json:"tags"`
	}{Zeta: "last-name", Alpha: 2, Flag: "true", Tags: []string{"x", "y"}}
	require.NoError(t, formatter.Success(data))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "status: ok\ndata:\n"), out)
	assert.Less(t, strings.Index(out, "zeta:"), strings.Index(out, "alpha:"), "key order is kept")
	assert.NotContains(t, out, "skipped")
	assert.NotContains(t, out, "{", "block style only")

	var decoded struct {
		Status string `yaml:"status"`
		Data   struct {
			Zeta  string   `yaml:"zeta"`
			Alpha int      `yaml:"alpha"`
			Flag  string   `yaml:"flag"`
			Tags  []string `yaml:"tags"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded.Status)
	assert.Equal(t, "last-name", decoded.Data.Zeta)
	assert.Equal(t, 2, decoded.Data.Alpha)
	assert.Equal(t, "true", decoded.Data.Flag, "string that looks like a bool stays a string")
	assert.Equal(t, []string{"x", "y"}, decoded.Data.Tags)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}
