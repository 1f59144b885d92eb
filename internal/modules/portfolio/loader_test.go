package portfolio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceYAML = `
budget: 1500
holdings:
  ISIN1: {quantity: 10, price: 100}
  ISIN2:
    quantity: 20
    price: 200
target:
  ISIN1: 15
  ISIN2: 25
  ISIN3: 35
avoid: [ISIN3]
`

const referenceJSON = `{
  "budget": 1500,
  "holdings": {
    "ISIN1": {"quantity": 10, "price": 100},
    "ISIN2": {"quantity": 20, "price": 200}
  },
  "target": {"ISIN1": 15, "ISIN2": 25, "ISIN3": 35},
  "avoid": ["ISIN3"]
}`

func assertReferenceRequest(t *testing.T, req rebalancing.Request) {
	t.Helper()
	assert.Equal(t, 1500.0, req.Budget)
	assert.Equal(t, rebalancing.Holding{Quantity: 10, Price: 100}, req.Holdings["ISIN1"])
	assert.Equal(t, rebalancing.Holding{Quantity: 20, Price: 200}, req.Holdings["ISIN2"])
	assert.Equal(t, map[string]float64{"ISIN1": 15, "ISIN2": 25, "ISIN3": 35}, req.Target)
	assert.Equal(t, []string{"ISIN3"}, req.Avoid)
	assert.Empty(t, req.Keep)
}

func TestDecodeRequest_YAML(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(referenceYAML), FormatYAML)
	require.NoError(t, err)
	assertReferenceRequest(t, req)
}

func TestDecodeRequest_JSON(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(referenceJSON), FormatJSON)
	require.NoError(t, err)
	assertReferenceRequest(t, req)
}

func TestDecodeRequest_UnknownField(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader("budget: 10\ntargets: {A: 1}\n"), FormatYAML)
	assert.Error(t, err)

	_, err = DecodeRequest(strings.NewReader(`{"budget": 10, "targets": {"A": 1}}`), FormatJSON)
	assert.Error(t, err)
}

func TestDecodeRequest_Empty(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader(""), FormatYAML)
	assert.Error(t, err)
}

func TestDecodeRequest_MissingMapsBecomeEmpty(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader("budget: 0\n"), FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, req.Holdings)
	assert.NotNil(t, req.Target)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader("budget: -1\n"), FormatYAML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rebalancing.ErrInvalidRequest))
}

func TestDecodeRequest_UnknownFormat(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader("{}"), Format("toml"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"request.yaml", FormatYAML, false},
		{"request.YML", FormatYAML, false},
		{"/tmp/request.json", FormatJSON, false},
		{"request.toml", "", true},
		{"request", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(referenceYAML), 0644))
	req, err := LoadRequest(yamlPath)
	require.NoError(t, err)
	assertReferenceRequest(t, req)

	jsonPath := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(referenceJSON), 0644))
	req, err = LoadRequest(jsonPath)
	require.NoError(t, err)
	assertReferenceRequest(t, req)

	_, err = LoadRequest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
