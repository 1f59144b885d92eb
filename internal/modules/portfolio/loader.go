// Package portfolio reads rebalance requests from YAML or JSON documents.
package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a request document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for file extensions and format names that are
// neither YAML nor JSON.
var ErrUnknownFormat = errors.New("unknown request format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// LoadRequest reads and validates the request stored at path.
// A path of "-" reads YAML from stdin.
func LoadRequest(path string) (rebalancing.Request, error) {
	if path == "-" {
		return DecodeRequest(os.Stdin, FormatYAML)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return rebalancing.Request{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return rebalancing.Request{}, fmt.Errorf("failed to open request file: %w", err)
	}
	defer f.Close()

	return DecodeRequest(f, format)
}

// DecodeRequest decodes a single request document and validates it.
// Unknown fields are rejected so that typos such as "targets" do not silently
// produce an empty target.
func DecodeRequest(r io.Reader, format Format) (rebalancing.Request, error) {
	var req rebalancing.Request

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return req, fmt.Errorf("failed to parse YAML request: empty document")
			}
			return req, fmt.Errorf("failed to parse YAML request: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("failed to parse JSON request: %w", err)
		}
	default:
		return req, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if req.Holdings == nil {
		req.Holdings = map[string]rebalancing.Holding{}
	}
	if req.Target == nil {
		req.Target = map[string]float64{}
	}

	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
