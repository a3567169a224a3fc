// Package script loads and runs ordered lists of timeline commands.
//
// A script is a YAML sequence, a JSON array, or newline-delimited JSON of
// command envelopes ({"type": ..., "payload": ...}). YAML payloads use
// snake_case keys, JSON payloads use camelCase keys.
package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cutline/internal/timeline"
)

// Format identifies a script encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// Step is one decoded command with its position in the source.
type Step struct {
	Index   int
	Line    int
	Command timeline.Command
}

// DetectFormat picks a format from the file extension. Unknown extensions
// are treated as YAML, which also accepts plain JSON arrays.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatYAML
	}
}

// Load reads the script at path. Every step is decoded; when some fail the
// decodable steps are returned together with ValidationErrors.
func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data, DetectFormat(path))
}

// Parse decodes a script held in memory.
func Parse(data []byte, format Format) ([]Step, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("script is empty")
	}
	var (
		steps []Step
		errs  ValidationErrors
		err   error
	)
	switch format {
	case FormatJSON:
		steps, errs, err = parseJSON(data)
	case FormatJSONL:
		steps, errs, err = parseJSONL(data)
	case FormatYAML:
		steps, errs, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unknown script format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 && len(errs) == 0 {
		return nil, errors.New("no commands found")
	}
	if len(errs) > 0 {
		return steps, errs
	}
	return steps, nil
}

func parseYAML(data []byte) ([]Step, ValidationErrors, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil, nil
	}
	seq := root.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("line %d: script must be a list of commands", seq.Line)
	}

	var (
		steps []Step
		errs  ValidationErrors
	)
	for i, item := range seq.Content {
		index := i + 1
		var env timeline.Envelope
		if err := item.Decode(&env); err != nil {
			errs = append(errs, ValidationError{Step: index, Line: item.Line, Message: stripLinePrefix(err.Error())})
			continue
		}
		steps = append(steps, Step{Index: index, Line: item.Line, Command: env.Command})
	}
	return steps, errs, nil
}

func parseJSON(data []byte) ([]Step, ValidationErrors, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("parse JSON: %w", err)
	}
	var (
		steps []Step
		errs  ValidationErrors
	)
	for i, raw := range raws {
		index := i + 1
		cmd, err := timeline.DecodeCommand(raw)
		if err != nil {
			errs = append(errs, ValidationError{Step: index, Message: err.Error()})
			continue
		}
		steps = append(steps, Step{Index: index, Command: cmd})
	}
	return steps, errs, nil
}

func parseJSONL(data []byte) ([]Step, ValidationErrors, error) {
	var (
		steps []Step
		errs  ValidationErrors
		index int
		line  int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		index++
		cmd, err := timeline.DecodeCommand(text)
		if err != nil {
			errs = append(errs, ValidationError{Step: index, Line: line, Message: err.Error()})
			continue
		}
		steps = append(steps, Step{Index: index, Line: line, Command: cmd})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read script: %w", err)
	}
	return steps, errs, nil
}

// stripLinePrefix drops the "line N: " prefix the envelope decoder adds, as
// ValidationError already carries the line.
func stripLinePrefix(msg string) string {
	if !strings.HasPrefix(msg, "line ") {
		return msg
	}
	if i := strings.Index(msg, ": "); i > 0 {
		return msg[i+2:]
	}
	return msg
}

// Commands returns the commands of steps in order.
func Commands(steps []Step) []timeline.Command {
	cmds := make([]timeline.Command, len(steps))
	for i, s := range steps {
		cmds[i] = s.Command
	}
	return cmds
}
