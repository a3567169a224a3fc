package script

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"cutline/internal/timeline"
)

// Write encodes cmds to w in the given format.
func Write(w io.Writer, cmds []timeline.Command, format Format) error {
	envs := make([]timeline.Envelope, len(cmds))
	for i, cmd := range cmds {
		envs[i] = timeline.Envelope{Command: cmd}
	}

	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, env := range envs {
			if err := enc.Encode(env); err != nil {
				return fmt.Errorf("encode %s: %w", env.Command.Type(), err)
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(envs)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(envs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown script format %q", format)
	}
}
