package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cutline/internal/timeline"
)

type dispatchOptions struct {
	cmdType  string
	payload  string
	document bool
}

func newDispatchCmd() *cobra.Command {
	opts := &dispatchOptions{}
	cmd := &cobra.Command{
		Use:   "dispatch [envelope|-]",
		Short: "Apply one command to the project",
		Long: `Apply one command to the project.

The command is a JSON or YAML envelope such as
  {"type":"SPLIT_CLIP","payload":{"trackId":"v1","clipId":"c1","time":4}}
read from the argument, or from stdin when the argument is "-" or absent.
Alternatively use --type with an optional --payload.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.cmdType, "type", "", "Command type, e.g. SPLIT_CLIP")
	cmd.Flags().StringVar(&opts.payload, "payload", "", "JSON payload for --type")
	cmd.Flags().BoolVar(&opts.document, "document", false, "Include the resulting document in JSON output")
	return cmd
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Step back one history entry",
		Long: `Step back one history entry.

The oldest entry is the baseline the history starts from, so the first
recorded edit cannot be undone; undo there changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return applyOne(cmd, timeline.Undo{}, false)
		},
	}
}

func newRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Step forward one history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return applyOne(cmd, timeline.Redo{}, false)
		},
	}
}

func runDispatch(cmd *cobra.Command, args []string, opts *dispatchOptions) error {
	c, err := readCommand(cmd.InOrStdin(), args, opts)
	if err != nil {
		return err
	}
	return applyOne(cmd, c, opts.document)
}

func applyOne(cmd *cobra.Command, c timeline.Command, full bool) error {
	ws, err := openWorkspace(commandContext(cmd))
	if err != nil {
		return err
	}
	defer ws.Close()

	doc, err := ws.dispatch(commandContext(cmd), c)
	if err != nil {
		return err
	}
	return reportEdit(cmd, c, doc, full)
}

// readCommand builds a command from --type/--payload, the argument, or stdin.
func readCommand(stdin io.Reader, args []string, opts *dispatchOptions) (timeline.Command, error) {
	if opts.cmdType != "" {
		if len(args) > 0 {
			return nil, errors.New("use either an envelope argument or --type, not both")
		}
		env := map[string]any{"type": strings.ToUpper(opts.cmdType)}
		if opts.payload != "" {
			env["payload"] = json.RawMessage(opts.payload)
		}
		data, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("invalid --payload: %w", err)
		}
		return timeline.DecodeCommand(data)
	}

	var data []byte
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	} else {
		data = []byte(args[0])
	}
	return parseEnvelope(data)
}

// parseEnvelope accepts JSON (camelCase payload keys) or YAML (snake_case).
func parseEnvelope(data []byte) (timeline.Command, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("no command given")
	}
	if data[0] == '{' {
		return timeline.DecodeCommand(data)
	}
	var env timeline.Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Command == nil {
		return nil, errors.New("no command given")
	}
	return env.Command, nil
}
