package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CommandType names a command on the wire.
type CommandType string

const (
	CmdAddTrack         CommandType = "ADD_TRACK"
	CmdUpdateTrack      CommandType = "UPDATE_TRACK"
	CmdRemoveTrack      CommandType = "REMOVE_TRACK"
	CmdMoveTrack        CommandType = "MOVE_TRACK"
	CmdSetTracks        CommandType = "SET_TRACKS"
	CmdAddClip          CommandType = "ADD_CLIP"
	CmdUpdateClip       CommandType = "UPDATE_CLIP"
	CmdRemoveClip       CommandType = "REMOVE_CLIP"
	CmdRippleDeleteClip CommandType = "RIPPLE_DELETE_CLIP"
	CmdMoveClip         CommandType = "MOVE_CLIP"
	CmdSplitClip        CommandType = "SPLIT_CLIP"
	CmdTrimClip         CommandType = "TRIM_CLIP"
	CmdAddTransition    CommandType = "ADD_TRANSITION"
	CmdUpdateTransition CommandType = "UPDATE_TRANSITION"
	CmdRemoveTransition CommandType = "REMOVE_TRANSITION"
	CmdSetZoom          CommandType = "SET_ZOOM"
	CmdSetFPS           CommandType = "SET_FPS"

	CmdSelectClips      CommandType = "SELECT_CLIPS"
	CmdSetSelectedTrack CommandType = "SET_SELECTED_TRACK_ID"
	CmdSetCurrentTime   CommandType = "SET_CURRENT_TIME"
	CmdSetPlaying       CommandType = "SET_PLAYING"
	CmdSetScrollX       CommandType = "SET_SCROLL_X"
	CmdSetScrollY       CommandType = "SET_SCROLL_Y"
	CmdSetDragging      CommandType = "SET_DRAGGING"
	CmdSetError         CommandType = "SET_ERROR"
	CmdSetDuration      CommandType = "SET_DURATION"
	CmdClearState       CommandType = "CLEAR_STATE"
	CmdSetState         CommandType = "SET_STATE"

	CmdUndo         CommandType = "UNDO"
	CmdRedo         CommandType = "REDO"
	CmdClearHistory CommandType = "CLEAR_HISTORY"
)

// Command is the closed set of edits the engine accepts.
type Command interface {
	Type() CommandType
	command()
}

type AddTrack struct {
	Track Track `json:"track" yaml:"track"`
}

type UpdateTrack struct {
	TrackID   string  `json:"trackId" yaml:"track_id"`
	Name      *string `json:"name,omitempty" yaml:"name,omitempty"`
	IsVisible *bool   `json:"isVisible,omitempty" yaml:"is_visible,omitempty"`
	IsMuted   *bool   `json:"isMuted,omitempty" yaml:"is_muted,omitempty"`
}

type RemoveTrack struct {
	TrackID string `json:"trackId" yaml:"track_id"`
}

// MoveTrack reorders a track to Index; out of range indexes are clamped.
type MoveTrack struct {
	TrackID string `json:"trackId" yaml:"track_id"`
	Index   int    `json:"index" yaml:"index"`
}

type SetTracks struct {
	Tracks []Track `json:"tracks" yaml:"tracks"`
}

// ClipSpec describes a clip to insert. Nil fields take defaults.
type ClipSpec struct {
	ID            string       `json:"id" yaml:"id"`
	Kind          ClipKind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`
	StartTime     *float64     `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime       *float64     `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Duration      *float64     `json:"duration,omitempty" yaml:"duration,omitempty"`
	MediaOffset   *float64     `json:"mediaOffset,omitempty" yaml:"media_offset,omitempty"`
	MediaDuration *float64     `json:"mediaDuration,omitempty" yaml:"media_duration,omitempty"`
	InitialBounds *Bounds      `json:"initialBounds,omitempty" yaml:"initial_bounds,omitempty"`
	Handles       *Handles     `json:"handles,omitempty" yaml:"handles,omitempty"`
	Layer         int          `json:"layer,omitempty" yaml:"layer,omitempty"`
	Video         *VideoClip   `json:"video,omitempty" yaml:"video,omitempty"`
	Audio         *AudioClip   `json:"audio,omitempty" yaml:"audio,omitempty"`
	Caption       *CaptionClip `json:"caption,omitempty" yaml:"caption,omitempty"`
}

type AddClip struct {
	TrackID string   `json:"trackId" yaml:"track_id"`
	Clip    ClipSpec `json:"clip" yaml:"clip"`
}

// ClipFields is a partial clip; set fields overwrite the clip's.
type ClipFields struct {
	Name          *string      `json:"name,omitempty" yaml:"name,omitempty"`
	StartTime     *float64     `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime       *float64     `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	MediaOffset   *float64     `json:"mediaOffset,omitempty" yaml:"media_offset,omitempty"`
	MediaDuration *float64     `json:"mediaDuration,omitempty" yaml:"media_duration,omitempty"`
	InitialBounds *Bounds      `json:"initialBounds,omitempty" yaml:"initial_bounds,omitempty"`
	Handles       *Handles     `json:"handles,omitempty" yaml:"handles,omitempty"`
	Layer         *int         `json:"layer,omitempty" yaml:"layer,omitempty"`
	Video         *VideoClip   `json:"video,omitempty" yaml:"video,omitempty"`
	Audio         *AudioClip   `json:"audio,omitempty" yaml:"audio,omitempty"`
	Caption       *CaptionClip `json:"caption,omitempty" yaml:"caption,omitempty"`
}

type UpdateClip struct {
	TrackID string     `json:"trackId" yaml:"track_id"`
	ClipID  string     `json:"clipId" yaml:"clip_id"`
	Fields  ClipFields `json:"clip" yaml:"clip"`
}

type RemoveClip struct {
	TrackID string `json:"trackId" yaml:"track_id"`
	ClipID  string `json:"clipId" yaml:"clip_id"`
}

// RippleDeleteClip removes a clip and closes the gap it leaves.
type RippleDeleteClip struct {
	TrackID string `json:"trackId" yaml:"track_id"`
	ClipID  string `json:"clipId" yaml:"clip_id"`
}

type MoveClip struct {
	SourceTrackID string  `json:"sourceTrackId" yaml:"source_track_id"`
	TargetTrackID string  `json:"targetTrackId" yaml:"target_track_id"`
	ClipID        string  `json:"clipId" yaml:"clip_id"`
	NewTime       float64 `json:"newTime" yaml:"new_time"`
}

type SplitClip struct {
	TrackID string  `json:"trackId" yaml:"track_id"`
	ClipID  string  `json:"clipId" yaml:"clip_id"`
	Time    float64 `json:"time" yaml:"time"`
}

// TrimClip moves one edge of a clip. Exactly one of StartTime and EndTime
// should be set; with neither the clip only has its handles refreshed.
type TrimClip struct {
	ClipID    string   `json:"clipId" yaml:"clip_id"`
	Ripple    bool     `json:"ripple" yaml:"ripple"`
	StartTime *float64 `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime   *float64 `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Handles   *Handles `json:"handles,omitempty" yaml:"handles,omitempty"`
}

// AddTransition links two adjacent clips. An empty ID is generated.
type AddTransition struct {
	ID       string             `json:"id,omitempty" yaml:"id,omitempty"`
	ClipAID  string             `json:"clipAId" yaml:"clip_a_id"`
	ClipBID  string             `json:"clipBId" yaml:"clip_b_id"`
	Kind     string             `json:"type" yaml:"type"`
	Duration float64            `json:"duration" yaml:"duration"`
	Params   map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

type UpdateTransition struct {
	TransitionID string             `json:"transitionId" yaml:"transition_id"`
	Kind         *string            `json:"type,omitempty" yaml:"type,omitempty"`
	Duration     *float64           `json:"duration,omitempty" yaml:"duration,omitempty"`
	Params       map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

type RemoveTransition struct {
	TransitionID string `json:"transitionId" yaml:"transition_id"`
}

type SetZoom struct {
	Zoom float64 `json:"zoom" yaml:"zoom"`
}

type SetFPS struct {
	FPS float64 `json:"fps" yaml:"fps"`
}

type SelectClips struct {
	ClipIDs []string `json:"clipIds" yaml:"clip_ids"`
}

type SetSelectedTrack struct {
	TrackID string `json:"trackId" yaml:"track_id"`
}

type SetCurrentTime struct {
	Time float64 `json:"time" yaml:"time"`
}

type SetPlaying struct {
	Playing bool `json:"playing" yaml:"playing"`
}

type SetScrollX struct {
	X float64 `json:"x" yaml:"x"`
}

type SetScrollY struct {
	Y float64 `json:"y" yaml:"y"`
}

type SetDragging struct {
	Dragging bool `json:"dragging" yaml:"dragging"`
}

type SetError struct {
	Error string `json:"error" yaml:"error"`
}

type SetDuration struct {
	Duration float64 `json:"duration" yaml:"duration"`
}

// ClearState resets the document to an empty project.
type ClearState struct{}

// SetState replaces the whole document, history included.
type SetState struct {
	Document Document `json:"document" yaml:"document"`
}

type Undo struct{}

type Redo struct{}

// ClearHistory drops every history entry.
type ClearHistory struct{}

func (AddTrack) Type() CommandType         { return CmdAddTrack }
func (UpdateTrack) Type() CommandType      { return CmdUpdateTrack }
func (RemoveTrack) Type() CommandType      { return CmdRemoveTrack }
func (MoveTrack) Type() CommandType        { return CmdMoveTrack }
func (SetTracks) Type() CommandType        { return CmdSetTracks }
func (AddClip) Type() CommandType          { return CmdAddClip }
func (UpdateClip) Type() CommandType       { return CmdUpdateClip }
func (RemoveClip) Type() CommandType       { return CmdRemoveClip }
func (RippleDeleteClip) Type() CommandType { return CmdRippleDeleteClip }
func (MoveClip) Type() CommandType         { return CmdMoveClip }
func (SplitClip) Type() CommandType        { return CmdSplitClip }
func (TrimClip) Type() CommandType         { return CmdTrimClip }
func (AddTransition) Type() CommandType    { return CmdAddTransition }
func (UpdateTransition) Type() CommandType { return CmdUpdateTransition }
func (RemoveTransition) Type() CommandType { return CmdRemoveTransition }
func (SetZoom) Type() CommandType          { return CmdSetZoom }
func (SetFPS) Type() CommandType           { return CmdSetFPS }
func (SelectClips) Type() CommandType      { return CmdSelectClips }
func (SetSelectedTrack) Type() CommandType { return CmdSetSelectedTrack }
func (SetCurrentTime) Type() CommandType   { return CmdSetCurrentTime }
func (SetPlaying) Type() CommandType       { return CmdSetPlaying }
func (SetScrollX) Type() CommandType       { return CmdSetScrollX }
func (SetScrollY) Type() CommandType       { return CmdSetScrollY }
func (SetDragging) Type() CommandType      { return CmdSetDragging }
func (SetError) Type() CommandType         { return CmdSetError }
func (SetDuration) Type() CommandType      { return CmdSetDuration }
func (ClearState) Type() CommandType       { return CmdClearState }
func (SetState) Type() CommandType         { return CmdSetState }
func (Undo) Type() CommandType             { return CmdUndo }
func (Redo) Type() CommandType             { return CmdRedo }
func (ClearHistory) Type() CommandType     { return CmdClearHistory }

func (AddTrack) command()         {}
func (UpdateTrack) command()      {}
func (RemoveTrack) command()      {}
func (MoveTrack) command()        {}
func (SetTracks) command()        {}
func (AddClip) command()          {}
func (UpdateClip) command()       {}
func (RemoveClip) command()       {}
func (RippleDeleteClip) command() {}
func (MoveClip) command()         {}
func (SplitClip) command()        {}
func (TrimClip) command()         {}
func (AddTransition) command()    {}
func (UpdateTransition) command() {}
func (RemoveTransition) command() {}
func (SetZoom) command()          {}
func (SetFPS) command()           {}
func (SelectClips) command()      {}
func (SetSelectedTrack) command() {}
func (SetCurrentTime) command()   {}
func (SetPlaying) command()       {}
func (SetScrollX) command()       {}
func (SetScrollY) command()       {}
func (SetDragging) command()      {}
func (SetError) command()         {}
func (SetDuration) command()      {}
func (ClearState) command()       {}
func (SetState) command()         {}
func (Undo) command()             {}
func (Redo) command()             {}
func (ClearHistory) command()     {}

type decodeFunc func(unmarshal func(any) error) (Command, error)

func decodeAs[T Command](unmarshal func(any) error) (Command, error) {
	var c T
	if unmarshal != nil {
		if err := unmarshal(&c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var decoders = map[CommandType]decodeFunc{
	CmdAddTrack:         decodeAs[AddTrack],
	CmdUpdateTrack:      decodeAs[UpdateTrack],
	CmdRemoveTrack:      decodeAs[RemoveTrack],
	CmdMoveTrack:        decodeAs[MoveTrack],
	CmdSetTracks:        decodeAs[SetTracks],
	CmdAddClip:          decodeAs[AddClip],
	CmdUpdateClip:       decodeAs[UpdateClip],
	CmdRemoveClip:       decodeAs[RemoveClip],
	CmdRippleDeleteClip: decodeAs[RippleDeleteClip],
	CmdMoveClip:         decodeAs[MoveClip],
	CmdSplitClip:        decodeAs[SplitClip],
	CmdTrimClip:         decodeAs[TrimClip],
	CmdAddTransition:    decodeAs[AddTransition],
	CmdUpdateTransition: decodeAs[UpdateTransition],
	CmdRemoveTransition: decodeAs[RemoveTransition],
	CmdSetZoom:          decodeAs[SetZoom],
	CmdSetFPS:           decodeAs[SetFPS],
	CmdSelectClips:      decodeAs[SelectClips],
	CmdSetSelectedTrack: decodeAs[SetSelectedTrack],
	CmdSetCurrentTime:   decodeAs[SetCurrentTime],
	CmdSetPlaying:       decodeAs[SetPlaying],
	CmdSetScrollX:       decodeAs[SetScrollX],
	CmdSetScrollY:       decodeAs[SetScrollY],
	CmdSetDragging:      decodeAs[SetDragging],
	CmdSetError:         decodeAs[SetError],
	CmdSetDuration:      decodeAs[SetDuration],
	CmdClearState:       decodeAs[ClearState],
	CmdSetState:         decodeAs[SetState],
	CmdUndo:             decodeAs[Undo],
	CmdRedo:             decodeAs[Redo],
	CmdClearHistory:     decodeAs[ClearHistory],
}

// KnownCommand reports whether t is a command the engine understands.
func KnownCommand(t CommandType) bool {
	_, ok := decoders[t]
	return ok
}

// Envelope is the plain-data form of a command: {"type": ..., "payload": ...}.
type Envelope struct {
	Command Command
}

type jsonEnvelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Command == nil {
		return nil, fmt.Errorf("marshal command: empty envelope")
	}
	payload, err := json.Marshal(e.Command)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Command.Type(), err)
	}
	return json.Marshal(jsonEnvelope{Type: e.Command.Type(), Payload: payload})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw jsonEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decode, ok := decoders[raw.Type]
	if !ok {
		return fmt.Errorf("unknown command type %q", raw.Type)
	}
	var unmarshal func(any) error
	if p := bytes.TrimSpace(raw.Payload); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		unmarshal = func(v any) error {
			dec := json.NewDecoder(bytes.NewReader(p))
			dec.DisallowUnknownFields()
			return dec.Decode(v)
		}
	}
	cmd, err := decode(unmarshal)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.Type, err)
	}
	e.Command = cmd
	return nil
}

type yamlEnvelope struct {
	Type    CommandType `yaml:"type"`
	Payload yaml.Node   `yaml:"payload,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (e Envelope) MarshalYAML() (any, error) {
	if e.Command == nil {
		return nil, fmt.Errorf("marshal command: empty envelope")
	}
	return struct {
		Type    CommandType `yaml:"type"`
		Payload Command     `yaml:"payload,omitempty"`
	}{Type: e.Command.Type(), Payload: e.Command}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Envelope) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlEnvelope
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decode, ok := decoders[raw.Type]
	if !ok {
		return fmt.Errorf("line %d: unknown command type %q", node.Line, raw.Type)
	}
	var unmarshal func(any) error
	if raw.Payload.Kind != 0 && raw.Payload.Tag != "!!null" {
		unmarshal = raw.Payload.Decode
	}
	cmd, err := decode(unmarshal)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.Type, err)
	}
	e.Command = cmd
	return nil
}

// EncodeCommand returns the JSON envelope for cmd.
func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(Envelope{Command: cmd})
}

// DecodeCommand parses a JSON envelope.
func DecodeCommand(data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.Command, nil
}
