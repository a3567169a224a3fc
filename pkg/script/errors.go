package script

import (
	"strconv"
	"strings"
)

// ValidationError describes a step that could not be decoded.
type ValidationError struct {
	Step    int
	Line    int
	Message string
}

func (e ValidationError) Error() string {
	return strings.TrimSpace(formatLocation(e.Step, e.Line) + " " + e.Message)
}

// ValidationErrors aggregates every bad step in a script.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Issues returns a copy of the underlying validation errors.
func (errs ValidationErrors) Issues() []ValidationError {
	return append([]ValidationError(nil), errs...)
}

func formatLocation(step, line int) string {
	var b strings.Builder
	if step > 0 {
		b.WriteString("step ")
		b.WriteString(strconv.Itoa(step))
	}
	if line > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(line ")
		b.WriteString(strconv.Itoa(line))
		b.WriteString(")")
	}
	if b.Len() == 0 {
		return "script"
	}
	return b.String()
}
