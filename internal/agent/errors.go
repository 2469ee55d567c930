package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/regaudit/internal/workflow"
)

var errMaxIterations = errors.New("agent stopped: max_iterations reached")

// ErrorMessage turns an agent or tool failure into a message for the user.
func ErrorMessage(err error, operation string) string {
	var se *workflow.StepError
	if errors.As(err, &se) {
		return se.Message
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "OUTPUT_PARSING_FAILURE"):
		return fmt.Sprintf("Agent parsing error during %s. Please try again.", operation)
	case strings.Contains(msg, "max_iterations"):
		return fmt.Sprintf("Agent reached maximum iterations during %s. Please try a simpler request.", operation)
	default:
		return fmt.Sprintf("Error during %s: %s", operation, msg)
	}
}
