package extraction

import (
	"fmt"
	"strings"
)

// Route is one of the two processing branches the pipeline understands.
type Route string

const (
	// RouteDirect accepts the OCR output as-is; upstream confidence
	// already cleared the middleware's bar.
	RouteDirect Route = "direct"
	// RouteAI sends the document through AI-assisted extraction.
	RouteAI Route = "ai"
)

// Middleware route tags. "validation" is the tag the middleware emits
// when confidence is high enough to skip AI extraction.
const (
	gateTagValidation = "validation"
	gateTagAI         = "ai"
)

// DecideRoute translates the middleware's route tag into a branch. It
// fails closed: a missing or unrecognized tag is an error, never a
// silent default, because guessing a branch would mask an upstream
// contract violation.
func DecideRoute(decision QualityGateDecision) (Route, error) {
	switch strings.TrimSpace(decision.Route) {
	case gateTagValidation:
		return RouteDirect, nil
	case gateTagAI:
		return RouteAI, nil
	case "":
		return "", fmt.Errorf("quality gate decision missing route tag")
	default:
		return "", fmt.Errorf("quality gate returned unknown route tag %q", decision.Route)
	}
}
