package people

// Caller contexts for degradation reporting.
type Caller string

const (
	CallerAdmin Caller = "admin"
	CallerAPI   Caller = "api"
)

// HealthView is the response-shaping value handed to delivery collaborators.
// Admin callers see the raw issue list; API callers get a generic message so
// operational detail never leaks to the public surface.
type HealthView struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Issues    []string `json:"issues,omitempty"`
	Retryable bool     `json:"retryable"`
}

// ShapeHealth is a pure function from health status and caller context to a
// HealthView. It holds no state and branches nowhere else in the health path.
func ShapeHealth(h HealthStatus, caller Caller) HealthView {
	view := HealthView{Status: h.Status}

	switch h.Status {
	case StatusHealthy:
		view.Message = "profiles available"
	case StatusDegraded:
		view.Message = "profiles available with reduced quality"
		view.Retryable = false
	default:
		view.Message = "profiles temporarily unavailable"
		view.Retryable = true
	}

	if caller == CallerAdmin {
		view.Issues = h.Issues
	}
	return view
}
