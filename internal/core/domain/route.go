package domain

// RouteStatus is the outcome of a routing query.
type RouteStatus string

const (
	RouteOK      RouteStatus = "OK"
	RouteNoRoute RouteStatus = "NO_ROUTE"
	RouteError   RouteStatus = "ERROR"
)

// RouteResult is a safe path through the road network.
// Path is empty unless Status is RouteOK.
type RouteResult struct {
	Status   RouteStatus `json:"status"`
	Path     []string    `json:"path"`
	Distance float64     `json:"distance"`
	Message  string      `json:"message,omitempty"`
}
