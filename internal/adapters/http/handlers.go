package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/core/routing"
)

// queryAny returns the first non-empty query parameter among names.
func queryAny(c *fiber.Ctx, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(c.Query(n)); v != "" {
			return v
		}
	}
	return ""
}

// paginate slices items by the offset/limit query parameters.
func paginate[T any](c *fiber.Ctx, items []T, defLimit, maxLimit int) ([]T, Pagination) {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", defLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defLimit
	}

	total := len(items)
	page := []T{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = items[offset:end]
	}
	return page, Pagination{Offset: offset, Limit: limit, Total: total}
}

// FindRouteHandler returns the cheapest flood-safe path between two nodes.
// NO_ROUTE is a normal 200 answer; unknown endpoints are 404.
func FindRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := queryAny(c, "start", "start_id")
		end := queryAny(c, "end", "end_id")
		hazards := routing.ParseHazardList(queryAny(c, "hazards", "flooded"))

		res, err := deps.Routing.FindRoute(c.UserContext(), start, end, hazards)
		if err != nil {
			status, _ := classify(err)
			if status >= 500 {
				LoggerFromCtx(c.UserContext()).Error("route search failed", "start", start, "end", end, "error", err)
				res.Message = "route search failed"
			}
			return c.Status(status).JSON(res)
		}
		return c.JSON(res)
	}
}

// createSOSRequest is the citizen-facing SOS payload.
type createSOSRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Province string `json:"province"`
	Area     string `json:"area"`
	Location string `json:"location"`
	Issue    string `json:"issue"`
	Priority string `json:"priority"`
}

// CreateSOSHandler records a new Pending request and announces it.
func CreateSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createSOSRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		priority, err := domain.ParseUrgency(body.Priority)
		if err != nil {
			return mapError(c, err)
		}

		created, err := deps.SOS.Create(c.UserContext(), &domain.SOSRequest{
			Email:    body.Email,
			Name:     body.Name,
			Province: body.Province,
			Area:     body.Area,
			Location: body.Location,
			Issue:    body.Issue,
			Priority: priority,
		})
		if err != nil {
			return mapError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// ListSOSHandler returns every request, paginated.
func ListSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, err := deps.SOS.List(c.UserContext())
		if err != nil {
			return mapError(c, err)
		}
		page, pg := paginate(c, all, 100, 500)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// PendingSOSHandler returns the dispatch queue, most urgent first.
func PendingSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pending, err := deps.SOS.ListPending(c.UserContext())
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(pending)
	}
}

// FilterSOSHandler returns requests in a province, optionally one area.
func FilterSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqs, err := deps.SOS.ListByArea(c.UserContext(), c.Query("province"), c.Query("area"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(reqs)
	}
}

// GetSOSHandler returns a single request.
func GetSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := deps.SOS.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(req)
	}
}

// transitionResponse reports the outcome of a lifecycle call.
type transitionResponse struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

type assignRequest struct {
	RescueTeam string `json:"rescue_team"`
}

// AssignSOSHandler dispatches a team to a request. The team is taken from
// the JSON body, the rescue_team query parameter, or resolved from
// team_email.
func AssignSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body assignRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		teamID := strings.TrimSpace(body.RescueTeam)
		if teamID == "" {
			teamID = c.Query("rescue_team")
		}
		if teamID == "" {
			if email := c.Query("team_email"); email != "" {
				team, err := deps.Teams.GetByEmail(c.UserContext(), email)
				if err != nil {
					return mapError(c, err)
				}
				teamID = team.ID
			}
		}
		if teamID == "" {
			return errBadRequest(c, "rescue_team is required")
		}

		changed, err := deps.SOS.Assign(c.UserContext(), id, teamID)
		if err != nil {
			return mapError(c, err)
		}
		msg := "rescue team assigned"
		if !changed {
			msg = "rescue team already assigned"
		}
		return c.JSON(transitionResponse{ID: id, Changed: changed, Message: msg})
	}
}

// RescueSOSHandler marks a request Rescued.
func RescueSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		changed, err := deps.SOS.Resolve(c.UserContext(), id)
		if err != nil {
			return mapError(c, err)
		}
		msg := "sos marked as rescued"
		if !changed {
			msg = "sos already rescued"
		}
		return c.JSON(transitionResponse{ID: id, Changed: changed, Message: msg})
	}
}

// ListTeamsHandler returns every rescue team.
func ListTeamsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teams, err := deps.Teams.List(c.UserContext())
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(teams)
	}
}

// AvailableTeamsHandler returns teams that can take a mission.
func AvailableTeamsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teams, err := deps.Teams.ListAvailable(c.UserContext())
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(teams)
	}
}

// GetTeamHandler returns a single team.
func GetTeamHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		team, err := deps.Teams.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(team)
	}
}

type availabilityRequest struct {
	Availability string `json:"availability"`
}

// SetAvailabilityHandler updates a team's availability from the JSON body or
// the status query parameter.
func SetAvailabilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body availabilityRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		status := body.Availability
		if status == "" {
			status = c.Query("status")
		}
		if status == "" {
			return errBadRequest(c, "availability is required")
		}

		team, err := deps.Teams.SetAvailability(c.UserContext(), c.Params("id"), status)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(team)
	}
}

// TeamSOSHandler lists a team's requests. status=Rescued returns closed
// requests; anything else returns the ones still in progress.
func TeamSOSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var (
			reqs []domain.SOSRequest
			err  error
		)
		if strings.EqualFold(c.Query("status"), string(domain.StatusRescued)) {
			reqs, err = deps.SOS.ListRescuedBy(c.UserContext(), id)
		} else {
			reqs, err = deps.SOS.ListAssignedTo(c.UserContext(), id)
		}
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(reqs)
	}
}

// legacyTeamSOSHandler resolves the team from the rescue_email query
// parameter before listing.
func legacyTeamSOSHandler(deps *Dependencies, status domain.SOSStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Params("email")
		if email == "" {
			email = c.Query("rescue_email")
		}
		team, err := deps.Teams.GetByEmail(c.UserContext(), email)
		if err != nil {
			return mapError(c, err)
		}
		var reqs []domain.SOSRequest
		if status == domain.StatusRescued {
			reqs, err = deps.SOS.ListRescuedBy(c.UserContext(), team.ID)
		} else {
			reqs, err = deps.SOS.ListAssignedTo(c.UserContext(), team.ID)
		}
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(reqs)
	}
}

// PredictFloodHandler scores flood risk for a province and month.
func PredictFloodHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Predictions == nil {
			return newError(c, fiber.StatusServiceUnavailable, "unavailable", "flood scorer not configured")
		}
		var in domain.FloodPredictionInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		out, err := deps.Predictions.Predict(c.UserContext(), in)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(out)
	}
}
