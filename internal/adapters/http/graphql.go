package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/minarah/internal/core/routing"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	sosType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SOS",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"email":       &graphql.Field{Type: graphql.String},
			"province":    &graphql.Field{Type: graphql.String},
			"area":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: graphql.String},
			"issue":       &graphql.Field{Type: graphql.String},
			"priority":    &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"rescue_team": &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
			"updated_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	teamType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RescueTeam",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"email":        &graphql.Field{Type: graphql.String},
			"phone":        &graphql.Field{Type: graphql.String},
			"province":     &graphql.Field{Type: graphql.String},
			"area":         &graphql.Field{Type: graphql.String},
			"availability": &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SafeRoute",
		Fields: graphql.Fields{
			"status":   &graphql.Field{Type: graphql.String},
			"path":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"distance": &graphql.Field{Type: graphql.Float},
			"message":  &graphql.Field{Type: graphql.String},
		},
	})

	transitionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transition",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"changed": &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pendingSOS": &graphql.Field{
				Type:        graphql.NewList(sosType),
				Description: "Pending SOS requests, most urgent first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.SOS.ListPending(p.Context)
				},
			},
			"sos": &graphql.Field{
				Type:        sosType,
				Description: "Get an SOS request by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.SOS.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"sosByArea": &graphql.Field{
				Type:        graphql.NewList(sosType),
				Description: "SOS requests in a province, optionally one area",
				Args: graphql.FieldConfigArgument{
					"province": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"area":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.SOS.ListByArea(p.Context, p.Args["province"].(string), p.Args["area"].(string))
				},
			},
			"teams": &graphql.Field{
				Type:        graphql.NewList(teamType),
				Description: "List all rescue teams",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Teams.List(p.Context)
				},
			},
			"availableTeams": &graphql.Field{
				Type:        graphql.NewList(teamType),
				Description: "Rescue teams that can take a mission",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Teams.ListAvailable(p.Context)
				},
			},
			"safeRoute": &graphql.Field{
				Type:        routeType,
				Description: "Cheapest path between two road nodes avoiding flooded ones",
				Args: graphql.FieldConfigArgument{
					"start":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"end":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"flooded": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var ids []string
					if raw, ok := p.Args["flooded"].([]interface{}); ok {
						for _, v := range raw {
							if s, ok := v.(string); ok {
								ids = append(ids, s)
							}
						}
					}
					res, err := deps.Routing.FindRoute(p.Context, p.Args["start"].(string), p.Args["end"].(string), routing.NewHazardSet(ids...))
					if err != nil {
						return nil, err
					}
					return res, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"assignSOS": &graphql.Field{
				Type:        transitionType,
				Description: "Dispatch a rescue team to an SOS request",
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"rescue_team": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					changed, err := deps.SOS.Assign(p.Context, id, p.Args["rescue_team"].(string))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"id": id, "changed": changed}, nil
				},
			},
			"rescueSOS": &graphql.Field{
				Type:        transitionType,
				Description: "Mark an SOS request rescued",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					changed, err := deps.SOS.Resolve(p.Context, id)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"id": id, "changed": changed}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
