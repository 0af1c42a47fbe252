package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "QueryRegion",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StatusMessage",
		Fields: graphql.Fields{
			"text": &graphql.Field{Type: graphql.String},
			"kind": &graphql.Field{Type: graphql.String},
		},
	})

	stateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SessionState",
		Fields: graphql.Fields{
			"phase":           &graphql.Field{Type: graphql.String},
			"last_outcome":    &graphql.Field{Type: graphql.String},
			"token":           &graphql.Field{Type: graphql.Int},
			"prompt":          &graphql.Field{Type: graphql.String},
			"region":          &graphql.Field{Type: regionType},
			"transient_names": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"pinned_names":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"status":          &graphql.Field{Type: statusType},
			"fit_pending":     &graphql.Field{Type: graphql.Boolean},
			"fit":             &graphql.Field{Type: boundsType},
			"total_features":  &graphql.Field{Type: graphql.Int},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"state": &graphql.Field{Type: stateType},
		},
	})

	catalogEntryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CatalogEntry",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"image":    &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
		},
	})

	queryLogType := graphql.NewObject(graphql.ObjectConfig{
		Name: "QueryLogEntry",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"token":          &graphql.Field{Type: graphql.Int},
			"prompt":         &graphql.Field{Type: graphql.String},
			"outcome":        &graphql.Field{Type: graphql.String},
			"total_features": &graphql.Field{Type: graphql.Int},
			"entities":       &graphql.Field{Type: graphql.NewList(graphql.String)},
			"error":          &graphql.Field{Type: graphql.String},
			"created_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	sessionView := func(id string) (interface{}, error) {
		orch, err := deps.Sessions.Get(id)
		if err != nil {
			return nil, err
		}
		return SessionView{ID: orch.ID(), State: orch.Snapshot()}, nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current state of a session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sessionView(p.Args["id"].(string))
				},
			},
			"catalog": &graphql.Field{
				Type:        graphql.NewList(catalogEntryType),
				Description: "Known entities, optionally filtered by category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.List(p.Args["category"].(string)), nil
				},
			},
			"presets": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Quick-pick prompts",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Presets(), nil
				},
			},
			"queryLog": &graphql.Field{
				Type:        graphql.NewList(queryLogType),
				Description: "Past submissions of a session, newest first",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"offset":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.QueryLog == nil {
						return nil, fmt.Errorf("query log not configured")
					}
					entries, _, err := deps.QueryLog.ListBySession(p.Context,
						p.Args["session_id"].(string), p.Args["offset"].(int), p.Args["limit"].(int))
					return entries, err
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"submitQuery": &graphql.Field{
				Type:        sessionType,
				Description: "Run a prompt against the session's current viewport",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"prompt":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					orch, err := deps.Sessions.Get(p.Args["session_id"].(string))
					if err != nil {
						return nil, err
					}
					st, err := orch.Submit(p.Context, p.Args["prompt"].(string), nil)
					if err != nil {
						return nil, err
					}
					return SessionView{ID: orch.ID(), State: st}, nil
				},
			},
			"pin":   pinField(deps, sessionType, true),
			"unpin": pinField(deps, sessionType, false),
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func pinField(deps *Dependencies, sessionType *graphql.Object, pin bool) *graphql.Field {
	desc := "Unpin an entity"
	if pin {
		desc = "Pin an entity so it survives later queries"
	}
	return &graphql.Field{
		Type:        sessionType,
		Description: desc,
		Args: graphql.FieldConfigArgument{
			"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			orch, err := deps.Sessions.Get(p.Args["session_id"].(string))
			if err != nil {
				return nil, err
			}
			name := p.Args["name"].(string)
			var st domain.State
			if pin {
				st, err = orch.Pin(p.Context, name)
			} else {
				st, err = orch.Unpin(p.Context, name)
			}
			if err != nil {
				return nil, err
			}
			return SessionView{ID: orch.ID(), State: st}, nil
		},
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
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
