package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lon": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(*domain.Position).Lon(); ok {
						return v, nil
					}
					return nil, nil
				},
			},
			"lat": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(*domain.Position).Lat(); ok {
						return v, nil
					}
					return nil, nil
				},
			},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ReportSummary",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.String},
			"ts": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.ReportSummary).TS, nil
				},
			},
			"seaSurfaceTemperature": &graphql.Field{Type: graphql.Float},
			"airTemperature":        &graphql.Field{Type: graphql.Float},
		},
	})

	pageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ReportPage",
		Fields: graphql.Fields{
			"reports":    &graphql.Field{Type: graphql.NewList(summaryType)},
			"page":       &graphql.Field{Type: graphql.Int},
			"totalPages": &graphql.Field{Type: graphql.Int},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WeatherReport",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"callLetters": &graphql.Field{Type: graphql.String},
			"type":        &graphql.Field{Type: graphql.String},
			"ts": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.WeatherReport).TS, nil
				},
			},
			"position": &graphql.Field{Type: positionType},
			"seaSurfaceTemperature": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return floatOrNil(domain.MeasurementValue(p.Source.(*domain.WeatherReport).SeaSurfaceTemperature)), nil
				},
			},
			"airTemperature": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return floatOrNil(domain.MeasurementValue(p.Source.(*domain.WeatherReport).AirTemperature)), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"reports": &graphql.Field{
				Type:        pageType,
				Description: "One page of report summaries ordered by id",
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"from": &graphql.ArgumentConfig{Type: graphql.DateTime},
					"to":   &graphql.ArgumentConfig{Type: graphql.DateTime},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					page, _ := p.Args["page"].(int)
					var tr domain.TimeRange
					if t, ok := p.Args["from"].(time.Time); ok {
						tr.From = &t
					}
					if t, ok := p.Args["to"].(time.Time); ok {
						tr.To = &t
					}
					return deps.Weather.ListReports(p.Context, tr, page)
				},
			},
			"report": &graphql.Field{
				Type:        reportType,
				Description: "A single report by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return deps.Weather.GetReport(p.Context, id)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// floatOrNil keeps a missing measurement from resolving to 0.
func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
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
