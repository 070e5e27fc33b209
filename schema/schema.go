// Package schema defines the GraphQL surface: one file per aggregate
// (user, application, collection, jobs) plus the subscription channel.
package schema

import (
	"context"
	"time"

	"huntboard/authctx"
	"huntboard/jobs"
	"huntboard/models"
	"huntboard/pubsub"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// AI is the generative backend used by the application advice/task queries.
type AI interface {
	GenerateTasks(ctx context.Context, user models.User, app models.Application) ([]models.Task, error)
	GenerateAdvice(ctx context.Context, user models.User, app models.Application) (string, error)
}

// Deps are the injected collaborators; everything else is reached through
// the shared db/rdx packages.
type Deps struct {
	Broker pubsub.Broker
	Jobs   *jobs.Service
	AI     AI
}

// New assembles the executable schema.
func New(deps Deps) (graphql.Schema, error) {
	queryFields := graphql.Fields{}
	merge(queryFields, userQueryFields())
	merge(queryFields, applicationQueryFields(deps))
	merge(queryFields, collectionQueryFields())
	merge(queryFields, jobsQueryFields(deps))

	mutationFields := graphql.Fields{}
	merge(mutationFields, userMutationFields(deps))
	merge(mutationFields, applicationMutationFields())
	merge(mutationFields, collectionMutationFields(deps))

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: mutationFields,
		}),
		Subscription: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Subscription",
			Fields: subscriptionFields(deps),
		}),
	})
}

func merge(dst, src graphql.Fields) {
	for name, field := range src {
		dst[name] = field
	}
}

// authenticate invokes the request's lazy authentication capability.
func authenticate(p graphql.ResolveParams) (*models.User, error) {
	return authctx.From(p.Context).Authenticate(p.Context)
}

// --- Date scalar ------------------------------------------

// dateType accepts RFC 3339 timestamps and bare yyyy-mm-dd dates, and
// serializes zero times as null.
var dateType = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "An instant in time, accepted as RFC 3339 or yyyy-mm-dd.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			if v.IsZero() {
				return nil
			}
			return v.UTC().Format(time.RFC3339)
		case *time.Time:
			if v == nil || v.IsZero() {
				return nil
			}
			return v.UTC().Format(time.RFC3339)
		}
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return v
		case string:
			return parseDateString(v)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if sv, ok := valueAST.(*ast.StringValue); ok {
			return parseDateString(sv.Value)
		}
		return nil
	},
})

func parseDateString(s string) interface{} {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return nil
}

// --- Arg helpers ------------------------------------------

func argString(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]interface{}, name string, fallback int) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return fallback
}

func argBool(args map[string]interface{}, name string) bool {
	v, _ := args[name].(bool)
	return v
}

func argTime(args map[string]interface{}, name string) time.Time {
	if v, ok := args[name].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func argStrings(args map[string]interface{}, name string) []string {
	raw, ok := args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argMap(args map[string]interface{}, name string) map[string]interface{} {
	if v, ok := args[name].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}
