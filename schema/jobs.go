package schema

import (
	"github.com/graphql-go/graphql"
)

var jobType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Job",
	Fields: graphql.Fields{
		"title":       &graphql.Field{Type: graphql.String},
		"company":     &graphql.Field{Type: graphql.String},
		"companyLogo": &graphql.Field{Type: graphql.String},
		"location":    &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"salary":      &graphql.Field{Type: graphql.String},
		"source":      &graphql.Field{Type: graphql.String},
		"since":       &graphql.Field{Type: graphql.String},
	},
})

func jobsQueryFields(deps Deps) graphql.Fields {
	return graphql.Fields{
		// getJobs is the one public query: listings carry no user data.
		"getJobs": &graphql.Field{
			Type: graphql.NewList(jobType),
			Args: graphql.FieldConfigArgument{
				"page":  &graphql.ArgumentConfig{Type: graphql.Int},
				"query": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page := argInt(p.Args, "page", 1)
				query := argString(p.Args, "query")
				return deps.Jobs.Listings(p.Context, page, query)
			},
		},
	}
}
