// Package gqlserver exposes the schema over HTTP: a POST endpoint for
// queries/mutations and a websocket endpoint for subscriptions.
package gqlserver

import (
	"encoding/json"
	"net/http"

	"huntboard/authctx"
	"huntboard/utils"

	"github.com/graphql-go/graphql"
	"github.com/julienschmidt/httprouter"
)

type Server struct {
	schema graphql.Schema
}

func New(schema graphql.Schema) *Server {
	return &Server{schema: schema}
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQL executes a single query or mutation. Authentication stays lazy: the
// session capability is attached here, and only resolvers that need identity
// trigger verification.
func (s *Server) GraphQL(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Must provide query string")
		return
	}
	ctx := authctx.With(r.Context(), authctx.NewSession(r.Header.Get("Authorization")))
	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	utils.RespondWithJSON(w, http.StatusOK, result)
}
