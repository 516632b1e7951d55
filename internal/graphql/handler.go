package graphql

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/emilythestrangee/forum/backend/internal/forum"
)

type Handler struct {
	svc *forum.Service

	schema graphql.Schema
}

func New(svc *forum.Service) (*Handler, error) {
	gh := &Handler{
		svc: svc,
	}

	if err := gh.initSchema(); err != nil {
		return nil, err
	}

	return gh, nil
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (gh *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	res := graphql.Do(graphql.Params{
		Context:        r.Context(),
		Schema:         gh.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
	})
	if res.HasErrors() {
		log.Printf("[GRAPHQL] %d error(s), first: %s", len(res.Errors), res.Errors[0].Message)
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("[GRAPHQL] write response:", err)
	}
}
