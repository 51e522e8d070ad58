package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/dd0wney/owlgraph/pkg/logging"
)

// Request represents a GraphQL HTTP request
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response represents a GraphQL HTTP response
type Response struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error represents a GraphQL error
type Error struct {
	Message string `json:"message"`
}

// Handler serves GraphQL queries over HTTP
type Handler struct {
	executor *Executor
	logger   logging.Logger
}

// NewHandler creates a new GraphQL HTTP handler
func NewHandler(executor *Executor, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handler{executor: executor, logger: logger.With(logging.Component("graphql"))}
}

// ServeHTTP handles POST requests carrying a JSON GraphQL request
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.executor.Execute(r.Context(), req.Query, req.Variables)
	response := Response{Data: result.Data}
	for _, err := range result.Errors {
		response.Errors = append(response.Errors, Error{Message: err.Message})
	}
	if len(response.Errors) > 0 {
		h.logger.Debug("graphql query failed", logging.Int("errors", len(response.Errors)))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("failed to write graphql response", logging.Error(err))
	}
}
