package dto

// GraphQLRequest is the POST /graphql payload.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse mirrors the GraphQL-over-HTTP response shape.
type GraphQLResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []GraphQLError         `json:"errors,omitempty"`
}
