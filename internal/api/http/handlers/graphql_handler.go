package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/api/gql"
	"github.com/spec-kit/user-service/internal/observability"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// GraphQLHandler serves the GraphQL endpoint.
type GraphQLHandler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewGraphQLHandler constructs handler.
func NewGraphQLHandler(schema graphql.Schema, logger *zap.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, logger: logger}
}

// Execute handles POST /graphql.
func (h *GraphQLHandler) Execute(c *fiber.Ctx) error {
	var req dto.GraphQLRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Query) == "" {
		return apperrors.NewValidationError("query required", nil)
	}

	result := gql.Execute(c.UserContext(), h.schema, req)
	if result.HasErrors() {
		h.logger.Warn("graphql errors",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("operation", req.OperationName),
			zap.Int("count", len(result.Errors)))
	}
	return c.JSON(result)
}
