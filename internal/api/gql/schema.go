package gql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/domain"
)

// UserCreator is the capability behind the userCreate mutation.
type UserCreator interface {
	CreateUser(ctx context.Context, input domain.UserCreateInput) (*domain.CreateUserResult, error)
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lastName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userErrorCodeType = graphql.NewEnum(graphql.EnumConfig{
	Name: "UserErrorCode",
	Values: graphql.EnumValueConfigMap{
		string(domain.UserErrorCodeEmailTaken): &graphql.EnumValueConfig{Value: domain.UserErrorCodeEmailTaken},
		string(domain.UserErrorCodeUnknown):    &graphql.EnumValueConfig{Value: domain.UserErrorCodeUnknown},
	},
})

var userErrorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserError",
	Fields: graphql.Fields{
		"code":    &graphql.Field{Type: graphql.NewNonNull(userErrorCodeType)},
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userCreateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserCreate",
	Fields: graphql.Fields{
		"user":  &graphql.Field{Type: userType},
		"error": &graphql.Field{Type: userErrorType},
	},
})

var userCreateInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UserCreateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"lastName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

// NewSchema builds the schema exposing Mutation.userCreate.
func NewSchema(users UserCreator) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return "ok", nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"userCreate": &graphql.Field{
				Type: graphql.NewNonNull(userCreateType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userCreateInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, err := users.CreateUser(p.Context, decodeUserCreateInput(p.Args["input"]))
					if err != nil {
						return nil, err
					}
					return result, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func decodeUserCreateInput(raw interface{}) domain.UserCreateInput {
	fields, _ := raw.(map[string]interface{})
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	return domain.UserCreateInput{
		Name:     str("name"),
		LastName: str("lastName"),
		Email:    str("email"),
		Password: str("password"),
	}
}

// Execute runs a request against the schema.
func Execute(ctx context.Context, schema graphql.Schema, req dto.GraphQLRequest) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}
