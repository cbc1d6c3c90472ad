package domain

// UserErrorCode classifies a failed account creation.
type UserErrorCode string

const (
	UserErrorCodeEmailTaken UserErrorCode = "EMAIL_TAKEN"
	UserErrorCodeUnknown    UserErrorCode = "UNKNOWN"
)

// UserCreateInput is the request payload for creating an account.
type UserCreateInput struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserError describes why an account could not be created.
type UserError struct {
	Code    UserErrorCode `json:"code"`
	Message string        `json:"message"`
}

// CreateUserResult carries exactly one of User or Error.
type CreateUserResult struct {
	User  *UserView  `json:"user"`
	Error *UserError `json:"error"`
}

// CreateUserSucceeded builds a result holding the created user.
func CreateUserSucceeded(user *UserView) *CreateUserResult {
	return &CreateUserResult{User: user}
}

// CreateUserFailed builds a result holding a classified error.
func CreateUserFailed(code UserErrorCode, message string) *CreateUserResult {
	return &CreateUserResult{Error: &UserError{Code: code, Message: message}}
}
