package dto

import "ezwallet/model"

type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func NewUserResponse(user model.User) UserResponse {
	return UserResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}

type DeleteUserRequest struct {
	Email string `json:"email" binding:"required"`
}

type DeleteUserResponse struct {
	DeletedTransactions int  `json:"deletedTransactions"`
	DeletedFromGroup    bool `json:"deletedFromGroup"`
}

// DataResponse is the envelope of every successful call.
type DataResponse struct {
	Data                  any    `json:"data"`
	RefreshedTokenMessage string `json:"refreshedTokenMessage,omitempty"`
}
