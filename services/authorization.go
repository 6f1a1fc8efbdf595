package services

import (
	"slices"
	"time"

	"ezwallet/model"
)

type AuthType string

const (
	AuthSimple AuthType = "Simple"
	AuthUser   AuthType = "User"
	AuthAdmin  AuthType = "Admin"
	AuthGroup  AuthType = "Group"
)

// Requirement is what a route demands from the caller's tokens.
type Requirement struct {
	Type     AuthType
	Username string   // AuthUser only
	Emails   []string // AuthGroup only
}

func Simple() Requirement { return Requirement{Type: AuthSimple} }

func User(username string) Requirement { return Requirement{Type: AuthUser, Username: username} }

func Admin() Requirement { return Requirement{Type: AuthAdmin} }

func Group(emails []string) Requirement { return Requirement{Type: AuthGroup, Emails: emails} }

const (
	CauseAuthorized              = "Authorized"
	CauseUnauthorized            = "Unauthorized"
	CausePerformLoginAgain       = "Perform login again"
	CauseMissingInformation      = "Token is missing information"
	CauseMismatchedUsers         = "Mismatched users"
	CauseUsernameParamMismatch   = "Username in url params doesn't match the token"
	CauseUsernameMismatch        = "Username doesn't match the token"
	CauseNotAdmin                = "Logged user is not admin"
	CauseNotInGroup              = "User is not a part of the group"
	AccessTokenRefreshedAdvisory = "Access token has been refreshed. Remember to copy the new one in the headers of subsequent calls"
)

// Credentials are the two tokens presented by a request. An empty string
// means the token is absent.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Decision is the outcome of an authorization check. RenewedAccessToken and
// AdvisoryMessage are set only when the access token was silently renewed.
type Decision struct {
	Authorized         bool
	Cause              string
	Claims             *model.TokenClaims
	RenewedAccessToken string
	AdvisoryMessage    string
}

func deny(cause string) Decision {
	return Decision{Authorized: false, Cause: cause}
}

// Evaluator decides whether a pair of tokens satisfies a Requirement. It does
// no I/O; persisting a renewed token is left to the caller.
type Evaluator struct {
	codec *TokenCodec
}

func NewEvaluator(codec *TokenCodec) *Evaluator {
	return &Evaluator{codec: codec}
}

func (e *Evaluator) Evaluate(creds Credentials, req Requirement) Decision {
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return deny(CauseUnauthorized)
	}

	access, err := e.codec.Verify(creds.AccessToken)
	if err != nil {
		if IsExpired(err) {
			return e.renew(creds.RefreshToken, req)
		}
		return deny(errorKind(err))
	}
	refresh, err := e.codec.Verify(creds.RefreshToken)
	if err != nil {
		if IsExpired(err) {
			// a live access token does not outlive its refresh token
			return e.renew(creds.RefreshToken, req)
		}
		return deny(errorKind(err))
	}

	if !access.Complete() || !refresh.Complete() {
		return deny(CauseMissingInformation)
	}
	if !access.SameIdentity(*refresh) {
		return deny(CauseMismatchedUsers)
	}

	switch req.Type {
	case AuthSimple:
	case AuthUser:
		if req.Username != access.Username || req.Username != refresh.Username || access.Role == model.RoleAdmin {
			return deny(CauseUsernameParamMismatch)
		}
	case AuthAdmin:
		if access.Role != model.RoleAdmin || refresh.Role != model.RoleAdmin {
			return deny(CauseNotAdmin)
		}
	case AuthGroup:
		// Admins pass through; callers gate them with a separate Admin check.
		if refresh.Role == model.RoleRegular {
			if !slices.Contains(req.Emails, access.Email) || !slices.Contains(req.Emails, refresh.Email) {
				return deny(CauseNotInGroup)
			}
		}
	default:
		return deny(CauseUnauthorized)
	}

	return Decision{Authorized: true, Cause: CauseAuthorized, Claims: access}
}

// renew handles an expired access token: the requirement is checked against
// the refresh token alone and a fresh access token is minted from it.
func (e *Evaluator) renew(refreshToken string, req Requirement) Decision {
	refresh, err := e.codec.Verify(refreshToken)
	if err != nil {
		if IsExpired(err) {
			return deny(CausePerformLoginAgain)
		}
		return deny(errorKind(err))
	}
	if !refresh.Complete() {
		return deny(CauseMissingInformation)
	}

	switch req.Type {
	case AuthSimple:
	case AuthUser:
		if req.Username != refresh.Username || refresh.Role == model.RoleAdmin {
			return deny(CauseUsernameMismatch)
		}
	case AuthAdmin:
		if refresh.Role != model.RoleAdmin {
			return deny(CauseNotAdmin)
		}
	case AuthGroup:
		if refresh.Role == model.RoleRegular && !slices.Contains(req.Emails, refresh.Email) {
			return deny(CauseNotInGroup)
		}
	default:
		return deny(CauseUnauthorized)
	}

	renewed, err := e.codec.MintAccess(model.TokenClaims{
		Username: refresh.Username,
		Email:    refresh.Email,
		Role:     refresh.Role,
	})
	if err != nil {
		return deny(errorKind(err))
	}

	return Decision{
		Authorized:         true,
		Cause:              CauseAuthorized,
		Claims:             refresh,
		RenewedAccessToken: renewed,
		AdvisoryMessage:    AccessTokenRefreshedAdvisory,
	}
}

// AccessTTL is the lifetime given to renewed access tokens.
func (e *Evaluator) AccessTTL() time.Duration {
	return e.codec.AccessTTL()
}
