package middleware

import (
	"net/http"

	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	claimsKey                = "claims"
	renewedAccessTokenKey    = "renewedAccessToken"
	refreshedTokenMessageKey = "refreshedTokenMessage"
)

// Guard runs the authorization evaluator against the session cookies of a
// request and applies the cookie side effect of a silent renewal.
type Guard struct {
	evaluator *services.Evaluator
	cookies   *services.CookieManager
	metrics   *Metrics
	log       zerolog.Logger
}

func NewGuard(evaluator *services.Evaluator, cookies *services.CookieManager, metrics *Metrics, log zerolog.Logger) *Guard {
	return &Guard{
		evaluator: evaluator,
		cookies:   cookies,
		metrics:   metrics,
		log:       log,
	}
}

// Verify evaluates req for the current request. A request is renewed at most
// once: later checks in the same handler reuse the renewed access token.
func (g *Guard) Verify(c *gin.Context, req services.Requirement) services.Decision {
	creds := g.cookies.Read(c)
	if renewed := c.GetString(renewedAccessTokenKey); renewed != "" {
		creds.AccessToken = renewed
	}

	decision := g.evaluator.Evaluate(creds, req)
	if decision.RenewedAccessToken != "" {
		g.cookies.Issue(c, services.AccessTokenCookie, decision.RenewedAccessToken, g.evaluator.AccessTTL())
		c.Set(renewedAccessTokenKey, decision.RenewedAccessToken)
		c.Set(refreshedTokenMessageKey, decision.AdvisoryMessage)
	}
	if decision.Authorized {
		c.Set(claimsKey, decision.Claims)
	}

	g.metrics.ObserveDecision(decision)
	g.log.Debug().
		Str("path", c.FullPath()).
		Str("auth_type", string(req.Type)).
		Bool("authorized", decision.Authorized).
		Bool("renewed", decision.RenewedAccessToken != "").
		Str("cause", decision.Cause).
		Msg("authorization decision")

	return decision
}

// Require aborts with 401 and the decision cause unless the requirement built
// by requirement holds.
func (g *Guard) Require(requirement func(c *gin.Context) services.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.Verify(c, requirement(c))
		if !decision.Authorized {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": decision.Cause})
			return
		}
		c.Next()
	}
}

// RequireAny passes when one of the requirements holds, tried in order. The
// cause of the last failure is reported otherwise.
func (g *Guard) RequireAny(requirements ...func(c *gin.Context) services.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := services.Decision{Cause: services.CauseUnauthorized}
		for _, requirement := range requirements {
			if decision = g.Verify(c, requirement(c)); decision.Authorized {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": decision.Cause})
	}
}

func (g *Guard) RequireSimple() gin.HandlerFunc { return g.Require(SimpleRequirement) }

func (g *Guard) RequireAdmin() gin.HandlerFunc { return g.Require(AdminRequirement) }

// RequireUser matches the token owner against the named route parameter.
func (g *Guard) RequireUser(param string) gin.HandlerFunc { return g.Require(UserRequirement(param)) }

func SimpleRequirement(*gin.Context) services.Requirement { return services.Simple() }

func AdminRequirement(*gin.Context) services.Requirement { return services.Admin() }

func UserRequirement(param string) func(c *gin.Context) services.Requirement {
	return func(c *gin.Context) services.Requirement { return services.User(c.Param(param)) }
}

// RefreshedTokenMessage returns the renewal advisory of the request, if any.
func RefreshedTokenMessage(c *gin.Context) string {
	return c.GetString(refreshedTokenMessageKey)
}

// Claims returns the claim set of the last successful authorization.
func Claims(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok && claims != nil
}
