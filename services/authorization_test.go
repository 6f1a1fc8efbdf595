package services

import (
	"testing"
	"time"

	"ezwallet/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expired = -time.Minute

func mint(t *testing.T, codec *TokenCodec, claims model.TokenClaims, ttl time.Duration) string {
	t.Helper()
	token, err := codec.Mint(claims, ttl)
	require.NoError(t, err)
	return token
}

func pair(t *testing.T, codec *TokenCodec, claims model.TokenClaims, accessTTL, refreshTTL time.Duration) Credentials {
	t.Helper()
	return Credentials{
		AccessToken:  mint(t, codec, claims, accessTTL),
		RefreshToken: mint(t, codec, claims, refreshTTL),
	}
}

func admin() model.TokenClaims {
	return model.TokenClaims{Username: "admin", Email: "admin@x.com", Role: model.RoleAdmin}
}

func allRequirements() map[string]Requirement {
	return map[string]Requirement{
		"simple": Simple(),
		"user":   User("mario"),
		"admin":  Admin(),
		"group":  Group([]string{"m@x.com"}),
	}
}

func TestEvaluate_MissingTokens(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	token := mint(t, codec, mario(), time.Hour)

	for name, creds := range map[string]Credentials{
		"none":         {},
		"access only":  {AccessToken: token},
		"refresh only": {RefreshToken: token},
	} {
		d := ev.Evaluate(creds, Simple())
		assert.False(t, d.Authorized, name)
		assert.Equal(t, CauseUnauthorized, d.Cause, name)
	}
}

func TestEvaluate_Requirements(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	regular := pair(t, codec, mario(), time.Hour, 7*24*time.Hour)
	admins := pair(t, codec, admin(), time.Hour, 7*24*time.Hour)

	tests := []struct {
		name  string
		creds Credentials
		req   Requirement
		ok    bool
		cause string
	}{
		{"regular simple", regular, Simple(), true, CauseAuthorized},
		{"regular own user", regular, User("mario"), true, CauseAuthorized},
		{"regular other user", regular, User("luigi"), false, CauseUsernameParamMismatch},
		{"regular admin", regular, Admin(), false, CauseNotAdmin},
		{"regular in group", regular, Group([]string{"a@x.com", "m@x.com"}), true, CauseAuthorized},
		{"regular not in group", regular, Group([]string{"other@x.com"}), false, CauseNotInGroup},
		{"regular empty group", regular, Group(nil), false, CauseNotInGroup},
		{"admin simple", admins, Simple(), true, CauseAuthorized},
		{"admin admin", admins, Admin(), true, CauseAuthorized},
		{"admin own username", admins, User("admin"), false, CauseUsernameParamMismatch},
		{"admin other username", admins, User("mario"), false, CauseUsernameParamMismatch},
		{"admin group pass-through", admins, Group([]string{"other@x.com"}), true, CauseAuthorized},
		{"unknown requirement", regular, Requirement{Type: "Owner"}, false, CauseUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.Evaluate(tt.creds, tt.req)
			assert.Equal(t, tt.ok, d.Authorized)
			assert.Equal(t, tt.cause, d.Cause)
			assert.Empty(t, d.RenewedAccessToken)
			assert.Empty(t, d.AdvisoryMessage)
			if tt.ok {
				require.NotNil(t, d.Claims)
				assert.NotEmpty(t, d.Claims.Username)
			} else {
				assert.Nil(t, d.Claims)
			}
		})
	}
}

func TestEvaluate_MismatchedUsers(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	other := mario()
	other.Email = "other@x.com"

	creds := Credentials{
		AccessToken:  mint(t, codec, mario(), time.Hour),
		RefreshToken: mint(t, codec, other, 7*24*time.Hour),
	}
	for name, req := range allRequirements() {
		d := ev.Evaluate(creds, req)
		assert.False(t, d.Authorized, name)
		assert.Equal(t, CauseMismatchedUsers, d.Cause, name)
	}

	promoted := mario()
	promoted.Role = model.RoleAdmin
	creds.RefreshToken = mint(t, codec, promoted, 7*24*time.Hour)
	assert.Equal(t, CauseMismatchedUsers, ev.Evaluate(creds, Admin()).Cause)
}

func TestEvaluate_MissingInformation(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	anonymous := mario()
	anonymous.Username = ""

	live := pair(t, codec, anonymous, time.Hour, 7*24*time.Hour)
	renewing := pair(t, codec, anonymous, expired, 7*24*time.Hour)
	for name, req := range allRequirements() {
		d := ev.Evaluate(live, req)
		assert.False(t, d.Authorized, name)
		assert.Equal(t, CauseMissingInformation, d.Cause, name)

		d = ev.Evaluate(renewing, req)
		assert.False(t, d.Authorized, name)
		assert.Equal(t, CauseMissingInformation, d.Cause, name)
		assert.Empty(t, d.RenewedAccessToken, name)
	}
}

func TestEvaluate_CodecFailures(t *testing.T) {
	codec := newTestCodec(t, "secret")
	forger := newTestCodec(t, "forged")
	ev := NewEvaluator(codec)
	good := mint(t, codec, mario(), time.Hour)

	tests := []struct {
		name  string
		creds Credentials
		cause string
	}{
		{"forged access", Credentials{mint(t, forger, mario(), time.Hour), good}, string(SignatureError)},
		{"forged refresh", Credentials{good, mint(t, forger, mario(), time.Hour)}, string(SignatureError)},
		{"garbage access", Credentials{"garbage", good}, string(MalformedError)},
		{"garbage refresh", Credentials{good, "garbage"}, string(MalformedError)},
		{"expired access forged refresh", Credentials{mint(t, codec, mario(), expired), mint(t, forger, mario(), time.Hour)}, string(SignatureError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.Evaluate(tt.creds, Simple())
			assert.False(t, d.Authorized)
			assert.Equal(t, tt.cause, d.Cause)
		})
	}
}

func TestEvaluate_Renewal(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	creds := pair(t, codec, mario(), expired, 7*24*time.Hour)

	for name, req := range map[string]Requirement{
		"simple": Simple(),
		"user":   User("mario"),
		"group":  Group([]string{"m@x.com"}),
	} {
		t.Run(name, func(t *testing.T) {
			d := ev.Evaluate(creds, req)
			require.True(t, d.Authorized)
			assert.Equal(t, CauseAuthorized, d.Cause)
			assert.Equal(t, AccessTokenRefreshedAdvisory, d.AdvisoryMessage)
			require.NotEmpty(t, d.RenewedAccessToken)

			renewed, err := codec.Verify(d.RenewedAccessToken)
			require.NoError(t, err)
			assert.True(t, renewed.SameIdentity(mario()))
			assert.Equal(t, testNow.Add(DefaultAccessTTL).Unix(), renewed.ExpiresAt.Unix())

			// the renewed token satisfies the same check without renewing again
			again := ev.Evaluate(Credentials{d.RenewedAccessToken, creds.RefreshToken}, req)
			assert.True(t, again.Authorized)
			assert.Empty(t, again.RenewedAccessToken)
		})
	}
}

func TestEvaluate_RenewalRequirementFailures(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	regular := pair(t, codec, mario(), expired, 7*24*time.Hour)
	admins := pair(t, codec, admin(), expired, 7*24*time.Hour)

	tests := []struct {
		name  string
		creds Credentials
		req   Requirement
		ok    bool
		cause string
	}{
		{"other user", regular, User("luigi"), false, CauseUsernameMismatch},
		{"admin as user", admins, User("admin"), false, CauseUsernameMismatch},
		{"regular as admin", regular, Admin(), false, CauseNotAdmin},
		{"not in group", regular, Group([]string{"other@x.com"}), false, CauseNotInGroup},
		{"admin renews admin", admins, Admin(), true, CauseAuthorized},
		{"admin group pass-through", admins, Group([]string{"other@x.com"}), true, CauseAuthorized},
		{"unknown requirement", regular, Requirement{Type: "Owner"}, false, CauseUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.Evaluate(tt.creds, tt.req)
			assert.Equal(t, tt.ok, d.Authorized)
			assert.Equal(t, tt.cause, d.Cause)
			assert.Equal(t, tt.ok, d.RenewedAccessToken != "")
		})
	}
}

func TestEvaluate_PerformLoginAgain(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	bothExpired := pair(t, codec, mario(), expired, expired)
	refreshExpired := pair(t, codec, mario(), time.Hour, expired)

	for name, req := range allRequirements() {
		for label, creds := range map[string]Credentials{"both": bothExpired, "refresh": refreshExpired} {
			d := ev.Evaluate(creds, req)
			assert.False(t, d.Authorized, name+"/"+label)
			assert.Equal(t, CausePerformLoginAgain, d.Cause, name+"/"+label)
			assert.Empty(t, d.RenewedAccessToken)
		}
	}
}

func TestEvaluate_GroupScenario(t *testing.T) {
	codec := newTestCodec(t, "secret")
	ev := NewEvaluator(codec)
	creds := pair(t, codec, mario(), time.Hour, 7*24*time.Hour)

	d := ev.Evaluate(creds, Group([]string{"m@x.com"}))
	assert.True(t, d.Authorized)

	d = ev.Evaluate(creds, Group([]string{"other@x.com"}))
	assert.False(t, d.Authorized)
	assert.Equal(t, "User is not a part of the group", d.Cause)
}
