package local

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

// mintSession issues a signed session token and records it in the session
// cache under its jti so it can be revoked.
func (s *Service) mintSession(cred *identity.Credential) (*identity.Session, error) {
	now := s.nowTime()
	expiresAt := now.Add(s.sessionTTL)
	jti := uuid.New().String()

	claims := jwtlib.MapClaims{
		"sub":            cred.SubjectID,
		"jti":            jti,
		"iat":            now.Unix(),
		"exp":            expiresAt.Unix(),
		"email":          cred.Metadata.Email,
		"email_verified": cred.Metadata.EmailVerified,
		"given_name":     cred.Metadata.FirstName,
		"family_name":    cred.Metadata.LastName,
	}
	if cred.Metadata.AvatarURL != "" {
		claims["picture"] = cred.Metadata.AvatarURL
	}
	if cred.Metadata.RoleHint != "" {
		claims["role"] = cred.Metadata.RoleHint
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, err
	}

	s.sessions.Set(sessionKeyPrefix+jti, []byte(cred.SubjectID), s.sessionTTL)

	return &identity.Session{
		SubjectID: cred.SubjectID,
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Metadata:  cred.Metadata,
	}, nil
}

// parseSessionToken verifies a token's signature and rebuilds the session it
// describes. Expiry is checked by the caller against the injectable clock,
// not by the JWT library, so tests can travel in time.
func (s *Service) parseSessionToken(raw string) (*identity.Session, string, error) {
	token, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrSessionNotFound
		}
		return s.signingKey, nil
	}, jwtlib.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, "", apperrors.ErrSessionNotFound
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, "", apperrors.ErrSessionNotFound
	}

	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return nil, "", apperrors.ErrSessionNotFound
	}

	sess := &identity.Session{
		SubjectID: sub,
		IssuedAt:  unixClaim(claims, "iat"),
		ExpiresAt: unixClaim(claims, "exp"),
		Metadata: identity.Metadata{
			Email:         stringClaim(claims, "email"),
			EmailVerified: boolClaim(claims, "email_verified"),
			FirstName:     stringClaim(claims, "given_name"),
			LastName:      stringClaim(claims, "family_name"),
			AvatarURL:     stringClaim(claims, "picture"),
			RoleHint:      stringClaim(claims, "role"),
		},
	}
	return sess, jti, nil
}

func stringClaim(claims jwtlib.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

func boolClaim(claims jwtlib.MapClaims, key string) bool {
	v, _ := claims[key].(bool)
	return v
}

func unixClaim(claims jwtlib.MapClaims, key string) time.Time {
	switch v := claims[key].(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}
