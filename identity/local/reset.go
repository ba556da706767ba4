package local

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/subiehq/subie/identity"
	apperrors "github.com/subiehq/subie/internal/errors"
)

// StartReset issues a reset token and mails it to the identifier. Unknown
// identifiers return nil so the endpoint cannot be used to enumerate
// accounts; the no-op is logged for operators.
func (s *Service) StartReset(ctx context.Context, identifier string) error {
	if err := identity.ValidateIdentifier(identifier); err != nil {
		return err
	}

	cred, err := s.creds.GetByEmail(ctx, identifier)
	if err != nil || cred == nil {
		s.logger.Info().Str("identifier", identifier).Msg("reset requested for unknown identifier")
		return nil
	}

	token := uuid.New().String()
	s.sessions.Set(resetKeyPrefix+token, []byte(cred.SubjectID), resetTTL)

	link := fmt.Sprintf("%s/reset?token=%s", s.baseURL, token)
	body := fmt.Sprintf("A password reset was requested for your account.\n\nReset link: %s\n\nThe link expires in %s.", link, resetTTL)
	if err := s.sender.Send(cred.Email, "Reset your password", body); err != nil {
		return errors.Wrap(err, "[Service.StartReset] sender.Send")
	}
	return nil
}

// CompleteReset exchanges a reset token for a new secret. The token is
// single-use.
func (s *Service) CompleteReset(ctx context.Context, token, newSecret string) error {
	subject, ok := s.sessions.Get(resetKeyPrefix + token)
	if !ok {
		return apperrors.ErrNotFound
	}
	if err := s.SetPassword(ctx, string(subject), newSecret); err != nil {
		return err
	}
	s.sessions.Delete(resetKeyPrefix + token)
	return nil
}
