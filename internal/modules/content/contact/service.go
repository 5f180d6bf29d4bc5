package contact

import (
	"context"
	"fmt"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/mx-space/portfolio/internal/pkg/session"
	"github.com/mx-space/portfolio/internal/store"
	"go.uber.org/zap"
)

// Notifier forwards a stored message to an out-of-band channel. Notify must
// not block the caller and must not report delivery failures.
type Notifier interface {
	Notify(m *models.MessageModel)
}

type Service struct {
	store    store.Store
	notifier Notifier
	logger   *zap.Logger
}

func NewService(st store.Store, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: st, notifier: notifier, logger: logger}
}

// Submit stores the message and then hands it to the notifier.
func (s *Service) Submit(ctx context.Context, in models.InsertMessage) (*models.MessageModel, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.CreateMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.logger.Info("contact message received", zap.Uint("id", m.ID), zap.String("email", m.Email))
	if s.notifier != nil {
		s.notifier.Notify(m)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, actor *models.UserModel) ([]models.MessageModel, error) {
	if actor == nil {
		return nil, session.ErrUnauthorized
	}
	return s.store.ListMessages(ctx)
}
