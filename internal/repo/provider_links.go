package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhive/auth-service/internal/domain"
)

func (s *Store) SaveProviderLink(ctx context.Context, l *domain.ProviderLink) error {
	l.CreatedAt = time.Now().UTC()
	_, err := s.DB.Collection(collProviderLinks).InsertOne(ctx, l)
	return mapDuplicate(err)
}

func (s *Store) FindLinkByProviderAndExternalID(ctx context.Context, provider, externalID string) (*domain.ProviderLink, error) {
	var l domain.ProviderLink
	err := s.DB.Collection(collProviderLinks).
		FindOne(ctx, bson.M{"provider": provider, "external_id": externalID}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
