package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhive/auth-service/internal/domain"
)

func (s *Store) SaveCredential(ctx context.Context, c *domain.LocalCredential) error {
	c.CreatedAt = time.Now().UTC()
	_, err := s.DB.Collection(collCredentials).InsertOne(ctx, c)
	return mapDuplicate(err)
}

func (s *Store) FindCredentialByLoginID(ctx context.Context, loginID string) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	err := s.DB.Collection(collCredentials).FindOne(ctx, bson.M{"login_id": loginID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindCredentialByAccount(ctx context.Context, accountID primitive.ObjectID) (*domain.LocalCredential, error) {
	var c domain.LocalCredential
	err := s.DB.Collection(collCredentials).FindOne(ctx, bson.M{"account_id": accountID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ExistsLoginID(ctx context.Context, loginID string) (bool, error) {
	n, err := s.DB.Collection(collCredentials).CountDocuments(ctx, bson.M{"login_id": loginID})
	return n > 0, err
}

func (s *Store) UpdateCredentialPassword(ctx context.Context, loginID, passwordHash string) error {
	_, err := s.DB.Collection(collCredentials).UpdateOne(ctx,
		bson.M{"login_id": loginID},
		bson.M{"$set": bson.M{"password_hash": passwordHash}})
	return err
}
