package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhive/auth-service/internal/domain"
)

// SaveAccount inserts a new account. A (display_name, short_code) collision
// comes back as ErrDuplicateNameCode, an email collision as ErrDuplicateEmail.
func (s *Store) SaveAccount(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	a.CreatedAt = time.Now().UTC()
	res, err := s.DB.Collection(collAccounts).InsertOne(ctx, a)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return a, nil
}

func (s *Store) FindAccountByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	var a domain.Account
	err := s.DB.Collection(collAccounts).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	err := s.DB.Collection(collAccounts).FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ExistsAccountEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.DB.Collection(collAccounts).CountDocuments(ctx, bson.M{"email": email})
	return n > 0, err
}

// TouchLogin stamps last_login and flips the account online.
func (s *Store) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.DB.Collection(collAccounts).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now().UTC(), "online": true}})
	return err
}

func (s *Store) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	_, err := s.DB.Collection(collAccounts).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"online": online}})
	return err
}
