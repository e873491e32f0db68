package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collAccounts      = "accounts"
	collCredentials   = "credentials"
	collProviderLinks = "provider_links"
	collRefreshTokens = "refresh_tokens"
)

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Store{Client: cli, DB: cli.Database(dbname)}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the allocator and registrar rely
// on. The allocator in particular depends on idxNameCode rejecting duplicate
// (display_name, short_code) pairs at commit time.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	accounts := s.DB.Collection(collAccounts)
	if _, err := accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "display_name", Value: 1}, {Key: "short_code", Value: 1}},
		Options: options.Index().
			SetName(idxNameCode).
			SetUnique(true),
	}); err != nil {
		return err
	}
	// Partial: email is optional for social accounts, uniqueness applies only
	// when the field exists.
	if _, err := accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName(idxEmail).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"email": bson.M{"$exists": true}}),
	}); err != nil {
		return err
	}

	credentials := s.DB.Collection(collCredentials)
	if _, err := credentials.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login_id", Value: 1}},
		Options: options.Index().SetName(idxLoginID).SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := credentials.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}},
		Options: options.Index().SetName(idxCredAccount).SetUnique(true),
	}); err != nil {
		return err
	}

	links := s.DB.Collection(collProviderLinks)
	if _, err := links.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "external_id", Value: 1}},
		Options: options.Index().SetName(idxProviderExternal).SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := links.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "provider", Value: 1}},
		Options: options.Index().SetName(idxAccountProvider).SetUnique(true),
	}); err != nil {
		return err
	}

	refresh := s.DB.Collection(collRefreshTokens)
	if _, err := refresh.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return err
	}
	_, err := refresh.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
