package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocalCredential holds the login id and password hash for an account that
// registered locally. Social-only accounts have no credential at all.
// Exactly one credential per account.
type LocalCredential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID    primitive.ObjectID `bson:"account_id"    json:"account_id"`
	LoginID      string             `bson:"login_id"      json:"login_id"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}
