package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// objectID parses a hex id. A malformed id can never match a stored
// document, so callers report it as not found.
func objectID(hex string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// setter accumulates the $set document of a partial update.
type setter bson.M

func (s setter) str(key string, v *string) {
	setIf(s, key, v)
}

func setIf[T any](s setter, key string, v *T) {
	if v != nil {
		s[key] = *v
	}
}

func (s setter) update() bson.M {
	return bson.M{"$set": bson.M(s)}
}
