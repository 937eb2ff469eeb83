package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

const usersCollection = "users"

type MongoAuthRepository struct {
	coll *mongo.Collection
}

func NewAuthRepository(db *mongo.Database) *MongoAuthRepository {
	return &MongoAuthRepository{coll: db.Collection(usersCollection)}
}

type mongoProfile struct {
	Phone      string `bson:"phone,omitempty"`
	Location   string `bson:"location,omitempty"`
	Age        *int   `bson:"age,omitempty"`
	Occupation string `bson:"occupation,omitempty"`
	Gender     string `bson:"gender,omitempty"`
}

type mongoUser struct {
	ID                            primitive.ObjectID `bson:"_id,omitempty"`
	Email                         string             `bson:"email"`
	Name                          string             `bson:"name"`
	PasswordHash                  string             `bson:"password_hash"`
	Role                          int                `bson:"role"`
	IsNewUser                     bool               `bson:"is_new_user"`
	HasCompletedBehaviorQuestions bool               `bson:"has_completed_behavior_questions"`
	Profile                       mongoProfile       `bson:"profile"`
	CreatedAt                     int64              `bson:"created_at"`
	UpdatedAt                     int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique email index.
func (r *MongoAuthRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoAuthRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAuthRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAuthRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoAuthRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	doc := toMongoUser(user)
	update := bson.M{"$set": bson.M{
		"name":                             doc.Name,
		"is_new_user":                      doc.IsNewUser,
		"has_completed_behavior_questions": doc.HasCompletedBehaviorQuestions,
		"profile":                          doc.Profile,
		"updated_at":                       doc.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoAuthRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Email:                         u.Email,
		Name:                          u.Name,
		PasswordHash:                  u.PasswordHash,
		Role:                          int(u.Role),
		IsNewUser:                     u.IsNewUser,
		HasCompletedBehaviorQuestions: u.HasCompletedBehaviorQuestions,
		Profile: mongoProfile{
			Phone:      u.Profile.Phone,
			Location:   u.Profile.Location,
			Age:        u.Profile.Age,
			Occupation: u.Profile.Occupation,
			Gender:     u.Profile.Gender,
		},
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

// toDomain keeps the stored role as is. An out-of-range role surfaces as an
// invalid domain.Role and the session treats it as logged out.
func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                            mu.ID.Hex(),
		Email:                         mu.Email,
		Name:                          mu.Name,
		PasswordHash:                  mu.PasswordHash,
		Role:                          domain.Role(mu.Role),
		IsNewUser:                     mu.IsNewUser,
		HasCompletedBehaviorQuestions: mu.HasCompletedBehaviorQuestions,
		Profile: domain.ProfileFields{
			Phone:      mu.Profile.Phone,
			Location:   mu.Profile.Location,
			Age:        mu.Profile.Age,
			Occupation: mu.Profile.Occupation,
			Gender:     mu.Profile.Gender,
		},
		CreatedAt: unixToTime(mu.CreatedAt),
		UpdatedAt: unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

var _ ports.AuthRepository = (*MongoAuthRepository)(nil)
