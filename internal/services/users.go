package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jmalik/taskly-backend/internal/auth"
	"github.com/jmalik/taskly-backend/internal/models"
	"github.com/jmalik/taskly-backend/pkg/utils"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("unable to login")
	ErrNotFound           = errors.New("not found")
)

type UserService struct {
	users     *mongo.Collection
	tasks     *mongo.Collection
	jwtSecret []byte
}

func NewUserService(db *mongo.Database, jwtSecret []byte) *UserService {
	return &UserService{
		users:     db.Collection("users"),
		tasks:     db.Collection("tasks"),
		jwtSecret: jwtSecret,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// UserUpdate carries the allow-listed profile fields; nil means "leave
// unchanged".
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// Register persists a new user and issues their first session token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Age:       input.Age,
		Password:  hash,
		Tokens:    []models.SessionToken{},
	}

	token, err := auth.GenerateToken(user.ID.Hex(), s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}
	user.Tokens = append(user.Tokens, models.SessionToken{Token: token})

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		// The unique email index catches registrations that raced past
		// the pre-insert lookup.
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and appends a fresh session token. Missing
// user and wrong password fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.getByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID.Hex(), s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	_, err = s.users.UpdateByID(ctx, user.ID, bson.M{
		"$push": bson.M{"tokens": models.SessionToken{Token: token}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return nil, "", fmt.Errorf("appending token: %w", err)
	}
	user.Tokens = append(user.Tokens, models.SessionToken{Token: token})

	return user, token, nil
}

// Logout removes exactly the presented token from the active set.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID, token string) error {
	_, err := s.users.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// LogoutAll clears every session token, invalidating all sessions.
func (s *UserService) LogoutAll(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.users.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"tokens":     []models.SessionToken{},
			"updated_at": time.Now().UTC(),
		},
	})
	return err
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, cur.Err()
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDAndToken resolves the user only when raw is one of their active
// session tokens. Used by the auth guard on every protected request.
func (s *UserService) GetByIDAndToken(ctx context.Context, id primitive.ObjectID, raw string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id, "tokens.token": raw}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies an allow-listed partial update to user, mutating the
// passed struct to the new state on success.
func (s *UserService) Update(ctx context.Context, user *models.User, upd UserUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
		set["name"] = user.Name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email != user.Email {
			existing, err := s.getByEmail(ctx, email)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrEmailTaken
			}
		}
		user.Email = email
		set["email"] = email
	}
	if upd.Password != nil {
		hash, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user.Password = hash
		set["password"] = hash
	}
	if upd.Age != nil {
		user.Age = *upd.Age
		set["age"] = user.Age
	}

	_, err := s.users.UpdateByID(ctx, user.ID, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

// Delete removes the user and cascades deletion of every task they own.
// Orphaned tasks would be unreachable anyway since all task reads are
// owner-scoped.
func (s *UserService) Delete(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	if _, err := s.tasks.DeleteMany(ctx, bson.M{"owner": userID}); err != nil {
		return fmt.Errorf("cascading task deletion: %w", err)
	}
	return nil
}

// SetAvatar stores a normalized PNG on the user document.
func (s *UserService) SetAvatar(ctx context.Context, userID primitive.ObjectID, png []byte) error {
	_, err := s.users.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"avatar": png, "updated_at": time.Now().UTC()},
	})
	return err
}

func (s *UserService) ClearAvatar(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.users.UpdateByID(ctx, userID, bson.M{
		"$unset": bson.M{"avatar": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// GetAvatar returns the stored avatar bytes, or ErrNotFound when the user
// does not exist or has no avatar set.
func (s *UserService) GetAvatar(ctx context.Context, userID primitive.ObjectID) ([]byte, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, ErrNotFound
	}
	return user.Avatar, nil
}

func (s *UserService) getByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
