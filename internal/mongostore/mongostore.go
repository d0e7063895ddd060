// Package mongostore is the MongoDB backend for newsd. It keeps users,
// sessions and per-user preference documents, and speaks the same method set
// as the SQLite store so the server can run on either.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/store"
)

const (
	usersColl    = "users"
	sessionsColl = "sessions"
	prefsColl    = "preferences"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) user() store.User {
	return store.User{ID: d.ID, Name: d.Name, Email: d.Email, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt}
}

type sessionDoc struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type bookmarkDoc struct {
	ID           string `bson:"id,omitempty"`
	Title        string `bson:"title"`
	Description  string `bson:"description"`
	ImageURL     string `bson:"image_url"`
	SourceName   string `bson:"source_name"`
	PublishedAt  string `bson:"published_at"`
	URL          string `bson:"url"`
	Content      string `bson:"content,omitempty"`
	Category     string `bson:"category"`
	BookmarkedAt string `bson:"bookmarked_at"`
}

type prefsDoc struct {
	Owner         string        `bson:"_id"`
	DarkMode      bool          `bson:"dark_mode"`
	Country       string        `bson:"country"`
	Categories    []string      `bson:"categories"`
	Bookmarks     []bookmarkDoc `bson:"bookmarks"`
	Notifications bool          `bson:"notifications"`
	Language      string        `bson:"language"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

// Store is a MongoDB-backed account and preference repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri, selects database and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}

	// Mongo expires sessions on its own once expires_at passes.
	_, err = s.db.Collection(sessionsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// CreateUser inserts a user. Returns store.ErrConflict on a taken email.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (store.User, error) {
	d := userDoc{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.db.Collection(usersColl).InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.User{}, store.ErrConflict
		}
		return store.User{}, fmt.Errorf("insert user: %w", err)
	}
	return d.user(), nil
}

// UserByEmail looks a user up by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (store.User, error) {
	return s.findUser(ctx, bson.M{"email": normalizeEmail(email)})
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id string) (store.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (store.User, error) {
	var d userDoc
	err := s.db.Collection(usersColl).FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("find user: %w", err)
	}
	return d.user(), nil
}

// UpdateProfile changes name and email.
func (s *Store) UpdateProfile(ctx context.Context, id, name, email string) error {
	res, err := s.db.Collection(usersColl).UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":  strings.TrimSpace(name),
		"email": normalizeEmail(email),
	}})
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.Collection(usersColl).UpdateByID(ctx, id, bson.M{"$set": bson.M{"password_hash": passwordHash}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateSession issues an opaque bearer token for userID.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	d := sessionDoc{Token: uuid.NewString(), UserID: userID, ExpiresAt: time.Now().UTC().Add(ttl)}
	if _, err := s.db.Collection(sessionsColl).InsertOne(ctx, d); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return d.Token, nil
}

// SessionUser resolves a token. The TTL monitor runs about once a minute, so
// expiry is also checked here.
func (s *Store) SessionUser(ctx context.Context, token string) (store.User, error) {
	var d sessionDoc
	err := s.db.Collection(sessionsColl).FindOne(ctx, bson.M{
		"_id":        token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("find session: %w", err)
	}
	return s.UserByID(ctx, d.UserID)
}

// DeleteSession revokes a token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.Collection(sessionsColl).DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadPreferences returns the preference document for owner.
func (s *Store) LoadPreferences(ctx context.Context, owner string) (model.Preferences, error) {
	var d prefsDoc
	err := s.db.Collection(prefsColl).FindOne(ctx, bson.M{"_id": owner}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Preferences{}, store.ErrNotFound
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("find preferences: %w", err)
	}
	return fromDoc(d), nil
}

// SavePreferences upserts the preference document for owner.
func (s *Store) SavePreferences(ctx context.Context, owner string, p model.Preferences) error {
	d := toDoc(owner, p)
	_, err := s.db.Collection(prefsColl).ReplaceOne(ctx, bson.M{"_id": owner}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

func toDoc(owner string, p model.Preferences) prefsDoc {
	d := prefsDoc{
		Owner:         owner,
		DarkMode:      p.DarkMode,
		Country:       p.Country,
		Categories:    p.Categories,
		Bookmarks:     make([]bookmarkDoc, 0, len(p.Bookmarks)),
		Notifications: p.Notifications,
		Language:      p.Language,
		UpdatedAt:     time.Now().UTC(),
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	for _, b := range p.Bookmarks {
		d.Bookmarks = append(d.Bookmarks, bookmarkDoc{
			ID: b.ID, Title: b.Title, Description: b.Description, ImageURL: b.ImageURL,
			SourceName: b.SourceName, PublishedAt: b.PublishedAt, URL: b.URL,
			Content: b.Content, Category: b.Category, BookmarkedAt: b.BookmarkedAt,
		})
	}
	return d
}

func fromDoc(d prefsDoc) model.Preferences {
	p := model.Preferences{
		DarkMode:      d.DarkMode,
		Country:       d.Country,
		Categories:    d.Categories,
		Bookmarks:     make([]model.Bookmark, 0, len(d.Bookmarks)),
		Notifications: d.Notifications,
		Language:      d.Language,
	}
	for _, b := range d.Bookmarks {
		p.Bookmarks = append(p.Bookmarks, model.Bookmark{
			Article: model.Article{
				ID: b.ID, Title: b.Title, Description: b.Description, ImageURL: b.ImageURL,
				SourceName: b.SourceName, PublishedAt: b.PublishedAt, URL: b.URL,
				Content: b.Content, Category: b.Category,
			},
			BookmarkedAt: b.BookmarkedAt,
		})
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
