package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// collection is the subset of *mongo.Collection the mirror uses.
type collection interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

var _ collection = (*mongo.Collection)(nil)

// MongoMirror keeps a MongoDB collection in step with the published
// snapshot: one document per entry keyed by the entry ID, with the detail
// fields embedded when the entry was enriched.
type MongoMirror struct {
	client *mongo.Client
	coll   collection
	name   string
	now    func() time.Time
}

// NewMongoMirror connects to cfg.URI and verifies the connection.
func NewMongoMirror(ctx context.Context, cfg config.MongoConfig) (*MongoMirror, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "ping mongodb")
	}
	m := newMongoMirror(client.Database(cfg.Database).Collection(cfg.Collection), cfg.Database+"."+cfg.Collection)
	m.client = client
	return m, nil
}

func newMongoMirror(coll collection, name string) *MongoMirror {
	return &MongoMirror{coll: coll, name: name, now: time.Now}
}

// Name implements [Mirror].
func (m *MongoMirror) Name() string { return "mongodb://" + m.name }

type mongoDetail struct {
	AuthorURL          string  `bson:"authorUrl"`
	License            *string `bson:"license"`
	Readme             string  `bson:"readme"`
	InstallCommand     string  `bson:"installCommand"`
	DefaultBranch      string  `bson:"defaultBranch"`
	HasMarketplaceJSON bool    `bson:"hasMarketplaceJson"`
	SkillPath          string  `bson:"skillPath"`
}

type mongoEntry struct {
	ID           string             `bson:"_id"`
	Slug         string             `bson:"slug"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Author       string             `bson:"author"`
	AuthorAvatar string             `bson:"authorAvatar"`
	RepoURL      string             `bson:"repoUrl"`
	RepoFullName string             `bson:"repoFullName"`
	Path         string             `bson:"path,omitempty"`
	Stars        int                `bson:"stars"`
	Forks        int                `bson:"forks"`
	Category     catalog.Category   `bson:"category"`
	Categories   []catalog.Category `bson:"categories"`
	Tags         []string           `bson:"tags"`
	Tier         int                `bson:"tier"`
	Status       catalog.Status     `bson:"status"`
	Source       catalog.Source     `bson:"source"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	LastCommitAt time.Time          `bson:"lastCommitAt"`
	CollectedAt  time.Time          `bson:"collectedAt"`
	PublishedAt  time.Time          `bson:"publishedAt"`
	Detail       *mongoDetail       `bson:"detail,omitempty"`
}

func toMongo(e catalog.Entry, d *catalog.Detail, published time.Time) mongoEntry {
	doc := mongoEntry{
		ID:           e.ID,
		Slug:         e.Slug,
		Name:         e.Name,
		Description:  e.Description,
		Author:       e.Author,
		AuthorAvatar: e.AuthorAvatar,
		RepoURL:      e.RepoURL,
		RepoFullName: e.RepoFullName,
		Path:         e.Path,
		Stars:        e.Stars,
		Forks:        e.Forks,
		Category:     e.Category,
		Categories:   e.Categories,
		Tags:         e.Tags,
		Tier:         int(e.Tier),
		Status:       e.Status,
		Source:       e.Source,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		LastCommitAt: e.LastCommitAt,
		CollectedAt:  e.CollectedAt,
		PublishedAt:  published,
	}
	if d != nil {
		doc.Detail = &mongoDetail{
			AuthorURL:          d.AuthorURL,
			License:            d.License,
			Readme:             d.Readme,
			InstallCommand:     d.InstallCommand,
			DefaultBranch:      d.DefaultBranch,
			HasMarketplaceJSON: d.HasMarketplaceJSON,
			SkillPath:          d.SkillPath,
		}
	}
	return doc
}

// Publish implements [Mirror]. Every entry is upserted, then documents
// whose ID is not in the snapshot are deleted.
func (m *MongoMirror) Publish(ctx context.Context, snap *catalog.Snapshot, details []*catalog.Detail) error {
	bySlug := make(map[string]*catalog.Detail, len(details))
	for _, d := range details {
		bySlug[d.Slug] = d
	}

	published := m.now().UTC()
	ids := make([]string, 0, len(snap.Skills))
	models := make([]mongo.WriteModel, 0, len(snap.Skills))
	for _, e := range snap.Skills {
		ids = append(ids, e.ID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: e.ID}}).
			SetReplacement(toMongo(e, bySlug[e.Slug], published)).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := m.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return errs.Wrap(errs.ErrCodeNetwork, err, "upsert %d entries", len(models))
		}
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}
	if _, err := m.coll.DeleteMany(ctx, filter); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "delete stale entries")
	}
	return nil
}

// Close implements [Mirror].
func (m *MongoMirror) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
