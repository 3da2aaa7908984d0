package catalog

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/evsynth/pkg/errors"
)

const (
	defaultMongoDatabase = "evsynth"
	mongoCollection      = "runs"
	mongoConnectTimeout  = 10 * time.Second
)

// MongoStore is a [Store] in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// mongoRun is the stored document. Options are kept as a JSON string so the
// document stays readable in the shell.
type mongoRun struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	Policy    string    `bson:"policy"`
	Seed      int64     `bson:"seed"`
	Width     int       `bson:"width"`
	Height    int       `bson:"height"`
	Options   string    `bson:"options,omitempty"`
	Points    int       `bson:"points"`
	Disks     int       `bson:"disks"`
	Skipped   int       `bson:"skipped"`
	Artifacts []string  `bson:"artifacts,omitempty"`
}

func toMongo(r Run) mongoRun {
	return mongoRun{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		Policy:    r.Policy,
		Seed:      int64(r.Seed),
		Width:     r.Width,
		Height:    r.Height,
		Options:   string(r.Options),
		Points:    r.Points,
		Disks:     r.Disks,
		Skipped:   r.Skipped,
		Artifacts: r.Artifacts,
	}
}

func (d mongoRun) run() Run {
	r := Run{
		ID:        d.ID,
		CreatedAt: d.CreatedAt.UTC(),
		Policy:    d.Policy,
		Seed:      uint64(d.Seed),
		Width:     d.Width,
		Height:    d.Height,
		Points:    d.Points,
		Disks:     d.Disks,
		Skipped:   d.Skipped,
		Artifacts: d.Artifacts,
	}
	if d.Options != "" {
		r.Options = []byte(d.Options)
	}
	return r
}

// mongoDatabase returns the database named in the URI path, or "evsynth".
func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(mongoConnectTimeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	runs := client.Database(mongoDatabase(uri)).Collection(mongoCollection)
	_, err = runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create index")
	}
	return &MongoStore{client: client, runs: runs}, nil
}

// Record upserts run by ID.
func (s *MongoStore) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "run has no id")
	}
	_, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, toMongo(run), options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "record run %s", run.ID)
	}
	return nil
}

// Get looks up one run.
func (s *MongoStore) Get(ctx context.Context, id string) (Run, error) {
	var doc mongoRun
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Run{}, notFound(id)
	}
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "get run %s", id)
	}
	return doc.run(), nil
}

// List returns up to limit runs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limitOrDefault(limit)))
	cur, err := s.runs.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	var docs []mongoRun
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}

	out := make([]Run, len(docs))
	for i, d := range docs {
		out[i] = d.run()
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
