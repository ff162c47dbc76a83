package source

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/musare/musare-dl/internal/config"
	"github.com/musare/musare-dl/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names of the Musare database.
const (
	PlaylistsCollection = "playlists"
	SongsCollection     = "songs"
)

const connectTimeout = 10 * time.Second

type mongoSong struct {
	ID           bson.ObjectID `bson:"_id"`
	SongDocument `bson:",inline"`
}

type mongoPlaylist struct {
	DisplayName string `bson:"displayName"`
	Songs       []struct {
		ID bson.ObjectID `bson:"_id"`
	} `bson:"songs"`
}

// Mongo reads a playlist from the Musare database.
//
// The playlist document only references songs by ID; the song documents
// are streamed from the songs collection in the order the server returns
// them.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	name   string
	ids    []bson.ObjectID
}

// OpenMongo connects to the database and loads the song references of
// the playlist with the given hex ID.
func OpenMongo(ctx context.Context, settings config.MongoSettings, playlistID string) (*Mongo, error) {
	oid, err := bson.ObjectIDFromHex(playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidPlaylistID, err)
	}

	opts := options.Client().
		ApplyURI(settings.URI).
		SetServerSelectionTimeout(connectTimeout)
	if settings.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   settings.Username,
			Password:   settings.Password,
			AuthSource: settings.AuthSource,
		})
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(settings.Database)}
	if err := m.loadPlaylist(ctx, oid); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return m, nil
}

func (m *Mongo) loadPlaylist(ctx context.Context, oid bson.ObjectID) error {
	var playlist mongoPlaylist
	err := m.db.Collection(PlaylistsCollection).
		FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"songs._id": 1, "displayName": 1})).
		Decode(&playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, oid.Hex())
	}
	if err != nil {
		return fmt.Errorf("load playlist %s: %w", oid.Hex(), err)
	}

	m.name = playlist.DisplayName
	if m.name == "" {
		m.name = oid.Hex()
	}
	m.ids = make([]bson.ObjectID, 0, len(playlist.Songs))
	for _, s := range playlist.Songs {
		m.ids = append(m.ids, s.ID)
	}
	return nil
}

func (m *Mongo) songsFilter() bson.M {
	return bson.M{"_id": bson.M{"$in": m.ids}}
}

// Name implements Source.
func (m *Mongo) Name() string {
	return m.name
}

// Count implements Source.
func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.db.Collection(SongsCollection).CountDocuments(ctx, m.songsFilter())
	if err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return int(n), nil
}

// Songs implements Source. A song document that cannot be decoded is
// yielded as a *SongError and iteration continues.
func (m *Mongo) Songs(ctx context.Context) iter.Seq2[model.Song, error] {
	return func(yield func(model.Song, error) bool) {
		cursor, err := m.db.Collection(SongsCollection).Find(ctx, m.songsFilter())
		if err != nil {
			yield(model.Song{}, fmt.Errorf("find songs: %w", err))
			return
		}
		defer cursor.Close(context.WithoutCancel(ctx))
		streamSongs(ctx, cursor, yield)
	}
}

func streamSongs(ctx context.Context, cursor *mongo.Cursor, yield func(model.Song, error) bool) {
	for cursor.Next(ctx) {
		if !yield(decodeSong(cursor.Current)) {
			return
		}
	}
	if err := cursor.Err(); err != nil {
		yield(model.Song{}, fmt.Errorf("iterate songs: %w", err))
	}
}

// decodeSong converts one song document. On failure the returned song
// carries only the document ID, when it has one.
func decodeSong(raw bson.Raw) (model.Song, error) {
	var doc mongoSong
	if err := bson.Unmarshal(raw, &doc); err != nil {
		var id string
		if oid, ok := raw.Lookup("_id").ObjectIDOK(); ok {
			id = oid.Hex()
		}
		return model.Song{ID: id}, &SongError{SongID: id, Err: fmt.Errorf("decode song: %w", err)}
	}
	return doc.toSong(doc.ID.Hex()), nil
}

// Close implements Source.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
