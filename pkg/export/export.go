// Package export writes normalized collections to an external store.
//
// [Export] turns each enabled kind of a snapshot into [Document] values and
// hands them to a [Sink], one collection per kind. [MongoSink] upserts them
// into MongoDB keyed by ATT&CK id, so repeated exports of the same version
// are idempotent.
package export

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
)

// Document is the stored form of an entity.
type Document struct {
	ID          string             `bson:"_id" json:"id"`
	Kind        string             `bson:"kind" json:"kind"`
	Name        string             `bson:"name" json:"name"`
	URL         string             `bson:"url" json:"url"`
	Description attack.Description `bson:"description" json:"description"`
	Retired     bool               `bson:"retired" json:"retired"`
	Parent      string             `bson:"parent,omitempty" json:"parent,omitempty"`
	Tactics     []string           `bson:"tactics,omitempty" json:"tactics,omitempty"`
	Aliases     []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`
	Version     string             `bson:"version" json:"version"`
	Snapshot    string             `bson:"snapshot" json:"snapshot"`
	Modified    time.Time          `bson:"modified" json:"modified"`
}

// Sink stores documents.
type Sink interface {
	// Upsert writes docs into collection and returns how many were
	// inserted or changed.
	Upsert(ctx context.Context, collection string, docs []Document) (int64, error)
	Close(ctx context.Context) error
}

// Documents converts the collection of kind k. Entities without a canonical
// id are skipped since they have no stable key.
func Documents(snap *attack.Snapshot, k attack.Kind) []Document {
	var docs []Document
	for _, it := range snap.Items(k) {
		b := it.Base()
		if !b.Resolved() {
			continue
		}
		d := Document{
			ID:          b.ID,
			Kind:        k.String(),
			Name:        b.Name,
			URL:         b.URL,
			Description: b.Description,
			Retired:     it.Retired(),
			Version:     snap.Version,
			Snapshot:    snap.ID.String(),
			Modified:    b.Modified,
		}
		switch v := it.(type) {
		case *attack.Technique:
			d.Parent = v.ParentID()
			d.Tactics = v.Tactics
		case *attack.Group:
			d.Aliases = v.Aliases
		case *attack.Software:
			d.Aliases = v.Aliases
		}
		docs = append(docs, d)
	}
	return docs
}

// Result counts exported documents per collection.
type Result map[string]int64

// Export writes every kind in kinds (all kinds when empty) to sink. The
// collections are written concurrently; the first failure cancels the rest.
func Export(ctx context.Context, sink Sink, snap *attack.Snapshot, kinds []attack.Kind, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	if len(kinds) == 0 {
		kinds = attack.Kinds
	}

	var mu sync.Mutex
	res := make(Result, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range kinds {
		docs := Documents(snap, k)
		if len(docs) == 0 {
			continue
		}
		g.Go(func() error {
			n, err := sink.Upsert(gctx, k.Plural(), docs)
			if err != nil {
				return err
			}
			mu.Lock()
			res[k.Plural()] = n
			mu.Unlock()
			logger.Info("exported collection", "collection", k.Plural(), "documents", len(docs), "changed", n)
			return nil
		})
	}
	err := g.Wait()
	return res, err
}
