package convindex

import (
	"context"
	"fmt"

	"github.com/timbuchinger/context-cache/internal/embed"
	"github.com/timbuchinger/context-cache/internal/hashutil"
	"github.com/timbuchinger/context-cache/internal/store"
)

// Summary reports the outcome of a reconciliation run, symmetric to
// noteindex.Summary.
type Summary struct {
	Processed    int
	Added        int
	Updated      int
	Skipped      int
	Deleted      int
	NewExchanges int
	Errors       []string
}

// Indexer reconciles a Store against whatever artifacts src currently
// reports for its provider tag.
type Indexer struct {
	st       *store.Store
	embedder embed.Embedder
}

// New returns an Indexer writing to st, embedding per-exchange text with
// embedder (nil disables embedding).
func New(st *store.Store, embedder embed.Embedder) *Indexer {
	return &Indexer{st: st, embedder: embedder}
}

// Reconcile brings the Store's Conversations tagged src.SourceTag() in line
// with src.CurrentArtifacts().
func (idx *Indexer) Reconcile(ctx context.Context, src Source) (*Summary, error) {
	sum := &Summary{}

	artifacts, err := src.CurrentArtifacts()
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		current[a] = true
	}

	existing, err := idx.st.ListConversationsBySourceTag(src.SourceTag())
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if current[c.ArchivePath] {
			continue
		}
		if err := idx.st.DeleteConversation(c.ID); err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", c.ID, err))
			continue
		}
		sum.Deleted++
	}

	for _, artifact := range artifacts {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		sum.Processed++
		if err := idx.processArtifact(ctx, src, artifact, sum); err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", artifact, err))
		}
	}

	return sum, nil
}

func (idx *Indexer) processArtifact(ctx context.Context, src Source, artifact string, sum *Summary) error {
	parsed, err := src.Parse(artifact)
	if err != nil {
		return err
	}

	hashSources := make([]hashutil.ExchangeSource, len(parsed.Exchanges))
	for i, e := range parsed.Exchanges {
		hashSources[i] = hashutil.ExchangeSource{Position: e.Position, UserText: e.UserText, AssistantText: e.AssistantText}
	}
	fingerprint := hashutil.HashConversation(parsed.ID, parsed.SessionID, src.SourceTag(), hashSources)

	existing, err := idx.st.GetConversationByID(parsed.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Fingerprint == fingerprint {
		sum.Skipped++
		return nil
	}

	// Per-exchange embeddings are computed before the transaction opens:
	// the embedder call may be slow, and a SQLite writer transaction should
	// stay short-lived.
	vectors := make([][]float32, len(parsed.Exchanges))
	if idx.embedder != nil {
		for i, e := range parsed.Exchanges {
			vec, err := idx.embedder.Embed(ctx, exchangeEmbedText(e))
			if err != nil {
				return err
			}
			vectors[i] = vec
		}
	}

	err = idx.st.WithTx(func(tx *store.Tx) error {
		if err := tx.DeleteExchangesByConversation(parsed.ID); err != nil {
			return err
		}
		if err := tx.UpsertConversation(&store.Conversation{
			ID:            parsed.ID,
			SourceTag:     src.SourceTag(),
			IngestedAt:    parsed.Timestamp,
			ArchivePath:   artifact,
			ExchangeCount: len(parsed.Exchanges),
			Fingerprint:   fingerprint,
			ClientVersion: parsed.ClientVersion,
			WorkingDir:    parsed.WorkingDir,
		}); err != nil {
			return err
		}
		for i, e := range parsed.Exchanges {
			if err := tx.InsertExchange(&store.Exchange{
				ID:             store.ExchangeID(parsed.ID, e.Position),
				ConversationID: parsed.ID,
				Position:       e.Position,
				Timestamp:      e.Timestamp,
				UserText:       e.UserText,
				AssistantText:  e.AssistantText,
				ToolCalls:      e.ToolCalls,
				ParentTurnID:   e.ParentTurnID,
				Embedding:      vectors[i],
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sum.NewExchanges += len(parsed.Exchanges)
	if existing == nil {
		sum.Added++
	} else {
		sum.Updated++
	}
	return nil
}

func exchangeEmbedText(e ParsedExchange) string {
	text := "User: " + e.UserText + "\n\nAssistant: " + e.AssistantText
	if len(e.ToolCalls) > 0 {
		tools := ""
		for i, t := range e.ToolCalls {
			if i > 0 {
				tools += ", "
			}
			tools += t
		}
		text += "\n\nTools used: " + tools
	}
	return text
}
