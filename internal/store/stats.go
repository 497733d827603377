package store

import "github.com/timbuchinger/context-cache/internal/ctxerrors"

// Stats returns aggregate counts across the store.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM files`, &st.FileCount},
		{`SELECT COUNT(*) FROM fragments`, &st.FragmentCount},
		{`SELECT COUNT(*) FROM conversations`, &st.ConversationCount},
		{`SELECT COUNT(*) FROM exchanges`, &st.ExchangeCount},
		{`SELECT COUNT(*) FROM fragments WHERE embedding IS NOT NULL`, &st.EmbeddedFragments},
		{`SELECT COUNT(*) FROM exchanges WHERE embedding IS NOT NULL`, &st.EmbeddedExchanges},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, ctxerrors.Schema("failed to compute stats", err)
		}
	}
	return &st, nil
}
