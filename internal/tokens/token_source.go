package tokens

import (
	"context"

	"golang.org/x/oauth2"
)

// storeTokenSource adapts Store.GetAccessToken to oauth2.TokenSource.
type storeTokenSource struct {
	ctx        context.Context
	store      *Store
	clientName string
}

// TokenSource returns an oauth2.TokenSource for the client. Tokens are
// reused until they expire and then obtained through GetAccessToken, which
// refreshes and persists them.
func (s *Store) TokenSource(ctx context.Context, clientName string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &storeTokenSource{
		ctx:        ctx,
		store:      s,
		clientName: clientName,
	})
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	if _, err := ts.store.GetAccessToken(ts.ctx, ts.clientName); err != nil {
		return nil, err
	}
	rec, err := ts.store.Read(ts.ctx, ts.clientName)
	if err != nil {
		return nil, err
	}
	return rec.ToOAuth2Token(), nil
}
