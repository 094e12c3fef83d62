package keeper

import (
	"context"
	"net/url"
)

// Redirect is a navigation signal: go to To, remembering where the request
// was headed in From so the target can offer a way back.
type Redirect struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
}

// URL renders the redirect as To with a "from" query parameter.
func (r Redirect) URL() string {
	if r.From == "" {
		return r.To
	}
	u, err := url.Parse(r.To)
	if err != nil {
		return r.To + "?from=" + url.QueryEscape(r.From)
	}
	q := u.Query()
	q.Set("from", r.From)
	u.RawQuery = q.Encode()
	return u.String()
}

// Navigator receives navigation signals from sessions and guards. The host's
// routing layer implements it.
type Navigator interface {
	Navigate(ctx context.Context, r Redirect)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, r Redirect)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, r Redirect) { f(ctx, r) }

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, Redirect) {}
