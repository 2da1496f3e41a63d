package db

import (
	"time"

	"github.com/looplj/datavault/internal/objects"
)

// RegisterToken binds token to identity, replacing the identity's previous token.
func (s *State) RegisterToken(identity objects.Identity, token string, lifetime time.Duration) objects.AnalyticsToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tokens[identity]; ok {
		delete(s.tokenIndex, prev.Token)
	}

	if owner, ok := s.tokenIndex[token]; ok {
		delete(s.tokens, owner)
	}

	now := s.clock.Now()
	t := objects.AnalyticsToken{
		Token:    token,
		Identity: identity,
		Lifetime: lifetime,
		IssuedAt: now,
		ExpireAt: now.Add(lifetime),
	}

	s.tokens[identity] = t
	s.tokenIndex[token] = identity

	return t
}

func (s *State) LookupToken(token string) (objects.AnalyticsToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.tokenIndex[token]
	if !ok {
		return objects.AnalyticsToken{}, false
	}

	return s.tokens[identity], true
}

func (s *State) TokenOf(identity objects.Identity) (objects.AnalyticsToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[identity]

	return t, ok
}

// RemoveExpiredTokens drops tokens expired at now and returns them.
func (s *State) RemoveExpiredTokens(now time.Time) []objects.AnalyticsToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []objects.AnalyticsToken

	for identity, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, identity)
			delete(s.tokenIndex, t.Token)
			removed = append(removed, t)
		}
	}

	return removed
}
