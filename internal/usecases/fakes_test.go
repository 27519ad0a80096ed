package usecases

import (
	"context"
	"sync"
	"time"

	"qb_bulkdelete/internal/entities"
)

// fakeCreditStore mirrors the conditional-decrement semantics of the
// Postgres repository with a mutex.
type fakeCreditStore struct {
	mu       sync.Mutex
	balances map[string]int
	refunds  int
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{balances: map[string]int{}}
}

func (f *fakeCreditStore) Get(_ context.Context, userID string) (*entities.DeleteCredits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.balances[userID]; !ok {
		f.balances[userID] = entities.DefaultCredits
	}
	return &entities.DeleteCredits{UserID: userID, Credits: f.balances[userID], LastReset: time.Now()}, nil
}

func (f *fakeCreditStore) TryDebit(_ context.Context, userID string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.balances[userID]; !ok {
		f.balances[userID] = entities.DefaultCredits
	}
	if f.balances[userID] < amount {
		return false, nil
	}
	f.balances[userID] -= amount
	return true, nil
}

func (f *fakeCreditStore) Refund(_ context.Context, userID string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += amount
	f.refunds++
	return nil
}

func (f *fakeCreditStore) set(userID string, credits int) {
	f.mu.Lock()
	f.balances[userID] = credits
	f.mu.Unlock()
}

func (f *fakeCreditStore) credits(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

type fakeSubscriptionStore struct {
	mu   sync.Mutex
	subs map[string]*entities.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: map[string]*entities.Subscription{}}
}

func (f *fakeSubscriptionStore) GetActive(_ context.Context, userID string) (*entities.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := f.subs[userID]
	if sub == nil || sub.Status != "active" {
		return nil, nil
	}
	return sub, nil
}

func (f *fakeSubscriptionStore) Upsert(_ context.Context, sub *entities.Subscription) error {
	f.mu.Lock()
	f.subs[sub.UserID] = sub
	f.mu.Unlock()
	return nil
}

// fakeSessionStore is an in-memory SessionStore for gateway tests.
type fakeSessionStore struct {
	mu    sync.Mutex
	creds map[string]*entities.Credential
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{creds: map[string]*entities.Credential{}}
}

func (f *fakeSessionStore) Get(id string) *entities.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds[id]
}

func (f *fakeSessionStore) Replace(id string, cred *entities.Credential) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creds[id]; ok {
		f.creds[id] = cred
	}
}

func (f *fakeSessionStore) Destroy(id string) {
	f.mu.Lock()
	delete(f.creds, id)
	f.mu.Unlock()
}

// fakeDispatcher replays scripted responses or errors, recording every
// wire request it saw.
type fakeDispatcher struct {
	mu        sync.Mutex
	responses []*entities.WireResponse
	errs      []error
	requests  []*entities.WireRequest
}

func (f *fakeDispatcher) Do(_ context.Context, req *entities.WireRequest) (*entities.WireResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.responses) == 0 {
		return &entities.WireResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}
