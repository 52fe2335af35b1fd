package settings

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubRepo struct {
	values map[string]string
	err    error
	calls  int
}

func (s *stubRepo) Get(_ context.Context, key string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

type stubCache struct {
	store   map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.store[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.store == nil {
		s.store = map[string]string{}
	}
	s.store[key] = value.(string)
	s.setKeys = append(s.setKeys, key)
	return nil
}

func (s *stubCache) SettingKey(name string) string { return "sd:settings:" + name }

func TestCommissionRate_ReadsThroughCache(t *testing.T) {
	repo := &stubRepo{values: map[string]string{"commission_rate": "0.10"}}
	cache := &stubCache{}
	svc, err := NewService(repo, cache, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	rate, err := svc.CommissionRate(context.Background())
	if err != nil {
		t.Fatalf("CommissionRate: %v", err)
	}
	if rate.String() != "0.1" {
		t.Fatalf("rate = %s, want 0.1", rate)
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls = %d, want 1", repo.calls)
	}

	// Second read hits the cache.
	if _, err := svc.CommissionRate(context.Background()); err != nil {
		t.Fatalf("cached CommissionRate: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls after cached read = %d, want 1", repo.calls)
	}
}

func TestCommissionRate_CacheFailureFallsBackToDB(t *testing.T) {
	repo := &stubRepo{values: map[string]string{"commission_rate": "0.15"}}
	cache := &stubCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc, err := NewService(repo, cache, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	rate, err := svc.CommissionRate(context.Background())
	if err != nil {
		t.Fatalf("CommissionRate: %v", err)
	}
	if rate.String() != "0.15" {
		t.Fatalf("rate = %s, want 0.15", rate)
	}
}

func TestCommissionRate_NilCacheReadsLive(t *testing.T) {
	repo := &stubRepo{values: map[string]string{"commission_rate": "0.2"}}
	svc, err := NewService(repo, nil, 0, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.CommissionRate(context.Background()); err != nil {
		t.Fatalf("CommissionRate: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls = %d, want 1", repo.calls)
	}
}

func TestCommissionRate_RejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"-0.1", "1", "1.5", "garbage"} {
		repo := &stubRepo{values: map[string]string{"commission_rate": raw}}
		svc, err := NewService(repo, nil, 0, nil)
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
		if _, err := svc.CommissionRate(context.Background()); err == nil {
			t.Fatalf("CommissionRate(%q) succeeded, want error", raw)
		}
	}
}
