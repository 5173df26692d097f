package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/solardesk/solar-crm-backend/internal/users"
)

// UserStore implements users.Store on the embedded redis. A secondary
// firebase-uid -> id mapping mirrors the unique index the Postgres schema
// has on firebase_uid.
type UserStore struct {
	mu     sync.Mutex
	kv     *kv
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{kv: newKV(client, "user"), client: client}
}

func uidKey(fuid string) string { return "demo:user:fuid:" + fuid }

func (s *UserStore) EnsureUser(ctx context.Context, u users.UpsertUser) (*users.User, error) {
	if u.FirebaseUID == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	id, err := s.client.Get(ctx, uidKey(u.FirebaseUID)).Result()
	if err == nil {
		existing, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if u.Email != "" {
			existing.Email = u.Email
		}
		if u.DisplayName != "" {
			existing.DisplayName = u.DisplayName
		}
		existing.UpdatedAt = now
		if putErr := s.kv.put(ctx, existing.ID, existing); putErr != nil {
			return nil, putErr
		}
		return existing, nil
	}
	if err != redis.Nil {
		return nil, err
	}

	created := users.User{
		ID:             uuid.New().String(),
		FirebaseUID:    u.FirebaseUID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           "customer",
		ApprovalStatus: users.ApprovalPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.kv.put(ctx, created.ID, created); err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, uidKey(u.FirebaseUID), created.ID, 0).Err(); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*users.User, error) {
	var u users.User
	found, err := s.kv.get(ctx, id, &u)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, approvalStatus string) ([]users.User, error) {
	out := []users.User{}
	err := s.kv.each(ctx, func(data []byte) error {
		var u users.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		if approvalStatus == "" || u.ApprovalStatus == approvalStatus {
			out = append(out, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) SetApproval(ctx context.Context, id, status string) (*users.User, error) {
	return s.patch(ctx, id, func(u *users.User) { u.ApprovalStatus = status })
}

func (s *UserStore) SetRole(ctx context.Context, id, role string) (*users.User, error) {
	return s.patch(ctx, id, func(u *users.User) { u.Role = role })
}

func (s *UserStore) patch(ctx context.Context, id string, fn func(*users.User)) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, u.ID, u); err != nil {
		return nil, err
	}
	return u, nil
}
