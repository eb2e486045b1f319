package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/atinyakov/GophTasks/internal/backend"
	"github.com/atinyakov/GophTasks/internal/client/storage"
	"github.com/atinyakov/GophTasks/internal/config"
	"github.com/atinyakov/GophTasks/internal/repository"
	"github.com/atinyakov/GophTasks/internal/service"
	"go.uber.org/zap"
)

func TestNewSessionStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []struct {
		name    string
		options config.Options
		check   func(t *testing.T, got any)
	}{
		{
			name:    "memory",
			options: config.Options{Store: config.StoreMemory},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*storage.MemoryStore); !ok {
					t.Errorf("got %T, want *storage.MemoryStore", got)
				}
			},
		},
		{
			name:    "file",
			options: config.Options{Store: config.StoreFile, StorePath: filepath.Join(t.TempDir(), "s.json")},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*storage.FileStore); !ok {
					t.Errorf("got %T, want *storage.FileStore", got)
				}
			},
		},
		{
			name:    "redis",
			options: config.Options{Store: config.StoreRedis, RedisAddr: mr.Addr()},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*storage.RedisStore); !ok {
					t.Errorf("got %T, want *storage.RedisStore", got)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, closeStore, err := newSessionStore(ctx, &tc.options, zap.NewNop())
			if err != nil {
				t.Fatalf("newSessionStore: %v", err)
			}
			defer closeStore()
			tc.check(t, store)

			if err := store.Set(ctx, "auth_token", "tok"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := store.Get(ctx, "auth_token")
			if err != nil || !ok || v != "tok" {
				t.Errorf("Get = %q, %v, %v; want tok, true, nil", v, ok, err)
			}
		})
	}

	if got := mr.Keys(); len(got) != 1 || got[0] != sessionKeyPrefix+"auth_token" {
		t.Errorf("redis keys = %v", got)
	}
}

func TestNewSessionStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := newSessionStore(context.Background(), &config.Options{Store: config.StoreRedis, RedisAddr: addr}, nil)
	if err == nil {
		t.Fatal("expected an error for an unreachable redis")
	}
}

func TestNewSessionStore_CorruptFileStartsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"auth_token":"tok","auth_user":`), 0o600); err != nil {
		t.Fatal(err)
	}

	store, closeStore, err := newSessionStore(context.Background(), &config.Options{Store: config.StoreFile, StorePath: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("corrupt session file must not stop start-up: %v", err)
	}
	defer closeStore()

	session := service.NewSessionManager(nil, store, nil, nil)
	session.InitAuth(context.Background())
	if session.IsAuthenticated() {
		t.Error("expected to start logged out")
	}
}

func TestNewTaskRepository_Memory(t *testing.T) {
	seed, err := backend.LoadSeed("", "")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	repo, closeRepo, err := newTaskRepository(context.Background(), &config.Options{}, seed, zap.NewNop())
	if err != nil {
		t.Fatalf("newTaskRepository: %v", err)
	}
	defer closeRepo()

	if _, ok := repo.(*repository.MemoryTaskRepository); !ok {
		t.Fatalf("got %T, want *repository.MemoryTaskRepository", repo)
	}
	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != len(seed.Tasks) {
		t.Errorf("got %d tasks, want %d", len(tasks), len(seed.Tasks))
	}
}
