package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/jedilnik/internal/db"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := generatePassword(16)
	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("expected 16 characters, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Error("expected distinct passwords")
	}
}

func TestInitDatabaseCreatesMaster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jedilnik.sqlite3")

	database, password, err := initDatabase(path, "Boss")
	if err != nil {
		t.Fatalf("initDatabase: %v", err)
	}
	defer database.Close()

	user, err := store.GetUserByUsername(context.Background(), database, "Boss")
	if err != nil || user == nil {
		t.Fatalf("expected master user, got %v, %v", user, err)
	}
	if user.Role != model.RoleMaster {
		t.Errorf("expected role master, got %q", user.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		t.Error("printed password does not match stored hash")
	}
}

func TestPurgeImagesStopsOnCancel(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	r, _ := store.CreateRestaurant(ctx, database, model.Restaurant{Name: "Cafe"})
	img, _ := store.CreateImage(ctx, database, r.ID, []byte("x"), "image/jpeg")

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		purgeImages(ctx, database, -time.Hour)
		close(done)
	}()

	// The first pass runs immediately.
	deadline := time.After(5 * time.Second)
	for {
		got, _ := store.GetImage(context.Background(), database, img.ID)
		if got == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("image was not purged")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("purgeImages did not return after cancel")
	}
}

func TestShutdownEndsOpenStreams(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		http.NewResponseController(w).Flush()
		close(started)
		<-r.Context().Done()
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	server := newServer(ctx, ln.Addr().String(), handler)
	served := make(chan error, 1)
	go func() { served <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	go io.Copy(io.Discard, resp.Body)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not start")
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown blocked by open stream: %v", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("expected ErrServerClosed, got %v", err)
	}
}
