package server

import (
	"errors"
	"sync"
	"testing"
)

func TestStoreCreateUserConflicts(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.CreateUser("ada@example.com", "ada", "hash"); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := store.CreateUser("ada@example.com", "other", "hash"); !errors.Is(err, errEmailTaken) {
		t.Fatalf("expected email conflict, got %v", err)
	}
	if _, err := store.CreateUser("other@example.com", "ada", "hash"); !errors.Is(err, errUsernameTaken) {
		t.Fatalf("expected username conflict, got %v", err)
	}
	// Email is checked first when both collide.
	if _, err := store.CreateUser("ada@example.com", "ada", "hash"); !errors.Is(err, errEmailTaken) {
		t.Fatalf("expected email conflict to win, got %v", err)
	}
}

func TestStoreToggleLikeFlips(t *testing.T) {
	store := NewStore(nil)
	user, _ := store.CreateUser("ada@example.com", "ada", "hash")
	post, _ := store.CreatePost(user.ID, "/uploads/a.png", "")

	liked, count, err := store.ToggleLike(user.ID, post.ID)
	if err != nil || !liked || count != 1 {
		t.Fatalf("expected (liked, 1), got (%v, %d, %v)", liked, count, err)
	}
	liked, count, err = store.ToggleLike(user.ID, post.ID)
	if err != nil || liked || count != 0 {
		t.Fatalf("expected (unliked, 0), got (%v, %d, %v)", liked, count, err)
	}

	if _, _, err := store.ToggleLike(user.ID, 999); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// However many toggles race, the pair can never hold more than one like row.
func TestStoreToggleLikeConcurrent(t *testing.T) {
	store := NewStore(nil)
	user, _ := store.CreateUser("ada@example.com", "ada", "hash")
	post, _ := store.CreatePost(user.ID, "/uploads/a.png", "")

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := store.ToggleLike(user.ID, post.ID); err != nil {
				t.Errorf("toggle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	posts, err := store.ListPosts()
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if likes := len(posts[0].Likes); likes > 1 {
		t.Fatalf("like invariant violated: %d rows for one (user, post) pair", likes)
	}
}

func TestStoreDeletePostCascades(t *testing.T) {
	store := NewStore(nil)
	ada, _ := store.CreateUser("ada@example.com", "ada", "hash")
	bob, _ := store.CreateUser("bob@example.com", "bob", "hash")
	post, _ := store.CreatePost(ada.ID, "/uploads/a.png", "")

	if _, _, err := store.ToggleLike(bob.ID, post.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := store.AddComment(bob.ID, post.ID, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := store.DeletePost(bob.ID, post.ID); !errors.Is(err, errForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err := store.DeletePost(ada.ID, post.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := store.DeletePost(ada.ID, post.ID); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	posts, _ := store.ListPosts()
	if len(posts) != 0 {
		t.Fatalf("expected empty feed, got %d posts", len(posts))
	}
	// No orphaned likes or comments remain queryable.
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.likes) != 0 || len(store.comments) != 0 {
		t.Fatalf("orphans left behind: %d likes, %d comments", len(store.likes), len(store.comments))
	}
}

func TestStoreDrawingOwnershipScoping(t *testing.T) {
	store := NewStore(nil)
	ada, _ := store.CreateUser("ada@example.com", "ada", "hash")
	bob, _ := store.CreateUser("bob@example.com", "bob", "hash")
	drawing, _ := store.CreateDrawing(ada.ID, "sketch", "/uploads/s.png")

	if _, err := store.RenameDrawing(bob.ID, drawing.ID, "mine now"); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for non-owner rename, got %v", err)
	}
	if err := store.DeleteDrawing(bob.ID, drawing.ID); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for non-owner delete, got %v", err)
	}

	mine, _ := store.DrawingsByUser(ada.ID)
	if len(mine) != 1 || mine[0].Name != "sketch" {
		t.Fatalf("owner's drawing damaged: %#v", mine)
	}
}
