package server

import (
	"fmt"
	"net/http"
	"testing"
)

func TestDrawingLifecycle(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	signupUser(t, client, ts, "ada@example.com", "ada")

	resp := doRequest(t, client, ts, http.MethodPost, "/upload-drawing", map[string]string{
		"name":      "first sketch",
		"image_url": "/uploads/sketch.png",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	drawingID := uint(body["id"].(float64))

	resp = doRequest(t, client, ts, http.MethodPost, "/rename-drawing", map[string]any{
		"id":   drawingID,
		"name": "self portrait",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["name"] != "self portrait" {
		t.Fatalf("expected renamed drawing, got %#v", body)
	}

	resp = doRequest(t, client, ts, http.MethodGet, "/my-drawings", nil)
	list := decodeBodyList(t, resp)
	if len(list) != 1 || list[0]["name"] != "self portrait" {
		t.Fatalf("unexpected drawing list: %#v", list)
	}

	resp = doRequest(t, client, ts, http.MethodDelete, fmt.Sprintf("/delete-drawing/%d", drawingID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, client, ts, http.MethodGet, "/my-drawings", nil)
	if list := decodeBodyList(t, resp); len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %#v", list)
	}
}

func TestDrawingValidation(t *testing.T) {
	ts := newTestServer(t)
	client := newTestClient(t)
	signupUser(t, client, ts, "ada@example.com", "ada")

	resp := doRequest(t, client, ts, http.MethodPost, "/upload-drawing", map[string]string{
		"name":      "   ",
		"image_url": "/uploads/sketch.png",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for blank name, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, client, ts, http.MethodPost, "/upload-drawing", map[string]string{
		"name":      "sketch",
		"image_url": "",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for missing image_url, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = doRequest(t, client, ts, http.MethodPost, "/rename-drawing", map[string]any{
		"id":   999,
		"name": "whatever",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d for unknown drawing, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

// Another user's drawing must read as not found, never as forbidden, so the
// response does not reveal whether the id exists.
func TestDrawingOwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	owner := newTestClient(t)
	signupUser(t, owner, ts, "ada@example.com", "ada")
	intruder := newTestClient(t)
	signupUser(t, intruder, ts, "bob@example.com", "bob")

	resp := doRequest(t, owner, ts, http.MethodPost, "/upload-drawing", map[string]string{
		"name":      "private sketch",
		"image_url": "/uploads/private.png",
	})
	drawingID := uint(decodeBody(t, resp)["id"].(float64))

	resp = doRequest(t, intruder, ts, http.MethodPost, "/rename-drawing", map[string]any{
		"id":   drawingID,
		"name": "stolen",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp = doRequest(t, intruder, ts, http.MethodDelete, fmt.Sprintf("/delete-drawing/%d", drawingID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp = doRequest(t, intruder, ts, http.MethodGet, "/my-drawings", nil)
	if list := decodeBodyList(t, resp); len(list) != 0 {
		t.Fatalf("expected intruder to see no drawings, got %#v", list)
	}

	// Owner still has the drawing, untouched.
	resp = doRequest(t, owner, ts, http.MethodGet, "/my-drawings", nil)
	list := decodeBodyList(t, resp)
	if len(list) != 1 || list[0]["name"] != "private sketch" {
		t.Fatalf("expected owner's drawing intact, got %#v", list)
	}
}
