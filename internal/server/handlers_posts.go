package server

import (
	"log"
	"net/http"
	"sort"

	"art-trainer/internal/db"
)

const (
	sortNewest    = "newest"
	sortMostLiked = "most_liked"
)

type createPostRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req createPostRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	imageURL, err := validateText("image_url", req.ImageURL, maxImageURLLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	caption := normalizeText(req.Caption)
	if len(caption) > maxCaptionLength {
		writeError(w, http.StatusBadRequest, "caption is too long")
		return
	}
	post, err := s.store.CreatePost(user.ID, imageURL, caption)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("post created post_id=%d user_id=%d", post.ID, user.ID)
	s.recordEvent("post_created", &user.ID, &post.ID, eventPayload{"image_url": post.ImageURL})
	writeJSON(w, http.StatusCreated, postView{
		ID:             post.ID,
		UserID:         post.UserID,
		AuthorUsername: user.Username,
		ImageURL:       post.ImageURL,
		Caption:        post.Caption,
		CreatedAt:      post.CreatedAt,
		LikesCount:     0,
		Comments:       []commentView{},
	})
}

// handleListPosts renders the whole feed with like counts and ordered
// comments. Aggregation is a full pass over the posts on every request.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = sortNewest
	}
	if sortBy != sortNewest && sortBy != sortMostLiked {
		writeError(w, http.StatusBadRequest, "sort_by must be newest or most_liked")
		return
	}
	posts, err := s.store.ListPosts()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	views, err := s.renderPosts(posts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	sortPostViews(views, sortBy)
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) renderPosts(posts []db.Post) ([]postView, error) {
	idSet := make(map[uint]struct{})
	for _, post := range posts {
		idSet[post.UserID] = struct{}{}
		for _, comment := range post.Comments {
			idSet[comment.UserID] = struct{}{}
		}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	usernames, err := s.store.UsernamesByID(ids)
	if err != nil {
		return nil, err
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		comments := make([]commentView, 0, len(post.Comments))
		for _, comment := range post.Comments {
			comments = append(comments, commentView{
				ID:             comment.ID,
				PostID:         comment.PostID,
				UserID:         comment.UserID,
				AuthorUsername: usernames[comment.UserID],
				Text:           comment.Text,
				CreatedAt:      comment.CreatedAt,
			})
		}
		sort.SliceStable(comments, func(i, j int) bool {
			if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
				return comments[i].ID < comments[j].ID
			}
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})
		views = append(views, postView{
			ID:             post.ID,
			UserID:         post.UserID,
			AuthorUsername: usernames[post.UserID],
			ImageURL:       post.ImageURL,
			Caption:        post.Caption,
			CreatedAt:      post.CreatedAt,
			LikesCount:     len(post.Likes),
			Comments:       comments,
		})
	}
	return views, nil
}

// sortPostViews orders the feed. most_liked breaks like-count ties
// newest-first so the order stays deterministic.
func sortPostViews(views []postView, sortBy string) {
	newer := func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID > views[j].ID
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	}
	switch sortBy {
	case sortMostLiked:
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].LikesCount != views[j].LikesCount {
				return views[i].LikesCount > views[j].LikesCount
			}
			return newer(i, j)
		})
	default:
		sort.SliceStable(views, newer)
	}
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	postID, err := parseIDPathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	liked, count, err := s.store.ToggleLike(user.ID, postID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	s.recordEvent("like_toggled", &user.ID, &postID, eventPayload{"state": state})
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       state,
		"likes_count": count,
	})
}

func (s *Server) handleCommentPost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	postID, err := parseIDPathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req commentRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text, err := validateText("comment", req.Comment, maxCommentLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := s.store.AddComment(user.ID, postID, text)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordEvent("comment_added", &user.ID, &postID, eventPayload{"comment_id": comment.ID})
	writeJSON(w, http.StatusCreated, commentView{
		ID:             comment.ID,
		PostID:         comment.PostID,
		UserID:         comment.UserID,
		AuthorUsername: user.Username,
		Text:           comment.Text,
		CreatedAt:      comment.CreatedAt,
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	postID, err := parseIDPathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeletePost(user.ID, postID); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("post deleted post_id=%d user_id=%d", postID, user.ID)
	s.recordEvent("post_deleted", &user.ID, &postID, nil)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted",
	})
}
