package server

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"art-trainer/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errNotFound      = errors.New("not found")
	errForbidden     = errors.New("forbidden")
	errEmailTaken    = errors.New("email already exists")
	errUsernameTaken = errors.New("username already exists")
)

// Store performs all reads and writes for users, drawings and the community
// feed. With a live connection it runs against Postgres; with a nil connection
// it falls back to guarded in-memory maps so the full HTTP surface works in
// tests and local development without a database. The Postgres path is the
// authoritative one: the like-uniqueness invariant there is enforced by the
// idx_likes_post_user index, not by the mutex.
type Store struct {
	db *gorm.DB

	mu       sync.Mutex
	nextID   uint
	users    map[uint]*db.User
	drawings map[uint]*db.Drawing
	posts    map[uint]*db.Post
	likes    map[uint]*db.Like
	comments map[uint]*db.Comment
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{
		db:       conn,
		nextID:   1,
		users:    make(map[uint]*db.User),
		drawings: make(map[uint]*db.Drawing),
		posts:    make(map[uint]*db.Post),
		likes:    make(map[uint]*db.Like),
		comments: make(map[uint]*db.Comment),
	}
}

func (s *Store) allocID() uint {
	id := s.nextID
	s.nextID++
	return id
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// CreateUser registers a new account. Email and username collisions are
// reported as distinct errors, in that order.
func (s *Store) CreateUser(email, username, passwordHash string) (*db.User, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, user := range s.users {
			if strings.EqualFold(user.Email, email) {
				return nil, errEmailTaken
			}
		}
		for _, user := range s.users {
			if strings.EqualFold(user.Username, username) {
				return nil, errUsernameTaken
			}
		}
		user := &db.User{
			ID:           s.allocID(),
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			CreatedAt:    timeNowUTC(),
		}
		s.users[user.ID] = user
		copied := *user
		return &copied, nil
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errUsernameTaken
	}
	record := db.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    timeNowUTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		// Lost a race with a concurrent signup; re-check which field collided.
		if isUniqueViolation(err) {
			var taken int64
			s.db.Model(&db.User{}).Where("email = ?", email).Count(&taken)
			if taken > 0 {
				return nil, errEmailTaken
			}
			return nil, errUsernameTaken
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) UserByEmail(email string) (*db.User, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, user := range s.users {
			if strings.EqualFold(user.Email, email) {
				copied := *user
				return &copied, nil
			}
		}
		return nil, errNotFound
	}
	var record db.User
	if err := s.db.Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) UserByID(id uint) (*db.User, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		user, ok := s.users[id]
		if !ok {
			return nil, errNotFound
		}
		copied := *user
		return &copied, nil
	}
	var record db.User
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &record, nil
}

// UsernamesByID resolves display names for feed rendering in one pass.
func (s *Store) UsernamesByID(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, id := range ids {
			if user, ok := s.users[id]; ok {
				names[id] = user.Username
			}
		}
		return names, nil
	}
	var records []db.User
	if err := s.db.Select("id", "username").Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, record := range records {
		names[record.ID] = record.Username
	}
	return names, nil
}

func (s *Store) DrawingsByUser(userID uint) ([]db.Drawing, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]db.Drawing, 0)
		for _, drawing := range s.drawings {
			if drawing.UserID == userID {
				out = append(out, *drawing)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	var records []db.Drawing
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateDrawing(userID uint, name, imageURL string) (*db.Drawing, error) {
	now := timeNowUTC()
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		drawing := &db.Drawing{
			ID:        s.allocID(),
			UserID:    userID,
			Name:      name,
			ImageURL:  imageURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.drawings[drawing.ID] = drawing
		copied := *drawing
		return &copied, nil
	}
	record := db.Drawing{
		UserID:   userID,
		Name:     name,
		ImageURL: imageURL,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// RenameDrawing updates the name of a drawing owned by userID. The lookup is
// scoped by owner, so another user's drawing reads as not found.
func (s *Store) RenameDrawing(userID, drawingID uint, name string) (*db.Drawing, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		drawing, ok := s.drawings[drawingID]
		if !ok || drawing.UserID != userID {
			return nil, errNotFound
		}
		drawing.Name = name
		drawing.UpdatedAt = timeNowUTC()
		copied := *drawing
		return &copied, nil
	}
	var record db.Drawing
	if err := s.db.Where("id = ? AND user_id = ?", drawingID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	record.Name = name
	if err := s.db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteDrawing(userID, drawingID uint) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		drawing, ok := s.drawings[drawingID]
		if !ok || drawing.UserID != userID {
			return errNotFound
		}
		delete(s.drawings, drawingID)
		return nil
	}
	result := s.db.Where("id = ? AND user_id = ?", drawingID, userID).Delete(&db.Drawing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

func (s *Store) CreatePost(userID uint, imageURL, caption string) (*db.Post, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		post := &db.Post{
			ID:        s.allocID(),
			UserID:    userID,
			ImageURL:  imageURL,
			Caption:   caption,
			CreatedAt: timeNowUTC(),
		}
		s.posts[post.ID] = post
		copied := *post
		return &copied, nil
	}
	record := db.Post{
		UserID:    userID,
		ImageURL:  imageURL,
		Caption:   caption,
		CreatedAt: timeNowUTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPosts returns every post with its likes and comments attached. The feed
// is small by design; there is no pagination and the aggregation happens per
// request.
func (s *Store) ListPosts() ([]db.Post, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]db.Post, 0, len(s.posts))
		for _, post := range s.posts {
			copied := *post
			copied.Likes = nil
			copied.Comments = nil
			for _, like := range s.likes {
				if like.PostID == post.ID {
					copied.Likes = append(copied.Likes, *like)
				}
			}
			for _, comment := range s.comments {
				if comment.PostID == post.ID {
					copied.Comments = append(copied.Comments, *comment)
				}
			}
			out = append(out, copied)
		}
		return out, nil
	}
	var records []db.Post
	err := s.db.
		Preload("Likes").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at, id")
		}).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ToggleLike flips the like state for (userID, postID) and reports the new
// state with the resulting like count. In Postgres the flip runs in one
// transaction; a concurrent duplicate insert is absorbed by the unique index
// rather than producing a second row.
func (s *Store) ToggleLike(userID, postID uint) (bool, int64, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.posts[postID]; !ok {
			return false, 0, errNotFound
		}
		liked := true
		for id, like := range s.likes {
			if like.PostID == postID && like.UserID == userID {
				delete(s.likes, id)
				liked = false
				break
			}
		}
		if liked {
			like := &db.Like{
				ID:        s.allocID(),
				PostID:    postID,
				UserID:    userID,
				CreatedAt: timeNowUTC(),
			}
			s.likes[like.ID] = like
		}
		var count int64
		for _, like := range s.likes {
			if like.PostID == postID {
				count++
			}
		}
		return liked, count, nil
	}

	var liked bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&db.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			liked = false
			return nil
		}
		like := db.Like{
			PostID:    postID,
			UserID:    userID,
			CreatedAt: timeNowUTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			if isUniqueViolation(err) {
				// A concurrent toggle inserted first; the pair is liked either way.
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	var count int64
	if err := s.db.Model(&db.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

func (s *Store) AddComment(userID, postID uint, text string) (*db.Comment, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.posts[postID]; !ok {
			return nil, errNotFound
		}
		comment := &db.Comment{
			ID:        s.allocID(),
			PostID:    postID,
			UserID:    userID,
			Text:      text,
			CreatedAt: timeNowUTC(),
		}
		s.comments[comment.ID] = comment
		copied := *comment
		return &copied, nil
	}
	var record db.Comment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		record = db.Comment{
			PostID:    postID,
			UserID:    userID,
			Text:      text,
			CreatedAt: timeNowUTC(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeletePost removes a post with its likes and comments. Unlike drawings this
// distinguishes a missing post from someone else's post: deleting another
// user's post is forbidden, not hidden.
func (s *Store) DeletePost(userID, postID uint) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		post, ok := s.posts[postID]
		if !ok {
			return errNotFound
		}
		if post.UserID != userID {
			return errForbidden
		}
		for id, like := range s.likes {
			if like.PostID == postID {
				delete(s.likes, id)
			}
		}
		for id, comment := range s.comments {
			if comment.PostID == postID {
				delete(s.comments, id)
			}
		}
		delete(s.posts, postID)
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		if post.UserID != userID {
			return errForbidden
		}
		if err := tx.Where("post_id = ?", postID).Delete(&db.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
