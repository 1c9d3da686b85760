package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/dbx"
	"github.com/dmitrijs2005/chirp/internal/models"
)

// SocialService works on posts and the follow graph on behalf of the
// logged in user. Every method needs an active session.
type SocialService struct {
	base
}

func NewSocialService(deps Dependencies) *SocialService {
	return &SocialService{base: base{deps}}
}

func (s *SocialService) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	id, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := checkVar("content", content, "required"); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	post := &models.Post{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		Username:  id.DisplayName,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repos.Posts(s.DB).Create(ctx, post); err != nil {
		return nil, s.fail(ctx, "create post", err)
	}
	return post, nil
}

// UpdatePost replaces the text of one of the user's own posts.
func (s *SocialService) UpdatePost(ctx context.Context, postID, content string) error {
	id, err := s.currentUser()
	if err != nil {
		return err
	}
	content = strings.TrimSpace(content)
	if err := checkVar("content", content, "required"); err != nil {
		return err
	}

	post, err := s.post(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != id.UserID {
		return common.ErrNotOwner
	}

	if err := s.Repos.Posts(s.DB).UpdateContent(ctx, post.ID, content, s.Clock.Now()); err != nil {
		return s.fail(ctx, "update post", err)
	}
	return nil
}

// Timeline lists the user's own posts and those of followed users, newest
// first.
func (s *SocialService) Timeline(ctx context.Context) ([]*models.Post, error) {
	id, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	out, err := s.Repos.Posts(s.DB).Timeline(ctx, id.UserID, DefaultListLimit)
	if err != nil {
		return nil, s.fail(ctx, "timeline", err)
	}
	return out, nil
}

func (s *SocialService) UserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return nil, err
	}
	out, err := s.Repos.Posts(s.DB).ByUser(ctx, userID, DefaultListLimit)
	if err != nil {
		return nil, s.fail(ctx, "user posts", err)
	}
	return out, nil
}

// SearchPosts finds posts containing term. A hashtag such as "#go" is
// matched literally.
func (s *SocialService) SearchPosts(ctx context.Context, term string) ([]*models.Post, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if err := checkVar("term", term, "required"); err != nil {
		return nil, err
	}
	out, err := s.Repos.Posts(s.DB).Search(ctx, term, DefaultListLimit)
	if err != nil {
		return nil, s.fail(ctx, "search posts", err)
	}
	return out, nil
}

func (s *SocialService) SearchUsers(ctx context.Context, term string) ([]*models.User, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if err := checkVar("term", term, "required"); err != nil {
		return nil, err
	}
	out, err := s.Repos.Users(s.DB).Search(ctx, term, DefaultListLimit)
	if err != nil {
		return nil, s.fail(ctx, "search users", err)
	}
	return out, nil
}

// Follow makes the logged in user follow userID and notifies them by mail.
// Following someone twice is not an error and sends no second mail.
func (s *SocialService) Follow(ctx context.Context, userID string) (*Notice, error) {
	id, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	target, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.ID == id.UserID {
		return nil, common.ErrSelfFollow
	}

	repo := s.Repos.Follows(s.DB)
	exists, err := repo.Exists(ctx, id.UserID, target.ID)
	if err != nil {
		return nil, s.fail(ctx, "follow check", err)
	}
	if exists {
		return &Notice{}, nil
	}
	if err := repo.Add(ctx, id.UserID, target.ID, s.Clock.Now()); err != nil {
		return nil, s.fail(ctx, "follow", err)
	}

	notice := &Notice{}
	if err := s.Mailer.SendFollowerNotice(ctx, target.Email, id.DisplayName); err != nil {
		notice.Warning = s.mailWarning(ctx, "follower", err)
	}
	return notice, nil
}

func (s *SocialService) Unfollow(ctx context.Context, userID string) error {
	id, err := s.currentUser()
	if err != nil {
		return err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return err
	}
	if err := s.Repos.Follows(s.DB).Remove(ctx, id.UserID, userID); err != nil {
		return s.fail(ctx, "unfollow", err)
	}
	return nil
}

func (s *SocialService) IsFollowing(ctx context.Context, userID string) (bool, error) {
	id, err := s.currentUser()
	if err != nil {
		return false, err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return false, err
	}
	ok, err := s.Repos.Follows(s.DB).Exists(ctx, id.UserID, userID)
	if err != nil {
		return false, s.fail(ctx, "follow check", err)
	}
	return ok, nil
}

func (s *SocialService) Followers(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return nil, err
	}
	out, err := s.Repos.Follows(s.DB).Followers(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "followers", err)
	}
	return out, nil
}

func (s *SocialService) Following(ctx context.Context, userID string) ([]*models.FollowEntry, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return nil, err
	}
	out, err := s.Repos.Follows(s.DB).Following(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "following", err)
	}
	return out, nil
}

func (s *SocialService) FollowCounts(ctx context.Context, userID string) (models.FollowCounts, error) {
	if _, err := s.currentUser(); err != nil {
		return models.FollowCounts{}, err
	}
	if err := checkVar("user_id", userID, idRules); err != nil {
		return models.FollowCounts{}, err
	}
	c, err := s.Repos.Follows(s.DB).Counts(ctx, userID)
	if err != nil {
		return models.FollowCounts{}, s.fail(ctx, "follow counts", err)
	}
	return c, nil
}

// ToggleLike likes postID, or removes the like if it is already there.
// It reports whether the post is liked afterwards.
func (s *SocialService) ToggleLike(ctx context.Context, postID string) (bool, error) {
	id, err := s.currentUser()
	if err != nil {
		return false, err
	}
	post, err := s.post(ctx, postID)
	if err != nil {
		return false, err
	}

	var liked bool
	err = dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.Repos.Likes(tx)
		exists, err := repo.Exists(ctx, id.UserID, post.ID)
		if err != nil {
			return err
		}
		if exists {
			return repo.Remove(ctx, id.UserID, post.ID)
		}
		liked = true
		return repo.Add(ctx, id.UserID, post.ID, s.Clock.Now())
	})
	if err != nil {
		return false, s.fail(ctx, "toggle like", err)
	}
	return liked, nil
}

func (s *SocialService) LikeCount(ctx context.Context, postID string) (int, error) {
	if _, err := s.currentUser(); err != nil {
		return 0, err
	}
	if err := checkVar("post_id", postID, idRules); err != nil {
		return 0, err
	}
	n, err := s.Repos.Likes(s.DB).Count(ctx, postID)
	if err != nil {
		return 0, s.fail(ctx, "like count", err)
	}
	return n, nil
}

func (s *SocialService) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	id, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := checkVar("content", content, "required"); err != nil {
		return nil, err
	}
	post, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		UserID:    id.UserID,
		Username:  id.DisplayName,
		Content:   content,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repos.Comments(s.DB).Create(ctx, c); err != nil {
		return nil, s.fail(ctx, "add comment", err)
	}
	return c, nil
}

// Comments lists the comments on postID, oldest first.
func (s *SocialService) Comments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := s.currentUser(); err != nil {
		return nil, err
	}
	post, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	out, err := s.Repos.Comments(s.DB).ForPost(ctx, post.ID)
	if err != nil {
		return nil, s.fail(ctx, "comments", err)
	}
	return out, nil
}

func (s *SocialService) post(ctx context.Context, postID string) (*models.Post, error) {
	if err := checkVar("post_id", postID, idRules); err != nil {
		return nil, err
	}
	p, err := s.Repos.Posts(s.DB).Get(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownPost
		}
		return nil, s.fail(ctx, "post lookup", err)
	}
	return p, nil
}

func (s *SocialService) user(ctx context.Context, userID string) (*models.User, error) {
	if err := checkVar("user_id", userID, idRules); err != nil {
		return nil, err
	}
	u, err := s.Repos.Users(s.DB).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, s.fail(ctx, "user lookup", err)
	}
	return u, nil
}
