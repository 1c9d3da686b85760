package cli

import (
	"context"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/models"
)

func (a *App) Post(ctx context.Context, args []string) error {
	content, err := a.text(args, 0, "What's happening?")
	if err != nil {
		return a.report(ctx, "post", err)
	}
	post, err := a.social.CreatePost(ctx, content)
	if err != nil {
		return a.report(ctx, "post", err)
	}
	a.printf("Posted [%s].\n", post.ID)
	return nil
}

func (a *App) EditPost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("edit <post-id> [text]")
	}
	content, err := a.text(args, 1, "New text")
	if err != nil {
		return a.report(ctx, "edit", err)
	}
	if err := a.social.UpdatePost(ctx, args[0], content); err != nil {
		return a.report(ctx, "edit", err)
	}
	a.println("Post updated.")
	return nil
}

func (a *App) Timeline(ctx context.Context, _ []string) error {
	posts, err := a.social.Timeline(ctx)
	if err != nil {
		return a.report(ctx, "timeline", err)
	}
	a.printPosts(posts, "Your timeline is empty. Follow someone or write a post.")
	return nil
}

func (a *App) Posts(ctx context.Context, args []string) error {
	user, err := a.resolveUser(ctx, args)
	if err != nil {
		return a.report(ctx, "posts", err)
	}
	posts, err := a.social.UserPosts(ctx, user.ID)
	if err != nil {
		return a.report(ctx, "posts", err)
	}
	a.printPosts(posts, "No posts yet.")
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	term, err := a.rest(args, 0, "Search for")
	if err != nil {
		return a.report(ctx, "search", err)
	}
	posts, err := a.social.SearchPosts(ctx, term)
	if err != nil {
		return a.report(ctx, "search", err)
	}
	a.printPosts(posts, "Nothing found.")
	return nil
}

func (a *App) Users(ctx context.Context, args []string) error {
	term, err := a.rest(args, 0, "Search users for")
	if err != nil {
		return a.report(ctx, "users", err)
	}
	users, err := a.social.SearchUsers(ctx, term)
	if err != nil {
		return a.report(ctx, "users", err)
	}
	if len(users) == 0 {
		a.println("Nobody found.")
		return nil
	}
	for _, u := range users {
		a.printf("@%s\n", u.Username)
	}
	return nil
}

func (a *App) Follow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("follow <username>")
	}
	user, err := a.resolveUser(ctx, args)
	if err != nil {
		return a.report(ctx, "follow", err)
	}
	notice, err := a.social.Follow(ctx, user.ID)
	if err != nil {
		return a.report(ctx, "follow", err)
	}
	a.printf("You follow @%s.\n", user.Username)
	a.warn(notice.Warning)
	return nil
}

func (a *App) Unfollow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("unfollow <username>")
	}
	user, err := a.resolveUser(ctx, args)
	if err != nil {
		return a.report(ctx, "unfollow", err)
	}
	if err := a.social.Unfollow(ctx, user.ID); err != nil {
		return a.report(ctx, "unfollow", err)
	}
	a.printf("You no longer follow @%s.\n", user.Username)
	return nil
}

func (a *App) Followers(ctx context.Context, args []string) error {
	return a.followList(ctx, "followers", args, a.social.Followers)
}

func (a *App) Following(ctx context.Context, args []string) error {
	return a.followList(ctx, "following", args, a.social.Following)
}

func (a *App) followList(ctx context.Context, cmd string, args []string,
	list func(context.Context, string) ([]*models.FollowEntry, error)) error {
	user, err := a.resolveUser(ctx, args)
	if err != nil {
		return a.report(ctx, cmd, err)
	}
	entries, err := list(ctx, user.ID)
	if err != nil {
		return a.report(ctx, cmd, err)
	}
	if len(entries) == 0 {
		a.println("Nobody yet.")
		return nil
	}
	for _, e := range entries {
		a.printf("@%s (since %s)\n", e.Username, e.Since.Format(timeLayout))
	}
	return nil
}

func (a *App) Like(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("like <post-id>")
	}
	liked, err := a.social.ToggleLike(ctx, args[0])
	if err != nil {
		return a.report(ctx, "like", err)
	}
	if liked {
		a.println("Liked.")
	} else {
		a.println("Like removed.")
	}
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("comment <post-id> [text]")
	}
	content, err := a.text(args, 1, "Your comment")
	if err != nil {
		return a.report(ctx, "comment", err)
	}
	if _, err := a.social.AddComment(ctx, args[0], content); err != nil {
		return a.report(ctx, "comment", err)
	}
	a.println("Comment added.")
	return nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage("comments <post-id>")
	}
	comments, err := a.social.Comments(ctx, args[0])
	if err != nil {
		return a.report(ctx, "comments", err)
	}
	if len(comments) == 0 {
		a.println("No comments yet.")
		return nil
	}
	for _, c := range comments {
		a.printf("@%s, %s\n  %s\n", c.Username, c.CreatedAt.Format(timeLayout), c.Content)
	}
	return nil
}

// text joins args from i on, or reads a multi-line text when none are given.
func (a *App) text(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return a.rest(args, i, prompt)
	}
	return getMultiline(a.reader, prompt, a.out)
}

func (a *App) usage(u string) error {
	a.println("Usage:", u)
	return common.ErrRequiredField
}

func (a *App) printPosts(posts []*models.Post, empty string) {
	if len(posts) == 0 {
		a.println(empty)
		return
	}
	for _, p := range posts {
		a.printf("[%s] @%s, %s", p.ID, p.Username, p.CreatedAt.Format(timeLayout))
		if p.UpdatedAt.After(p.CreatedAt) {
			a.printf(" (edited)")
		}
		a.printf("\n  %s\n  likes: %d, comments: %d\n", p.Content, p.LikeCount, p.CommentCount)
	}
}
