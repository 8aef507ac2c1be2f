package api

import (
	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/pkg/timeutil"
)

// userView is the public wire shape of a user. The email is only included
// for the account owner.
type userView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Image       string `json:"image"`
	Location    string `json:"location,omitempty"`
	About       string `json:"about,omitempty"`
	WorkingOn   string `json:"working_on,omitempty"`
	Interests   string `json:"interests,omitempty"`
	Links       string `json:"links,omitempty"`
	IsCompleted bool   `json:"is_completed"`
	IsPrivate   bool   `json:"is_private"`
}

func newUserView(u *models.User, includeEmail bool) userView {
	v := userView{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Surname:     u.Surname,
		Image:       u.Image,
		Location:    u.Location,
		About:       u.About,
		WorkingOn:   u.WorkingOn,
		Interests:   u.Interests,
		Links:       u.Links,
		IsCompleted: u.IsCompleted,
		IsPrivate:   u.IsPrivate,
	}
	if includeEmail {
		v.Email = u.Email
	}
	return v
}

func newUserViews(users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i], false))
	}
	return views
}

type postView struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	ParentID          string `json:"parent_id,omitempty"`
	GroupID           string `json:"group_id,omitempty"`
	Content           string `json:"content"`
	AuthorUsername    string `json:"author_username"`
	AuthorName        string `json:"author_name"`
	AuthorImage       string `json:"author_image"`
	Likes             int    `json:"likes"`
	Comments          int    `json:"comments"`
	Shares            int    `json:"shares"`
	IsLiked           bool   `json:"is_liked"`
	CreatedAtRelative string `json:"created_at"`
	CreatedAtISO      string `json:"created_at_iso"`
}

func newPostView(p *models.Post) postView {
	name := p.AuthorName
	if p.AuthorSurname != "" {
		name += " " + p.AuthorSurname
	}
	return postView{
		ID:                p.ID,
		UserID:            p.UserID,
		ParentID:          p.ParentID,
		GroupID:           p.GroupID,
		Content:           p.Content,
		AuthorUsername:    p.AuthorUsername,
		AuthorName:        name,
		AuthorImage:       p.AuthorImage,
		Likes:             p.LikeCount,
		Comments:          p.CommentCount,
		Shares:            p.Shares,
		IsLiked:           p.IsLiked,
		CreatedAtRelative: timeutil.TimeAgo(p.CreatedAt),
		CreatedAtISO:      timeutil.ISO(p.CreatedAt),
	}
}

func newPostViews(posts []models.Post) []postView {
	views := make([]postView, 0, len(posts))
	for i := range posts {
		views = append(views, newPostView(&posts[i]))
	}
	return views
}

type commentView struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	PostID            string `json:"post_id"`
	Content           string `json:"content"`
	AuthorUsername    string `json:"author_username"`
	AuthorName        string `json:"author_name"`
	AuthorImage       string `json:"author_image"`
	Likes             int    `json:"likes"`
	IsLiked           bool   `json:"is_liked"`
	CreatedAtRelative string `json:"created_at"`
	CreatedAtISO      string `json:"created_at_iso"`
}

func newCommentView(c *models.Comment) commentView {
	name := c.AuthorName
	if c.AuthorSurname != "" {
		name += " " + c.AuthorSurname
	}
	return commentView{
		ID:                c.ID,
		UserID:            c.UserID,
		PostID:            c.PostID,
		Content:           c.Content,
		AuthorUsername:    c.AuthorUsername,
		AuthorName:        name,
		AuthorImage:       c.AuthorImage,
		Likes:             c.LikeCount,
		IsLiked:           c.IsLiked,
		CreatedAtRelative: timeutil.TimeAgo(c.CreatedAt),
		CreatedAtISO:      timeutil.ISO(c.CreatedAt),
	}
}

func newCommentViews(comments []models.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	return views
}

type groupView struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	About     string `json:"about"`
	Image     string `json:"image"`
	Type      string `json:"type"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"created_at"`
}

func newGroupView(g *models.Group, role models.GroupRole) groupView {
	return groupView{
		ID:        g.ID,
		OwnerID:   g.OwnerID,
		Name:      g.Name,
		About:     g.About,
		Image:     g.Image,
		Type:      string(g.Type),
		Role:      string(role),
		CreatedAt: timeutil.ISO(g.CreatedAt),
	}
}

func newMessageViews(messages []models.Message) []models.MessageView {
	views := make([]models.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, messages[i].View())
	}
	return views
}

func newNotificationViews(notifications []models.Notification) []models.NotificationView {
	views := make([]models.NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, notifications[i].View())
	}
	return views
}
