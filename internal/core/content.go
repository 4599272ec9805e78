package core

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Parent types a comment can hang off. They double as image safety
// categories.
const (
	ParentAdminPost = "AdminPost"
	ParentChapter   = "Chapter"
	ParentTag       = "Tag"
	ParentComment   = "Comment"
)

type Work struct {
	ID       int64  `json:"id" redis:"id"`
	Title    string `json:"title" redis:"title"`
	AuthorID int64  `json:"author_id" redis:"author_id"`
	Spam     bool   `json:"spam" redis:"spam"`
}

type AdminPost struct {
	ID        int64  `json:"id" redis:"id"`
	Title     string `json:"title" redis:"title"`
	Content   string `json:"content" redis:"content"`
	CreatedAt int64  `json:"created_at" redis:"created_at"`
}

type Comment struct {
	ID                 int64  `json:"id" redis:"id"`
	Content            string `json:"content" redis:"content"`
	Name               string `json:"name" redis:"name"`
	Email              string `json:"email" redis:"email"`
	ParentType         string `json:"parent_type" redis:"parent_type"`
	ParentID           int64  `json:"parent_id" redis:"parent_id"`
	UltimateParentType string `json:"ultimate_parent_type" redis:"ultimate_parent_type"`
	UltimateParentID   int64  `json:"ultimate_parent_id" redis:"ultimate_parent_id"`
	CreatedAt          int64  `json:"created_at" redis:"created_at"`
	EditedAt           int64  `json:"edited_at" redis:"edited_at"`
}

func (c Comment) OnAdminPost() bool { return c.UltimateParentType == ParentAdminPost }

func contentKey(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

func nextID(ctx context.Context, kind string) (int64, error) {
	return ContentDB.Incr(ctx, "next_"+kind+"_id").Result()
}

func CreateWork(ctx context.Context, title string, authorID int64, spam bool) (Work, error) {
	id, err := nextID(ctx, "work")
	if err != nil {
		return Work{}, err
	}
	w := Work{ID: id, Title: title, AuthorID: authorID, Spam: spam}
	err = ContentDB.HSet(ctx, contentKey("work", id), map[string]interface{}{
		"id":        w.ID,
		"title":     w.Title,
		"author_id": w.AuthorID,
		"spam":      w.Spam,
	}).Err()
	return w, err
}

func GetWork(ctx context.Context, id int64) (Work, error) {
	var w Work
	if err := ContentDB.HGetAll(ctx, contentKey("work", id)).Scan(&w); err != nil {
		return w, err
	}
	if w.ID == 0 {
		return w, fmt.Errorf("work %d: %w", id, ErrNotFound)
	}
	return w, nil
}

// ResolveWorkTitle returns a work's title, or ErrNotFound.
func ResolveWorkTitle(ctx context.Context, id int64) (string, error) {
	w, err := GetWork(ctx, id)
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func CreateAdminPost(ctx context.Context, title, content string) (AdminPost, error) {
	id, err := nextID(ctx, "admin_post")
	if err != nil {
		return AdminPost{}, err
	}
	p := AdminPost{ID: id, Title: title, Content: content, CreatedAt: time.Now().Unix()}
	err = ContentDB.HSet(ctx, contentKey("admin_post", id), map[string]interface{}{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"created_at": p.CreatedAt,
	}).Err()
	return p, err
}

func GetAdminPost(ctx context.Context, id int64) (AdminPost, error) {
	var p AdminPost
	if err := ContentDB.HGetAll(ctx, contentKey("admin_post", id)).Scan(&p); err != nil {
		return p, err
	}
	if p.ID == 0 {
		return p, fmt.Errorf("admin post %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// CreateComment assigns an id and stores c. A comment replying to another
// comment inherits that comment's ultimate parent.
func CreateComment(ctx context.Context, c Comment) (Comment, error) {
	switch c.ParentType {
	case ParentComment:
		parent, err := GetComment(ctx, c.ParentID)
		if err != nil {
			return Comment{}, err
		}
		c.UltimateParentType = parent.UltimateParentType
		c.UltimateParentID = parent.UltimateParentID
	default:
		c.UltimateParentType = c.ParentType
		c.UltimateParentID = c.ParentID
	}

	id, err := nextID(ctx, "comment")
	if err != nil {
		return Comment{}, err
	}
	c.ID = id
	c.CreatedAt = time.Now().Unix()
	c.EditedAt = 0

	return c, ContentDB.HSet(ctx, contentKey("comment", id), commentFields(c)).Err()
}

func GetComment(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	if err := ContentDB.HGetAll(ctx, contentKey("comment", id)).Scan(&c); err != nil {
		return c, err
	}
	if c.ID == 0 {
		return c, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func UpdateCommentContent(ctx context.Context, id int64, content string) (Comment, error) {
	c, err := GetComment(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	c.Content = content
	c.EditedAt = time.Now().Unix()
	err = ContentDB.HSet(ctx, contentKey("comment", id), map[string]interface{}{
		"content":   c.Content,
		"edited_at": c.EditedAt,
	}).Err()
	return c, err
}

func commentFields(c Comment) map[string]interface{} {
	return map[string]interface{}{
		"id":                   c.ID,
		"content":              c.Content,
		"name":                 c.Name,
		"email":                c.Email,
		"parent_type":          c.ParentType,
		"parent_id":            c.ParentID,
		"ultimate_parent_type": c.UltimateParentType,
		"ultimate_parent_id":   c.UltimateParentID,
		"created_at":           c.CreatedAt,
		"edited_at":            c.EditedAt,
	}
}
