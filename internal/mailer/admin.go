package mailer

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"archivemail/internal/core"
)

var (
	// ErrNothingToSend means every entry of a spam report was dropped.
	ErrNothingToSend = errors.New("nothing to send")
	// ErrNotAdminPost is returned for comments outside admin posts.
	ErrNotAdminPost = errors.New("comment is not on an admin post")
)

// Archive is the read side of the archive the mailer depends on.
type Archive interface {
	GetComment(ctx context.Context, id int64) (core.Comment, error)
	GetAdminPost(ctx context.Context, id int64) (core.AdminPost, error)
	ResolveLogin(ctx context.Context, id int64) (string, error)
	ResolveWorkTitle(ctx context.Context, id int64) (string, error)
}

type AdminMailer struct {
	cfg       *core.Config
	archive   Archive
	sender    Sender
	safety    SafetyMode
	templates *templateSet
}

func NewAdminMailer(cfg *core.Config, archive Archive, sender Sender) (*AdminMailer, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &AdminMailer{
		cfg:       cfg,
		archive:   archive,
		sender:    sender,
		safety:    NewSafetyMode(cfg.ImageSafetyParents...),
		templates: tmpl,
	}, nil
}

// WithSafetyMode returns a copy of m that uses mode instead of the
// configured categories.
func (m *AdminMailer) WithSafetyMode(mode SafetyMode) *AdminMailer {
	clone := *m
	clone.safety = mode
	return &clone
}

func (m *AdminMailer) SafetyMode() SafetyMode { return m.safety }

func (m *AdminMailer) subject(text string) string {
	return fmt.Sprintf("[%s] %s", m.cfg.AppShortName, text)
}

type commentData struct {
	AppName       string
	Edited        bool
	CommenterName string
	PostTitle     string
	PostURL       string
	CommentURL    string
	ContentHTML   htmltemplate.HTML
	ContentText   string
}

// CommentNotification tells the admins about a new comment on an admin post.
func (m *AdminMailer) CommentNotification(ctx context.Context, commentID int64) (*Message, error) {
	return m.commentNotification(ctx, commentID, false)
}

// EditedCommentNotification tells the admins a comment on an admin post
// changed.
func (m *AdminMailer) EditedCommentNotification(ctx context.Context, commentID int64) (*Message, error) {
	return m.commentNotification(ctx, commentID, true)
}

func (m *AdminMailer) commentNotification(ctx context.Context, commentID int64, edited bool) (*Message, error) {
	kind, subject := kindComment, "Comment on admin post"
	if edited {
		kind, subject = kindEditedComment, "Edited comment on admin post"
	}

	comment, err := m.archive.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.OnAdminPost() {
		return nil, fmt.Errorf("comment %d: %w", commentID, ErrNotAdminPost)
	}
	post, err := m.archive.GetAdminPost(ctx, comment.UltimateParentID)
	if err != nil {
		return nil, err
	}

	category := Category(comment.UltimateParentType)
	filtered, stripped := filterImages(comment.Content, category, m.safety)
	if stripped > 0 {
		core.ImagesStrippedTotal.WithLabelValues(string(category)).Add(float64(stripped))
	}

	postURL := m.cfg.PublicURL + "/admin_posts/" + strconv.FormatInt(post.ID, 10)
	data := commentData{
		AppName:       m.cfg.AppShortName,
		Edited:        edited,
		CommenterName: comment.Name,
		PostTitle:     post.Title,
		PostURL:       postURL,
		CommentURL:    postURL + "/comments/" + strconv.FormatInt(comment.ID, 10),
		// Comment content is sanitized when it is saved.
		ContentHTML: htmltemplate.HTML(filtered), //nolint:gosec
		ContentText: PlainText(filtered),
	}

	msg := newMessage(kind, m.cfg.MailFrom, m.subject(subject), m.cfg.AdminAddress)
	if err := m.templates.render(kind, msg, data); err != nil {
		return nil, err
	}
	return msg, m.deliver(ctx, msg)
}

type spamData struct {
	AppName  string
	Sections []SpamSection
}

// SendSpamAlert mails the spam digest to the alert address. It returns
// ErrNothingToSend, and sends nothing, when no flagged user still exists.
func (m *AdminMailer) SendSpamAlert(ctx context.Context, report SpamReport) (*Message, error) {
	sections, err := Aggregate(ctx, report, m.archive.ResolveLogin, m.archive.ResolveWorkTitle)
	if err != nil {
		return nil, err
	}
	if omitted := countUsers(report) - len(sections); omitted > 0 {
		core.SpamUsersOmittedTotal.Add(float64(omitted))
	}
	if len(sections) == 0 {
		core.MailsTotal.WithLabelValues(kindSpamAlert, "suppressed").Inc()
		core.LogAudit(ctx, "MAIL_SUPPRESSED", "system", "", map[string]interface{}{
			"kind":    kindSpamAlert,
			"entries": len(report),
		})
		slog.Info("Spam alert has no users left to report, not sending", "entries", len(report))
		return nil, ErrNothingToSend
	}

	msg := newMessage(kindSpamAlert, m.cfg.MailFrom, m.subject("Potential spam alert"), m.cfg.SpamAlertAddress)
	data := spamData{AppName: m.cfg.AppShortName, Sections: sections}
	if err := m.templates.render(kindSpamAlert, msg, data); err != nil {
		return nil, err
	}
	return msg, m.deliver(ctx, msg)
}

func countUsers(report SpamReport) int {
	seen := make(map[int64]struct{}, len(report))
	for _, e := range report {
		seen[e.UserID] = struct{}{}
	}
	return len(seen)
}

type passwordData struct {
	AppName    string
	Login      string
	LoginURL   string
	ResetURL   string
	Token      string
	ValidHours int
}

// SetPasswordNotification sends a new admin the link for choosing a
// password.
func (m *AdminMailer) SetPasswordNotification(ctx context.Context, admin core.User, token string) (*Message, error) {
	if admin.Email == "" {
		return nil, fmt.Errorf("admin %q has no email address", admin.Login)
	}

	q := url.Values{}
	q.Set("reset_password_token", token)
	data := passwordData{
		AppName:    m.cfg.AppShortName,
		Login:      admin.Login,
		LoginURL:   m.cfg.PublicURL + "/admin/login",
		ResetURL:   m.cfg.PublicURL + "/admin/password/edit?" + q.Encode(),
		Token:      token,
		ValidHours: m.cfg.PasswordTokenHours,
	}

	subject := m.subject(fmt.Sprintf("Your %s admin account", m.cfg.AppShortName))
	msg := newMessage(kindSetPassword, m.cfg.MailFrom, subject, admin.Email)
	if err := m.templates.render(kindSetPassword, msg, data); err != nil {
		return nil, err
	}
	return msg, m.deliver(ctx, msg)
}

// SendPasswordSetup issues a fresh password setup token for admin, which
// revokes any earlier one, and mails it.
func (m *AdminMailer) SendPasswordSetup(ctx context.Context, admin core.User) (*Message, error) {
	if !admin.Admin() {
		return nil, fmt.Errorf("user %q is not an admin", admin.Login)
	}
	ttl := time.Duration(m.cfg.PasswordTokenHours) * time.Hour
	token, err := core.IssuePasswordToken(ctx, admin.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue password token: %w", err)
	}
	return m.SetPasswordNotification(ctx, admin, token)
}

func (m *AdminMailer) deliver(ctx context.Context, msg *Message) error {
	if err := m.sender.Send(ctx, msg); err != nil {
		core.MailsTotal.WithLabelValues(msg.Kind, "failed").Inc()
		slog.Error("Failed to send notification", "kind", msg.Kind, "to", msg.To, "error", err)
		return fmt.Errorf("send %s: %w", msg.Kind, err)
	}
	core.MailsTotal.WithLabelValues(msg.Kind, "sent").Inc()
	core.LogAudit(ctx, "MAIL_SENT", "system", "", map[string]interface{}{
		"kind":    msg.Kind,
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
