// Package mailer builds and delivers the archive's admin notifications.
//
// The content policy lives in two pure functions. FilterImages applies
// image safety mode to an HTML fragment: for protected content categories
// every embedded image is replaced by its URL, for all others the fragment
// is returned untouched. Aggregate turns a spam report into an ordered list
// of sections, silently dropping users that no longer exist.
//
// AdminMailer is the dispatch layer on top: it looks records up, renders the
// HTML and text templates, and hands a multipart message to a Sender. It is
// also where an empty spam digest turns into "do not send".
package mailer
