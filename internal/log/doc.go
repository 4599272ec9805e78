// Package log provides the slog handler used by archivemail. It masks
// passwords, password-setup tokens, session cookies and TOTP codes before a
// record reaches the underlying text or JSON handler.
package log
