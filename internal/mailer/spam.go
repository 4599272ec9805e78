package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"archivemail/internal/core"
)

// SpamReportEntry is one flagged account.
type SpamReportEntry struct {
	UserID  int64   `json:"user_id"`
	Score   int     `json:"score"`
	WorkIDs []int64 `json:"work_ids"`
}

// SpamReport is ordered: entries render in the order they were reported.
//
// On the wire a report is a JSON object keyed by user id,
//
//	{"100": {"score": 13, "work_ids": [1, 2, 3]}, "200": {...}}
//
// and key order is kept. A JSON array of entries is accepted as well.
type SpamReport []SpamReportEntry

func (r *SpamReport) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch tok {
	case nil:
		*r = nil
		return nil
	case json.Delim('['):
		var entries []SpamReportEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*r = entries
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("spam report: expected object or array, got %v", tok)
	}

	var out SpamReport
	index := make(map[int64]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("spam report: user id %q: %w", key, err)
		}

		var body struct {
			Score   int     `json:"score"`
			WorkIDs []int64 `json:"work_ids"`
		}
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("spam report: user %d: %w", id, err)
		}

		entry := SpamReportEntry{UserID: id, Score: body.Score, WorkIDs: body.WorkIDs}
		// A repeated key replaces the value but keeps its first position.
		if i, ok := index[id]; ok {
			out[i] = entry
			continue
		}
		index[id] = len(out)
		out = append(out, entry)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// UserResolver returns the display name for a user id, or an error wrapping
// core.ErrNotFound when the account no longer exists.
type UserResolver func(ctx context.Context, userID int64) (string, error)

// TitleResolver returns the display title for a flagged work.
type TitleResolver func(ctx context.Context, workID int64) (string, error)

// SpamSection is what the digest shows for one user.
type SpamSection struct {
	UserID int64
	Login  string
	Score  int
	Titles []string
}

// Aggregate resolves report into sections in report order. Users that no
// longer resolve are skipped without a trace, and works that no longer
// resolve are left out of their user's list. Scores are carried through and
// never used for ordering. Any other resolver error aborts.
//
// An empty result means there is nothing to report; deciding not to send is
// up to the caller.
func Aggregate(ctx context.Context, report SpamReport, users UserResolver, titles TitleResolver) ([]SpamSection, error) {
	sections := make([]SpamSection, 0, len(report))
	seen := make(map[int64]struct{}, len(report))

	for _, entry := range report {
		if _, dup := seen[entry.UserID]; dup {
			continue
		}
		seen[entry.UserID] = struct{}{}

		login, err := users(ctx, entry.UserID)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve user %d: %w", entry.UserID, err)
		}

		section := SpamSection{
			UserID: entry.UserID,
			Login:  login,
			Score:  entry.Score,
			Titles: make([]string, 0, len(entry.WorkIDs)),
		}
		seenWork := make(map[int64]struct{}, len(entry.WorkIDs))
		for _, workID := range entry.WorkIDs {
			if _, dup := seenWork[workID]; dup {
				continue
			}
			seenWork[workID] = struct{}{}

			title, err := titles(ctx, workID)
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("resolve work %d: %w", workID, err)
			}
			section.Titles = append(section.Titles, title)
		}
		sections = append(sections, section)
	}

	return sections, nil
}
