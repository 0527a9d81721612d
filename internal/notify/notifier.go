// Package notify delivers badge-earned events to students. Delivery is
// best-effort: a failed notification never rolls back the award that
// triggered it.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type BadgeEarned struct {
	Recipient        string `json:"recipient"`
	BadgeID          string `json:"badge_id"`
	BadgeName        string `json:"badge_name"`
	BadgeDescription string `json:"badge_description"`
	BadgeImageRef    string `json:"badge_image,omitempty"`
}

type Sink interface {
	NotifyBadgeEarned(ctx context.Context, ev BadgeEarned) error
}

// LogSink prints events; the offline default when no feed is wired.
type LogSink struct{}

func (LogSink) NotifyBadgeEarned(_ context.Context, ev BadgeEarned) error {
	log.Printf("badge earned: student=%s badge=%s", ev.Recipient, ev.BadgeName)
	return nil
}

type Notification struct {
	ID        string          `json:"id"`
	Recipient string          `json:"recipient"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	IsRead    bool            `json:"is_read"`
	CreatedAt int64           `json:"created_at"`
}

// FeedStore persists notifications as an in-app feed.
type FeedStore struct {
	db *sql.DB
}

func NewFeedStore(db *sql.DB) *FeedStore { return &FeedStore{db: db} }

func (f *FeedStore) NotifyBadgeEarned(ctx context.Context, ev BadgeEarned) error {
	data, err := json.Marshal(map[string]any{
		"badge_id":          ev.BadgeID,
		"badge_name":        ev.BadgeName,
		"badge_description": ev.BadgeDescription,
		"badge_image":       ev.BadgeImageRef,
	})
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Congratulations! You've earned the %s badge!", ev.BadgeName)
	_, err = f.db.ExecContext(ctx, `INSERT INTO notifications (id,recipient_id,typ,message,data_json,is_read,created_at)
		VALUES ($1,$2,'badge_earned',$3,$4,FALSE,$5)`,
		uuid.NewString(), ev.Recipient, msg, string(data), time.Now().Unix())
	return err
}

func (f *FeedStore) List(ctx context.Context, recipient string, unreadOnly bool) ([]Notification, error) {
	q := `SELECT id,recipient_id,typ,message,data_json,is_read,created_at
		FROM notifications WHERE recipient_id=$1`
	if unreadOnly {
		q += ` AND is_read=FALSE`
	}
	q += ` ORDER BY created_at DESC LIMIT 100`
	rows, err := f.db.QueryContext(ctx, q, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		var data string
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Type, &n.Message, &data, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Data = json.RawMessage(data)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (f *FeedStore) MarkRead(ctx context.Context, recipient, id string) error {
	_, err := f.db.ExecContext(ctx, `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_id=$2`, id, recipient)
	return err
}
