package extractor

import (
	"fmt"

	"github.com/araddon/dateparse"

	"tweet-scraper/pkg/domain"
	"tweet-scraper/pkg/twitterapi"
)

// MissingFieldError reports a required payload field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("payload missing required field %q", e.Field)
}

// TimestampError reports a payload timestamp that could not be parsed.
// An unparsable timestamp is a hard parse failure: silently defaulting
// to the current time would make date filtering depend on when the run
// executes.
type TimestampError struct {
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("unparsable timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// ParseTweet validates one raw API payload into a Tweet. Required
// fields are id, author, text, url and a parsable timestamp; optional
// fields default to absent/false. The caller is expected to drop failed
// payloads and keep processing the batch.
func ParseTweet(raw twitterapi.RawTweet) (*domain.Tweet, error) {
	switch {
	case raw.ID == "":
		return nil, &MissingFieldError{Field: "id"}
	case raw.Author == "":
		return nil, &MissingFieldError{Field: "author"}
	case raw.Text == "":
		return nil, &MissingFieldError{Field: "text"}
	case raw.URL == "":
		return nil, &MissingFieldError{Field: "url"}
	case raw.Datetime == "":
		return nil, &MissingFieldError{Field: "datetime"}
	}

	ts, err := dateparse.ParseAny(raw.Datetime)
	if err != nil {
		return nil, &TimestampError{Value: raw.Datetime, Err: err}
	}

	t := &domain.Tweet{
		ID:        raw.ID,
		Author:    raw.Author,
		Text:      raw.Text,
		Date:      ts.UTC(),
		URL:       raw.URL,
		VideoURL:  raw.VideoURL,
		IsRetweet: raw.IsRetweet,
		IsReply:   raw.IsReply,
	}
	// reply_to_id is meaningless on a non-reply
	if raw.IsReply {
		t.ReplyToID = raw.ReplyToID
	}
	return t, nil
}
