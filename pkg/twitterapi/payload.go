package twitterapi

// RawTweet is the normalized, loosely-typed payload the timeline client
// yields for every fetched post. Field validation happens later, in the
// extractor; the client only flattens the API's nested response shape.
type RawTweet struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	Text           string `json:"text"`
	Datetime       string `json:"datetime"`
	URL            string `json:"url"`
	HasVideo       bool   `json:"hasVideo"`
	VideoURL       string `json:"videoUrl"`
	IsRetweet      bool   `json:"isRetweet"`
	IsReply        bool   `json:"isReply"`
	ReplyToID      string `json:"replyToId"`
	ConversationID string `json:"conversationId"`
}

// wire types for the v2 API responses

type userResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiWireError `json:"errors"`
}

type timelineResponse struct {
	Data     []wireTweet `json:"data"`
	Includes struct {
		Media []wireMedia `json:"media"`
	} `json:"includes"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
	Errors []apiWireError `json:"errors"`
}

type wireTweet struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	CreatedAt        string `json:"created_at"`
	AuthorID         string `json:"author_id"`
	ConversationID   string `json:"conversation_id"`
	InReplyToUserID  string `json:"in_reply_to_user_id"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type wireMedia struct {
	MediaKey string `json:"media_key"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Variants []struct {
		ContentType string `json:"content_type"`
		BitRate     int    `json:"bit_rate"`
		URL         string `json:"url"`
	} `json:"variants"`
}

type apiWireError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
