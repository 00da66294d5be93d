package extractor

import (
	"sort"

	"tweet-scraper/pkg/domain"
)

// GroupThreads partitions a batch of tweets into standalone tweets and
// reply-chain threads authored by targetAuthor.
//
// A tweet continues a thread iff it is marked as a reply, its parent is
// present in the batch, and both it and the parent are authored by
// targetAuthor. Replies to other users and replies whose parent was not
// fetched stay standalone. Assignment is first-wins: a tweet already in
// a thread is never reassigned, and threads plus the standalone set
// partition the batch.
//
// Clustering walks the batch in chronological order, so a parent is
// always seen before its replies and a chain of any depth collapses
// into the single thread rooted at its earliest tweet. Membership is an
// id -> thread index map, making the "already in a thread" check O(1).
func GroupThreads(tweets []*domain.Tweet, targetAuthor string) ([]*domain.Tweet, []*domain.Thread) {
	byID := make(map[string]*domain.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.ID] = t
	}

	ordered := make([]*domain.Tweet, len(tweets))
	copy(ordered, tweets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var threads []*domain.Thread
	memberOf := make(map[string]int)

	for _, t := range ordered {
		if !t.IsReply || t.ReplyToID == "" {
			continue
		}
		parent, ok := byID[t.ReplyToID]
		if !ok {
			continue
		}
		if parent.Author != targetAuthor || t.Author != targetAuthor {
			continue
		}

		idx, ok := memberOf[parent.ID]
		if !ok {
			threads = append(threads, &domain.Thread{
				ID:     parent.ID,
				Author: parent.Author,
				Date:   parent.Date,
				Tweets: []*domain.Tweet{parent},
			})
			idx = len(threads) - 1
			memberOf[parent.ID] = idx
		}

		if _, assigned := memberOf[t.ID]; !assigned {
			threads[idx].Tweets = append(threads[idx].Tweets, t)
			memberOf[t.ID] = idx
		}
	}

	for _, th := range threads {
		sort.SliceStable(th.Tweets, func(i, j int) bool {
			return th.Tweets[i].Date.Before(th.Tweets[j].Date)
		})
		th.VideoURL = th.FirstVideoURL()
	}

	standalone := make([]*domain.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if _, assigned := memberOf[t.ID]; !assigned {
			standalone = append(standalone, t)
		}
	}

	return standalone, threads
}
