package extractor

import "tweet-scraper/pkg/domain"

// TweetsWithVideo returns the subset of tweets carrying a video source,
// preserving order. Pure: the input is never mutated.
func TweetsWithVideo(tweets []*domain.Tweet) []*domain.Tweet {
	var out []*domain.Tweet
	for _, t := range tweets {
		if t.HasVideo() {
			out = append(out, t)
		}
	}
	return out
}

// ThreadsWithVideo returns the subset of threads whose resolved video
// source is set or whose members carry one, preserving order.
func ThreadsWithVideo(threads []*domain.Thread) []*domain.Thread {
	var out []*domain.Thread
	for _, th := range threads {
		if th.HasVideo() {
			out = append(out, th)
		}
	}
	return out
}
