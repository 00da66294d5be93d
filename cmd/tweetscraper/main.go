package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"tweet-scraper/pkg/archive"
	"tweet-scraper/pkg/config"
	"tweet-scraper/pkg/domain"
	"tweet-scraper/pkg/extractor"
	"tweet-scraper/pkg/httpclient"
	"tweet-scraper/pkg/twitterapi"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		profileURL = flag.String("url", "", "Profile URL to scrape (x.com or twitter.com)")
		startDate  = flag.String("start-date", "", "Start of the date range (YYYY-MM-DD, inclusive)")
		endDate    = flag.String("end-date", "", "End of the date range (YYYY-MM-DD, inclusive)")
		outputDir  = flag.String("output", "", "Directory for videos and JSON sidecars")
		limit      = flag.Int("limit", 200, "Max tweets to fetch from the timeline")
		videosOnly = flag.Bool("videos-only", false, "Only download and archive items that carry a video")
		configPath = flag.String("config", "", "Optional YAML config file")
	)
	flag.Parse()

	if *profileURL == "" || *startDate == "" || *endDate == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if cfg.Twitter.BearerToken == "" {
		log.Fatal("Twitter bearer token not configured (set TWITTER_BEARER_TOKEN)")
	}

	start, err := time.ParseInLocation(dateLayout, *startDate, time.UTC)
	if err != nil {
		log.Fatalf("Invalid start date %q: %v", *startDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, *endDate, time.UTC)
	if err != nil {
		log.Fatalf("Invalid end date %q: %v", *endDate, err)
	}
	// The end day is included whole.
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		log.Fatalf("End date %s is before start date %s", *endDate, *startDate)
	}

	username, err := twitterapi.UsernameFromURL(*profileURL)
	if err != nil {
		log.Fatalf("Invalid profile URL: %v", err)
	}

	ctx := context.Background()

	api := twitterapi.New(httpclient.NewBearer(cfg.Twitter.BearerToken, 30*time.Second))

	log.Printf("Scraping @%s from %s to %s", username, *startDate, *endDate)
	raws, err := api.UserTweets(ctx, username, start, end, *limit)
	if err != nil {
		log.Fatalf("Failed to fetch timeline: %v", err)
	}
	log.Printf("Fetched %d raw tweet(s)", len(raws))

	tweets := make([]*domain.Tweet, 0, len(raws))
	for _, raw := range raws {
		t, err := extractor.ParseTweet(raw)
		if err != nil {
			log.Printf("Dropping tweet %s: %v", raw.ID, err)
			continue
		}
		tweets = append(tweets, t)
	}

	tweets = extractor.Apply(tweets,
		extractor.RetweetFilter{},
		extractor.NewDateRangeFilter(start, end),
	)
	log.Printf("%d tweet(s) after filtering", len(tweets))

	standalone, threads := extractor.GroupThreads(tweets, username)
	log.Printf("Grouped into %d standalone tweet(s) and %d thread(s)", len(standalone), len(threads))

	result := &domain.ScrapingResult{
		ProfileURL: *profileURL,
		StartDate:  start,
		EndDate:    end,
		Tweets:     standalone,
		Threads:    threads,
	}
	if *videosOnly {
		result.Tweets = extractor.TweetsWithVideo(result.Tweets)
		result.Threads = extractor.ThreadsWithVideo(result.Threads)
		log.Printf("Videos only: %d tweet(s), %d thread(s)", len(result.Tweets), len(result.Threads))
	}

	svc, err := archive.NewService(cfg.OutputDir, archive.NewYTDLP())
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	summary, err := svc.ProcessAll(ctx, result.Tweets, result.Threads)
	if err != nil {
		log.Fatalf("Archiving failed: %v", err)
	}

	printSummary(summary, cfg.OutputDir)
}

func printSummary(s archive.Summary, outputDir string) {
	bold := color.New(color.Bold)
	bold.Println("\nScraping complete")
	fmt.Printf("  Items processed: %d\n", s.Items)
	fmt.Printf("  JSON saved:      %d\n", s.JSONSaved)
	color.Green("  Videos saved:    %d", s.VideoOK)
	if s.VideoFailed > 0 {
		color.Red("  Videos failed:   %d", s.VideoFailed)
	}
	fmt.Printf("  Output: %s\n", outputDir)
}
