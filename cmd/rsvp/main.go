// Command rsvp submits an RSVP from the terminal and remembers the guest's
// details for the next event, like the site's form does.
//
//	rsvp submit -event haldi -name "Asha Rao" -attend yes -guests 2 -email asha@example.com
//	rsvp prefill -event sangeeth
//	rsvp status -event haldi
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"weddingrsvp/pkg/cache"
	"weddingrsvp/pkg/rsvpclient"
)

const usage = `usage: rsvp <submit|prefill|status> [flags]

Environment:
  RSVP_API_URL    service base URL (default http://localhost:8080)
  RSVP_CACHE      cache file (default <user config dir>/weddingrsvp/cache.json)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	client := newClient()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "submit":
		err = submit(ctx, client, os.Args[2:])
	case "prefill":
		err = prefill(ctx, client, os.Args[2:])
	case "status":
		err = status(ctx, client, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func submit(ctx context.Context, client *rsvpclient.Client, args []string) error {
	var in rsvpclient.Form
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	fs.StringVar(&in.EventSlug, "event", "", "event slug, e.g. haldi")
	fs.StringVar(&in.FullName, "name", "", "full name")
	fs.StringVar(&in.WillAttend, "attend", "", "yes or no")
	fs.IntVar(&in.NumberOfGuests, "guests", 0, "number of adults")
	fs.IntVar(&in.NumberOfKids, "kids", 0, "number of kids")
	fs.StringVar(&in.Email, "email", "", "email for the confirmation")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.DietaryRestrictions, "dietary", "", "dietary restrictions")
	fs.StringVar(&in.Message, "message", "", "message for the couple")
	fs.StringVar(&in.RSVPSide, "side", "", "pellikuthuru or pellikoduku, for events that ask")
	legacy := fs.Bool("legacy", false, "post to /api/rsvp instead of /api/v1/rsvp")
	fs.Parse(args)

	// Flags left out fall back to the last successful submission
	form, _ := client.Prefill(ctx, in.EventSlug)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			form.FullName = in.FullName
		case "attend":
			form.WillAttend = in.WillAttend
		case "guests":
			form.NumberOfGuests = in.NumberOfGuests
		case "kids":
			form.NumberOfKids = in.NumberOfKids
		case "email":
			form.Email = in.Email
		case "phone":
			form.Phone = in.Phone
		case "dietary":
			form.DietaryRestrictions = in.DietaryRestrictions
		case "message":
			form.Message = in.Message
		case "side":
			form.RSVPSide = in.RSVPSide
		}
	})

	if marker, ok := client.AlreadyRSVPd(ctx, form.EventSlug); ok {
		fmt.Printf("ℹ️  This device already RSVP'd %q for %s as %s\n", marker.WillAttend, form.EventSlug, marker.Email)
	}

	if *legacy {
		client = newClient(rsvpclient.WithPath("/api/rsvp"))
	}

	result, err := client.Submit(ctx, form)
	if err != nil {
		return fmt.Errorf("%s (%v)", result.Message, err)
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Println("✅", result.Message)
	return nil
}

func prefill(ctx context.Context, client *rsvpclient.Client, args []string) error {
	fs := flag.NewFlagSet("prefill", flag.ExitOnError)
	event := fs.String("event", "", "event slug")
	fs.Parse(args)

	form, found := client.Prefill(ctx, *event)
	if !found {
		fmt.Println("No saved details on this device")
	}
	return printJSON(form)
}

func status(ctx context.Context, client *rsvpclient.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	event := fs.String("event", "", "event slug")
	fs.Parse(args)

	marker, ok := client.AlreadyRSVPd(ctx, *event)
	if !ok {
		fmt.Printf("No RSVP recorded on this device for %q\n", *event)
		return nil
	}
	return printJSON(marker)
}

func newClient(opts ...rsvpclient.Option) *rsvpclient.Client {
	return rsvpclient.New(getEnv("RSVP_API_URL", "http://localhost:8080"), cache.NewFileStore(cachePath()), opts...)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cachePath() string {
	if p := os.Getenv("RSVP_CACHE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "weddingrsvp", "cache.json")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
