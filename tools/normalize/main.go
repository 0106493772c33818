package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/orgball2608/insta-profile-proxy/internal/normalizer"
	"github.com/orgball2608/insta-profile-proxy/pkg/formatter"
)

const usage = "Usage: normalize [profile|posts] <file|-> [schema]"

func main() {
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	kind, path := os.Args[1], os.Args[2]

	schemaName := normalizer.Instagram120.Name
	if len(os.Args) > 3 {
		schemaName = os.Args[3]
	}
	schema, ok := normalizer.Lookup(schemaName)
	if !ok {
		log.Fatalf("Unknown schema %q, known schemas: %v", schemaName, normalizer.Names())
	}

	body, err := readInput(path)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch kind {
	case "profile":
		if normalizer.IsEmpty(body) {
			log.Fatal("No profile data found")
		}
		p := schema.NormalizeProfile(body, "")
		if err := enc.Encode(p); err != nil {
			log.Fatalf("Failed to encode profile: %v", err)
		}
		fmt.Fprintf(os.Stderr, "@%s: %s followers, %s following, %s posts\n",
			p.Username, formatter.FormatNumber(int(p.FollowersCount)),
			formatter.FormatNumber(int(p.FollowingCount)), formatter.FormatNumber(int(p.PostsCount)))
	case "posts":
		posts := schema.NormalizePosts(body)
		if err := enc.Encode(posts); err != nil {
			log.Fatalf("Failed to encode posts: %v", err)
		}
		var likes int64
		for _, p := range posts {
			likes += p.LikeCount
		}
		fmt.Fprintf(os.Stderr, "%d posts, %s likes\n", len(posts), formatter.FormatNumber(int(likes)))
	default:
		log.Fatal(usage)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
