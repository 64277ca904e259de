package publish

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pinpoint/internal/config"
	"pinpoint/internal/puzzle"
)

const titleDateLayout = "Jan 02, 2006"

// Metadata is the snippet and status sent with an upload.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
	MadeForKids bool
}

// MetadataSettings are the channel-level publishing defaults.
type MetadataSettings struct {
	SolverURL  string
	Tags       []string
	CategoryID string
	Privacy    string
}

// MetadataSettingsFromConfig reads the [youtube] section.
func MetadataSettingsFromConfig(cfg *config.Config) MetadataSettings {
	return MetadataSettings{
		SolverURL:  cfg.YouTube.SolverURL,
		Tags:       append([]string(nil), cfg.YouTube.Tags...),
		CategoryID: cfg.YouTube.CategoryID,
		Privacy:    cfg.YouTube.Privacy,
	}
}

// BuildMetadata renders upload metadata for task. The title never contains the
// answer; viewers find it in the video.
func BuildMetadata(task puzzle.Task, settings MetadataSettings) Metadata {
	date := displayDate(task)
	var desc strings.Builder
	fmt.Fprintf(&desc, "LinkedIn Pinpoint Answer for %s.\n", date)
	if url := strings.TrimSpace(settings.SolverURL); url != "" {
		fmt.Fprintf(&desc, "See the full solution and archives here: %s\n", url)
	}
	desc.WriteString("\nToday's LinkedIn Pinpoint answer is revealed in this video along with the clues.")
	if tags := hashtags(settings.Tags); tags != "" {
		desc.WriteString("\n\n")
		desc.WriteString(tags)
	}

	privacy := strings.TrimSpace(settings.Privacy)
	if privacy == "" {
		privacy = "public"
	}
	category := strings.TrimSpace(settings.CategoryID)
	if category == "" {
		category = "20"
	}
	return Metadata{
		Title:       fmt.Sprintf("LinkedIn Pinpoint %s Answer | Today's Pinpoint Hints & Key", date),
		Description: desc.String(),
		Tags:        append([]string(nil), settings.Tags...),
		CategoryID:  category,
		Privacy:     privacy,
	}
}

// displayDate formats the puzzle date as "Jan 02, 2006", falling back to the
// raw string when it cannot be parsed.
func displayDate(task puzzle.Task) string {
	if parsed, ok := task.ParsedDate(); ok {
		return parsed.Format(titleDateLayout)
	}
	return strings.TrimSpace(task.Date)
}

// hashtags turns tags into CamelCase hashtags, keeping existing capitals so
// "LinkedIn Pinpoint" becomes "#LinkedInPinpoint".
func hashtags(tags []string) string {
	caser := cases.Title(language.English, cases.NoLower)
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		words := strings.Fields(caser.String(tag))
		if len(words) == 0 {
			continue
		}
		hashtag := "#" + strings.Join(words, "")
		key := strings.ToLower(hashtag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, hashtag)
	}
	return strings.Join(out, " ")
}
