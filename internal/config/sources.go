package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one RSS/Atom feed to aggregate.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SourcesConfig is the parsed sources.yaml: which feeds and scrapers run,
// the keyword list used for relevance filtering, and the Skiddle mappings.
type SourcesConfig struct {
	Keywords         []string          `yaml:"keywords"`
	Feeds            []FeedConfig      `yaml:"feeds"`
	Scrapers         []string          `yaml:"scrapers"` // by registered name, ex: "nub", "totallystockport"
	PostcodePrefixes []string          `yaml:"postcode_prefixes"`
	EventTypeMap     map[string]string `yaml:"event_type_map"` // skiddle event code -> event type
}

// LoadSources reads and parses the sources.yaml file. A missing file is not
// an error: the built-in defaults cover the standard Stockport setup.
func LoadSources(filePath string) (*SourcesConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	cfg := DefaultSources()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sources yaml: %w", err)
	}

	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultSources().Keywords
	}
	return cfg, nil
}

// DefaultSources returns the stock configuration used when no sources.yaml
// is present.
func DefaultSources() *SourcesConfig {
	return &SourcesConfig{
		Keywords: []string{
			"stockport", "manchester", "macclesfield", "wilmslow", "altrincham",
			"sale", "urmston", "stretford", "chorlton", "didsbury", "burnage",
			"levenshulme", "longsight", "fallowfield", "withington", "wythenshawe",
			"oldham", "rochdale", "bury", "bolton", "salford", "eccles", "swinton",
			"worsley", "walkden", "farnworth", "little lever", "kearsley",
			"prestwich", "whitefield", "radcliffe", "ramsbottom", "tottington",
			"heywood", "middleton", "chadderton", "shaw", "royton", "lees",
			"mossley", "stalybridge", "hyde", "denton", "audenshaw", "dukinfield",
			"ashton-under-lyne", "droylsden", "failsworth", "moston", "blackley",
			"crumpsall", "cheetham hill", "higher blackley", "harpurhey",
			"collyhurst", "newton heath", "clayton", "openshaw", "gorton",
			"belle vue", "reddish", "bredbury", "marple", "poynton", "bollington",
			"knutsford", "northwich", "winsford", "middlewich", "sandbach",
			"crewe", "nantwich", "congleton", "buxton", "glossop", "hadfield",
			"new mills", "whaley bridge", "chapel-en-le-frith", "high peak",
		},
		Feeds: []FeedConfig{
			{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/england/manchester/rss.xml"},
			{Name: "Manchester Evening News", URL: "https://www.manchestereveningnews.co.uk/news/greater-manchester-news/?service=rss"},
		},
		Scrapers:         []string{"nub", "totallystockport"},
		PostcodePrefixes: []string{"SK"},
		EventTypeMap: map[string]string{
			"LIVE": "music",
			"CLUB": "nightlife",
			"FEST": "festival",
			"THEATRE": "theatre",
			"COMEDY":  "comedy",
			"EXHIB":   "exhibition",
			"KIDS":    "family",
			"BARPUB":  "nightlife",
			"ARTS":    "arts",
			"FOOD":    "food-drink",
		},
	}
}
